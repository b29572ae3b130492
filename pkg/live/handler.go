package live

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/spa/pkg/middleware"
	"github.com/vango-dev/spa/pkg/render"
	"github.com/vango-dev/spa/pkg/router"
	"github.com/vango-dev/spa/pkg/vdom"
)

// RouterFactory builds the router for one connection. The router must
// mount into c and redirect through nav.
type RouterFactory func(c *vdom.Container, nav router.Navigator) (*router.Router, error)

// Config configures a Handler.
type Config struct {
	// Factory is called once per connection. Required.
	Factory RouterFactory

	// ContainerID is the id of the element the client patches
	// (default "app").
	ContainerID string

	// ExternalPaths are served by the server rather than the router.
	// Replacing the location with one of them asks the client to reload
	// (default: "/error").
	ExternalPaths []string

	// CheckOrigin is passed to the upgrader. Nil means same origin only.
	CheckOrigin func(r *http.Request) bool

	// PingInterval defaults to 30s. The read deadline is twice this.
	PingInterval time.Duration

	// WriteTimeout defaults to 10s.
	WriteTimeout time.Duration

	// ReadLimit caps incoming frames (default 64KiB).
	ReadLimit int64

	// Metrics counts connections and their errors. Nil disables counting.
	Metrics *middleware.Metrics

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Handler upgrades requests to live navigation connections. Each
// connection gets its own container, history and router; the client sends
// nav frames and receives the rendered container after every change.
type Handler struct {
	cfg      Config
	upgrader websocket.Upgrader
	renderer *render.Renderer
	external map[string]bool
	logger   *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(cfg Config) *Handler {
	if cfg.ContainerID == "" {
		cfg.ContainerID = "app"
	}
	if cfg.ExternalPaths == nil {
		cfg.ExternalPaths = []string{"/error"}
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = 64 << 10
	}

	h := &Handler{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.CheckOrigin,
		},
		renderer: render.NewRenderer(render.RendererConfig{}),
		external: make(map[string]bool, len(cfg.ExternalPaths)),
		logger:   cfg.Logger,
	}
	for _, p := range cfg.ExternalPaths {
		h.external[p] = true
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// ServeHTTP implements http.Handler. The initial location is taken from
// the "path" query parameter.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Factory == nil {
		http.Error(w, "live navigation is not configured", http.StatusNotFound)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an error response.
		h.logger.Debug("live: upgrade failed", "error", err)
		return
	}

	s := newSession(h, conn, r)
	s.run(r.URL.Query().Get("path"))
}
