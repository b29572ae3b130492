package spa

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/spa/pkg/routepath"
	"github.com/vango-dev/spa/pkg/vdom"
)

// requestNavigator is the router.Navigator of a pre-rendered request. It
// only records where the router wanted to go.
type requestNavigator struct {
	mu       sync.Mutex
	path     string
	replaced string
}

func (n *requestNavigator) Replace(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = path
	n.replaced = path
}

func (n *requestNavigator) Pathname() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *requestNavigator) Replaced() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.replaced
}

// prerendered is the outcome of dispatching one request path.
type prerendered struct {
	html     string
	title    string
	redirect string
}

// prerender dispatches pathname on a fresh router and renders what it
// mounted. Refresh work is canceled once the synchronous render is taken;
// the client refreshes again after it takes over.
func (a *App) prerender(ctx context.Context, pathname string) (*prerendered, error) {
	c := vdom.NewContainer(a.cfg.ContainerID)
	nav := &requestNavigator{path: pathname}
	rt, err := a.routerFactory(c, nav)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	_, dispatchErr := rt.Dispatch(ctx, pathname)
	out := &prerendered{redirect: nav.Replaced()}
	if dispatchErr == nil && out.redirect == "" {
		out.html, out.title, _, err = a.renderer.RenderContainer(c)
	}
	cancel()
	rt.Unmount(context.WithoutCancel(ctx))
	rt.Wait()

	// A fatal error reported from a refresh that lost the race with
	// cancel still moves the page.
	if out.redirect == "" {
		out.redirect = nav.Replaced()
	}
	if out.redirect != "" {
		return out, nil
	}
	if dispatchErr != nil {
		return nil, dispatchErr
	}
	return out, err
}

// handleIndex answers every path the other routes do not with the SPA's
// index.html, pre-rendered when a route table is configured.
func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	index, err := os.ReadFile(a.indexPath)
	if err != nil {
		a.logger.Error("index.html unreadable", "path", a.indexPath, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if a.cfg.Routes != nil {
		if trimmed, ok := routepath.TrimTrailingSlash(r.URL.Path); ok {
			// "//host/" must not become a protocol-relative redirect.
			trimmed = "/" + strings.TrimLeft(trimmed, "/")
			if r.URL.RawQuery != "" {
				trimmed += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, trimmed, http.StatusMovedPermanently)
			return
		}

		page, err := a.prerender(r.Context(), r.URL.Path)
		switch {
		case err != nil:
			a.logger.Warn("pre-render failed", "path", r.URL.Path, "error", err)
		case page.redirect != "":
			http.Redirect(w, r, page.redirect, http.StatusFound)
			return
		default:
			out, err := injectIndex(index, a.cfg.ContainerID, page.html, page.title)
			if err != nil {
				a.logger.Warn("index injection failed", "error", err)
			} else {
				index = out
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(index)
}

// injectIndex replaces the children of the element with id containerID
// by body and sets the document title. A document without that element is
// returned unchanged.
func injectIndex(index []byte, containerID, body, title string) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(index))
	if err != nil {
		return nil, err
	}
	target := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attrValue(n, "id") == containerID
	})
	if target == nil {
		return index, nil
	}

	nodes, err := html.ParseFragment(strings.NewReader(body), target)
	if err != nil {
		return nil, err
	}
	for target.FirstChild != nil {
		target.RemoveChild(target.FirstChild)
	}
	for _, n := range nodes {
		target.AppendChild(n)
	}

	if title != "" {
		setTitle(doc, title)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setTitle(doc *html.Node, title string) {
	t := findNode(doc, func(n *html.Node) bool { return n.DataAtom == atom.Title })
	if t == nil {
		head := findNode(doc, func(n *html.Node) bool { return n.DataAtom == atom.Head })
		if head == nil {
			return
		}
		t = &html.Node{Type: html.ElementNode, DataAtom: atom.Title, Data: "title"}
		head.AppendChild(t)
	}
	for t.FirstChild != nil {
		t.RemoveChild(t.FirstChild)
	}
	t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
