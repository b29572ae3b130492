package spa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/vango-dev/spa/pkg/fatal"
	"github.com/vango-dev/spa/pkg/reports"
)

// handleErrorPage serves the fatal error page.
func (a *App) handleErrorPage(w http.ResponseWriter, r *http.Request) {
	templ.Handler(ErrorPage(DefaultErrorPageData)).ServeHTTP(w, r)
}

// handleLogError accepts an error report. Any content type is accepted as
// long as the body is JSON.
func (a *App) handleLogError(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.cfg.MaxReportBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !json.Valid(raw) {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	a.logger.Info("Error received", "body", string(raw))

	rec := reports.Record{
		Report:     decodeReport(raw),
		Raw:        json.RawMessage(raw),
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	}
	if err := a.saveReport(r.Context(), rec); err != nil {
		http.Error(w, "error not stored", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "Error logged")
}

// saveReport stores rec and counts it.
func (a *App) saveReport(ctx context.Context, rec reports.Record) error {
	if rec.Raw == nil {
		raw, err := json.Marshal(rec.Report)
		if err != nil {
			return err
		}
		rec.Raw = raw
	}
	a.metrics.ErrorReport(string(rec.Report.Type))
	if err := a.store.Save(ctx, rec); err != nil {
		a.logger.Error("error report not stored", "error", err)
		return err
	}
	return nil
}

// decodeReport extracts what it can from a client report. Clients may
// post the report itself or a JSON string holding it.
func decodeReport(raw []byte) fatal.Report {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		raw = []byte(s)
	}

	var rep fatal.Report
	if json.Unmarshal(raw, &rep) == nil {
		return rep
	}

	// A field of the wrong type spoils the whole struct; keep the strings.
	var loose map[string]any
	if json.Unmarshal(raw, &loose) != nil {
		return fatal.Report{Message: s}
	}
	str := func(k string) string {
		v, _ := loose[k].(string)
		return v
	}
	rep = fatal.Report{
		Type:    fatal.Kind(str("type")),
		Message: str("message"),
		Source:  str("source"),
		Stack:   str("stack"),
		URL:     str("url"),
	}
	if ts, err := time.Parse(time.RFC3339Nano, str("timestamp")); err == nil {
		rep.Timestamp = ts
	}
	return rep
}

// handleRandom serves {"rnd": n} with 0 <= n < 100.
func (a *App) handleRandom(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"rnd": a.cfg.Random()})
}
