package reports

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/vango-dev/spa/pkg/fatal"
)

// ErrClosed is returned by a store after Close.
var ErrClosed = errors.New("reports: store closed")

// Record is one error report received by the server.
type Record struct {
	ID         string          `json:"id" msgpack:"id"`
	Received   time.Time       `json:"received" msgpack:"received"`
	RemoteAddr string          `json:"remote_addr,omitempty" msgpack:"remote_addr,omitempty"`
	UserAgent  string          `json:"user_agent,omitempty" msgpack:"user_agent,omitempty"`
	Report     fatal.Report    `json:"report" msgpack:"report"`
	Raw        json.RawMessage `json:"raw" msgpack:"raw"`
}

// Store persists error reports.
type Store interface {
	// Save persists r. An empty ID or zero Received is filled in.
	Save(ctx context.Context, r Record) error

	// List returns up to limit records, newest first. A limit of zero or
	// less returns everything.
	List(ctx context.Context, limit int) ([]Record, error)

	Close() error
}

// NewID returns a random 32-character hex identifier.
func NewID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// prepare fills in the generated fields of r.
func prepare(r *Record) {
	if r.ID == "" {
		r.ID = NewID()
	}
	if r.Received.IsZero() {
		r.Received = time.Now().UTC()
	}
}

// newestFirst reverses recs in place and truncates to limit.
func newestFirst(recs []Record, limit int) []Record {
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}
