package reports

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DiskStore appends reports to a JSON-lines file.
type DiskStore struct {
	path string

	mu sync.Mutex
	f  *os.File
}

// NewDiskStore opens (or creates) the report log at path.
func NewDiskStore(path string) (*DiskStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &DiskStore{path: path, f: f}, nil
}

// Path returns the log file location.
func (s *DiskStore) Path() string {
	return s.path
}

// Save implements Store.
func (s *DiskStore) Save(_ context.Context, r Record) error {
	prepare(&r)
	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("reports: encode record: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return ErrClosed
	}
	_, err = s.f.Write(line)
	return err
}

// List implements Store. Lines that do not decode are skipped.
func (s *DiskStore) List(_ context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil, ErrClosed
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for sc.Scan() {
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return newestFirst(out, limit), nil
}

// Close implements Store.
func (s *DiskStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
