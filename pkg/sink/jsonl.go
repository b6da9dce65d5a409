package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// JSONL appends one JSON object per line.
type JSONL struct {
	f   *os.File
	enc *json.Encoder
	mu  sync.Mutex
}

// OpenJSONL opens path for appending.
func OpenJSONL(path string) (*JSONL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return &JSONL{f: f, enc: enc}, nil
}

// Append encodes v as one line.
func (j *JSONL) Append(v any) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f == nil {
		return ErrClosed
	}
	if err := j.enc.Encode(v); err != nil {
		return fmt.Errorf("encode jsonl: %w", err)
	}
	return nil
}

// Close closes the file. Later appends return ErrClosed.
func (j *JSONL) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f == nil {
		return nil
	}
	err := j.f.Close()
	j.f = nil
	return err
}
