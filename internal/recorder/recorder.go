// Package recorder persists pipeline tick records as line-delimited JSON.
package recorder

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cconley717/Coin180/internal/signal"
)

// startedRecord is the single leading line describing the session configuration.
type startedRecord struct {
	Started any `json:"started"`
}

// Writer appends tick records as JSON lines for later analysis or replay.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewWriter creates/opens the target file, writes the leading session record,
// and returns a writer.
func NewWriter(path string, sessionConfig any) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	w := &Writer{file: file, enc: json.NewEncoder(file)}
	if err := w.enc.Encode(startedRecord{Started: sessionConfig}); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("write session record: %w", err)
	}
	return w, nil
}

// Record writes a single tick record to the underlying JSONL file.
func (w *Writer) Record(rec signal.TickRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(rec)
}

// Close flushes and closes the file handle.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Reader iterates a recorded tick log in order.
type Reader struct {
	file    *os.File
	scanner *bufio.Scanner
	started json.RawMessage
}

// NewReader opens a tick log and consumes its leading session record.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 4<<20)
	r := &Reader{file: file, scanner: scanner}

	if !scanner.Scan() {
		_ = file.Close()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read session record: %w", err)
		}
		return nil, fmt.Errorf("tick log %q is empty", path)
	}
	var started startedRecord
	if err := json.Unmarshal(scanner.Bytes(), &started); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("decode session record: %w", err)
	}
	raw, _ := json.Marshal(started.Started)
	r.started = raw
	return r, nil
}

// Started returns the raw session configuration from the leading record.
func (r *Reader) Started() json.RawMessage { return r.started }

// Next returns the next tick record, or ok=false at end of log.
func (r *Reader) Next() (rec signal.TickRecord, ok bool, err error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return rec, false, fmt.Errorf("read tick record: %w", err)
		}
		return rec, false, nil
	}
	if err := json.Unmarshal(r.scanner.Bytes(), &rec); err != nil {
		return rec, false, fmt.Errorf("decode tick record: %w", err)
	}
	return rec, true, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error { return r.file.Close() }
