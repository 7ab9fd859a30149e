package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// Writer streams events to an HTTP response as Server-Sent Events. Each event
// is one "data: <json>\n\n" frame; Terminate writes the literal [DONE] frame
// that closes the stream.
type Writer struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter wraps a response writer for SSE output. Returns an error if the
// writer does not support flushing.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported by response writer")
	}
	return &Writer{w: w, flusher: flusher}, nil
}

// Send writes one event frame and flushes it immediately.
func (s *Writer) Send(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Terminate writes the literal [DONE] frame. It is always the last frame on
// the wire.
func (s *Writer) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.w, "data: [DONE]\n\n")
	s.flusher.Flush()
}
