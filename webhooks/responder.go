package webhooks

import (
	"errors"
	"net/http"
	"sync"
)

// Responder is the reply sink for one webhook request. The dispatcher calls
// it at most once.
type Responder interface {
	Respond(status int, body string) error
}

type ResponderFunc func(status int, body string) error

func (f ResponderFunc) Respond(status int, body string) error {
	return f(status, body)
}

var ErrAlreadyResponded = errors.New("webhooks: response already written")

// HTTPResponder writes the reply to an http.ResponseWriter and flushes it,
// so the sender sees the acknowledgment before processing starts.
type HTTPResponder struct {
	w         http.ResponseWriter
	mu        sync.Mutex
	responded bool
}

func NewHTTPResponder(w http.ResponseWriter) *HTTPResponder {
	return &HTTPResponder{w: w}
}

func (r *HTTPResponder) Respond(status int, body string) error {
	if r == nil || r.w == nil {
		return errors.New("webhooks: http responder has no writer")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.responded {
		return ErrAlreadyResponded
	}
	r.responded = true

	r.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	r.w.WriteHeader(status)
	if _, err := r.w.Write([]byte(body)); err != nil {
		return err
	}
	if err := http.NewResponseController(r.w).Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

func (r *HTTPResponder) Responded() bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.responded
}
