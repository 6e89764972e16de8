package tui

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"collectd.org/api"
	"collectd.org/format"
)

// Recorder captures dispatched value lists as PUTVAL lines for the read log.
type Recorder struct {
	mu  sync.Mutex
	buf bytes.Buffer
	w   *format.Putval
}

func NewRecorder() *Recorder {
	r := &Recorder{}
	r.w = format.NewPutval(&r.buf)
	return r
}

func (r *Recorder) Write(ctx context.Context, vl *api.ValueList) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.w.Write(ctx, vl)
}

// Drain returns the lines recorded since the last call.
func (r *Recorder) Drain() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := strings.TrimRight(r.buf.String(), "\n")
	r.buf.Reset()
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
