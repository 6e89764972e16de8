package output

import (
	"context"
	"io"
	"sync"

	"collectd.org/api"
	"collectd.org/format"
)

// PutvalWriter writes value lists in the exec plugin text protocol. collectd
// reads one PUTVAL command per line from the plugin's standard output.
type PutvalWriter struct {
	mu sync.Mutex
	w  *format.Putval
}

func NewPutvalWriter(w io.Writer) *PutvalWriter {
	return &PutvalWriter{w: format.NewPutval(w)}
}

func (p *PutvalWriter) Write(ctx context.Context, vl *api.ValueList) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.w.Write(ctx, vl)
}
