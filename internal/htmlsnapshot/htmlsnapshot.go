// Package htmlsnapshot renders the reactor's status into a single HTML
// page, written atomically on every html tick (spec.md §6: "A single HTML
// snapshot file written atomically on every html tick via temp-file +
// rename. No other persistence.").
//
// The atomic-write technique (write to a .tmp file, then rename over the
// target) is adapted from internal/store.Store.SavePosition — that
// package persisted positions across restarts, which spec.md's Non-goals
// rule out, but the crash-safe write pattern itself is exactly what the
// html tick needs.
//
// No templating library appears anywhere in the example corpus, so this
// renders with the standard library's html/template: a third-party
// templating engine would be an unjustified addition with no grounding.
package htmlsnapshot

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sync"

	"tacticmm/internal/reactor"
)

const page = `<!DOCTYPE html>
<html>
<head><title>tactic status</title><meta charset="utf-8"></head>
<body>
<h1>tactic status</h1>
<table border="1" cellpadding="4">
<tr><td>generation</td><td>{{.Generation}}</td></tr>
<tr><td>bad resets</td><td>{{.BadResets}}</td></tr>
<tr><td>local bbo</td><td>{{if .LocalBBO.Ok}}{{.LocalBBO.Bid.Price}}@{{.LocalBBO.Bid.Size}} / {{.LocalBBO.Ask.Price}}@{{.LocalBBO.Ask.Size}}{{else}}n/a{{end}}</td></tr>
<tr><td>local fair</td><td>{{printf "%.4f" .LocalFair.FairPrice}}</td></tr>
<tr><td>blended fair</td><td>{{printf "%.4f" .BlendedFair.FairPrice}}</td></tr>
<tr><td>live bid</td><td>{{.LiveBidID}}</td></tr>
<tr><td>live ask</td><td>{{.LiveAskID}}</td></tr>
<tr><td>net size</td><td>{{printf "%.4f" .Position.NetSize}}</td></tr>
<tr><td>realized pnl</td><td>{{printf "%.4f" .Position.RealizedPnL}}</td></tr>
<tr><td>unrealized pnl</td><td>{{printf "%.4f" .Position.UnrealizedPnL}}</td></tr>
<tr><td>last updated</td><td>{{.Position.LastUpdated}}</td></tr>
</table>
</body>
</html>
`

// Writer satisfies internal/reactor's Snapshotter port.
type Writer struct {
	path string
	tmpl *template.Template
	mu   sync.Mutex // serializes concurrent Write calls
}

// New builds a Writer that renders to path, replacing it atomically on
// every Write.
func New(path string) (*Writer, error) {
	tmpl, err := template.New("status").Parse(page)
	if err != nil {
		return nil, fmt.Errorf("parse status template: %w", err)
	}
	return &Writer{path: path, tmpl: tmpl}, nil
}

// Write renders status and atomically replaces the snapshot file: write to
// a .tmp file in the same directory, then rename over the target so the
// file is never observed in a partially-written state.
func (w *Writer) Write(status reactor.Status) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.html.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	if err := w.tmpl.Execute(tmp, status); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("render snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename snapshot into place: %w", err)
	}
	return nil
}
