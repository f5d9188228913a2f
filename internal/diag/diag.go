// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build !shell_hw

// Package diag is a host-only diagnostics page for the simulated Shell:
// dispatcher pass count, per-drive flush-engine state, and CRT-loader
// status, published through expvar and served alongside
// github.com/mkevac/debugcharts' runtime charts. It never builds into
// the shell_hw target — the real firmware has no HTTP stack to serve
// this over, and §1's Non-goals exclude an in-scope machine-code
// monitor, which this is not: it is a development-only counters page,
// the same role TamaGo's own example/ wires debugcharts for.
package diag

import (
	"expvar"
	"fmt"
	"net/http"
	"time"

	_ "github.com/mkevac/debugcharts"
	"golang.org/x/time/rate"

	"github.com/markkrueg/C64MEGA65/internal/crt"
	"github.com/markkrueg/C64MEGA65/internal/flush"
	"github.com/markkrueg/C64MEGA65/internal/shellcfg"
	"github.com/markkrueg/C64MEGA65/internal/vdrive"
)

// Snapshot is one point-in-time diagnostics reading.
type Snapshot struct {
	Passes     uint64
	DriveState [shellcfg.NumDrives]string
	CRTStatus  string
}

// Page serves the diagnostics snapshot, recomputed at most once per
// limiter tick. Recomputing on every request would make the page's own
// polling compete with the simulated Shell's main loop for CPU time
// when a browser tab is left open with auto-refresh; the limiter caps
// that to a sane rate without the page needing its own goroutine.
type Page struct {
	registry *vdrive.Registry
	engine   *flush.Engine
	loader   *crt.Loader
	passes   func() uint64

	limiter *rate.Limiter

	cached    Snapshot
	haveFirst bool
}

// NewPage returns a Page that samples registry/engine/loader, recomputed
// at most once every `every`.
func NewPage(registry *vdrive.Registry, engine *flush.Engine, loader *crt.Loader, passes func() uint64, every time.Duration) *Page {
	return &Page{
		registry: registry,
		engine:   engine,
		loader:   loader,
		passes:   passes,
		limiter:  rate.NewLimiter(rate.Every(every), 1),
	}
}

func (p *Page) snapshot() Snapshot {
	allowed := p.limiter.Allow()
	if p.haveFirst && !allowed {
		return p.cached
	}

	var s Snapshot
	s.Passes = p.passes()
	for n := 0; n < p.registry.Len() && n < len(s.DriveState); n++ {
		st, err := p.engine.StateOf(n)
		if err != nil {
			s.DriveState[n] = "error"
			continue
		}
		s.DriveState[n] = st.String()
	}
	s.CRTStatus = p.crtStatusString()

	p.cached = s
	p.haveFirst = true
	return s
}

func (p *Page) crtStatusString() string {
	switch p.loader.Status() {
	case crt.Idle:
		return "idle"
	case crt.Parsing:
		return "parsing"
	case crt.Ready:
		return "ready"
	case crt.Error:
		return fmt.Sprintf("error: %s", p.loader.ErrorCode())
	default:
		return "unknown"
	}
}

// Publish registers an expvar var reporting the latest snapshot, for
// consumption by the debugcharts page or any expvar-aware tooling.
func (p *Page) Publish(name string) {
	expvar.Publish(name, expvar.Func(func() any {
		s := p.snapshot()
		return map[string]any{
			"passes":      s.Passes,
			"drive_state": s.DriveState,
			"crt_status":  s.CRTStatus,
		}
	}))
}

// ServeHTTP renders a tiny plaintext summary. debugcharts' own handlers
// are registered on http.DefaultServeMux by its blank import; Page is
// mounted alongside them by the caller under a separate path.
func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s := p.snapshot()
	fmt.Fprintf(w, "passes: %d\n", s.Passes)
	for n, st := range s.DriveState {
		fmt.Fprintf(w, "drive %d: %s\n", n, st)
	}
	fmt.Fprintf(w, "crt: %s\n", s.CRTStatus)
}
