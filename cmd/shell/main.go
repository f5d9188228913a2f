// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Command shell is the Shell firmware's entry point: it wires a Bus
// (real hardware under the shell_hw build tag, an in-memory simulated
// bus otherwise), constructs the Shell context, and drives Step in a
// tight loop the way example/example.go drives its own demos — this is
// the only place in the module that decides which build it is.
package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/markkrueg/C64MEGA65/internal/shell"
)

const verbose = true

// diagRefresh bounds how often the host-only diagnostics page
// recomputes its snapshot (internal/diag).
const diagRefresh = 250 * time.Millisecond

func init() {
	log.SetFlags(0)
	if verbose {
		log.SetOutput(os.Stdout)
	} else {
		log.SetOutput(io.Discard)
	}
}

func main() {
	bus := newBus()
	card := newCard()
	logger := log.New(log.Writer(), "", 0)

	startupSlot := bus.ActiveSDSlot()

	s := shell.New(bus, card, startupSlot, logger)

	startDiagnosticsIfHost(s)

	run(s)
}

// run drives the main loop. On real hardware this never returns; the
// simulated build exits when the Shell halts fatally (§7), since there
// is no reset button to press on a developer's machine.
func run(s *shell.Shell) {
	for {
		if err := s.Step(); err != nil {
			if s.Halted() {
				log.Printf("shell: halted: %v", s.HaltError())
				haltLoop()
			}
		}
	}
}
