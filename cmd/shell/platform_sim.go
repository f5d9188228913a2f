// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build !shell_hw

package main

import (
	"net/http"
	"os"

	"github.com/markkrueg/C64MEGA65/internal/diag"
	"github.com/markkrueg/C64MEGA65/internal/sdcard"
	"github.com/markkrueg/C64MEGA65/internal/shell"
	"github.com/markkrueg/C64MEGA65/internal/shellhw"
)

func newBus() shellhw.Bus {
	return shellhw.NewSimBus()
}

func newCard() sdcard.Card {
	return sdcard.NewFakeCard()
}

// haltLoop terminates the host process once the Shell halts fatally —
// there is no reset button to wait for in the simulated build.
func haltLoop() {
	os.Exit(1)
}

// startDiagnosticsIfHost wires the host-only diagnostics page
// (internal/diag) onto http.DefaultServeMux, the same mux
// github.com/mkevac/debugcharts registers its own charts onto via blank
// import.
func startDiagnosticsIfHost(s *shell.Shell) {
	page := diag.NewPage(s.Registry, s.Flush, s.CRT, s.Dispatch.Passes, diagRefresh)
	page.Publish("c64mega65_shell")
	http.Handle("/diag", page)

	go http.ListenAndServe(diagAddr, nil)
}

const diagAddr = "localhost:6060"
