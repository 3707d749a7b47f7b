// Package core holds process-wide crash recovery
package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
)

// Finalizer restores a terminal, tcell.Screen satisfies it
type Finalizer interface {
	Fini()
}

var (
	crashMu       sync.Mutex
	crashTerminal Finalizer
	crashHooks    []func()
	exitFunc      = os.Exit
	crashOutput   io.Writer = os.Stderr
)

// Fallback sequences when no screen is registered: show cursor, leave alt screen, reset attributes
var emergencyReset = []byte("\x1b[?25h\x1b[?1049l\x1b[0m")

// SetCrashTerminal registers the screen to finalize before printing a crash
func SetCrashTerminal(t Finalizer) {
	crashMu.Lock()
	defer crashMu.Unlock()
	crashTerminal = t
}

// OnCrash registers cleanup run before exit, e.g. silencing audio
func OnCrash(fn func()) {
	crashMu.Lock()
	defer crashMu.Unlock()
	crashHooks = append(crashHooks, fn)
}

// HandleCrash is the unified panic handler that resets the terminal and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.Lock()
	term := crashTerminal
	hooks := append([]func(){}, crashHooks...)
	crashMu.Unlock()

	if term != nil {
		term.Fini()
	} else {
		os.Stdout.Write(emergencyReset)
		os.Stdout.Sync()
	}

	for _, fn := range hooks {
		func() {
			defer func() { recover() }()
			fn()
		}()
	}

	fmt.Fprintf(crashOutput, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(crashOutput, "Stack Trace:\r\n%s\r\n", debug.Stack())

	exitFunc(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword to ensure terminal cleanup on crash.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
