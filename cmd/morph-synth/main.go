package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/morph-synth/audio"
	"github.com/lixenwraith/morph-synth/core"
	"github.com/lixenwraith/morph-synth/engine"
	"github.com/lixenwraith/morph-synth/event"
	"github.com/lixenwraith/morph-synth/service"
	"github.com/lixenwraith/morph-synth/status"
	"github.com/lixenwraith/morph-synth/ui"
)

var (
	debugFlag     = flag.Bool("debug", false, "Write logs to logs/morph-synth.log")
	mutedFlag     = flag.Bool("muted", false, "Render silently without opening an audio device")
	chordFlag     = flag.String("chord", "", "Initial selection, comma separated (e.g. C4,E4,G4)")
	autostartFlag = flag.Bool("autostart", false, "Start playing the initial selection immediately")
	recordFlag    = flag.String("record", "", "Capture the output to a WAV file")
	bufferFlag    = flag.Duration("buffer", 0, "Speaker buffer duration (overrides MORPHSYNTH_BUFFER)")
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	if logFile := setupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}

	if *bufferFlag > 0 {
		os.Setenv(audio.EnvBufferDuration, bufferFlag.String())
	}

	hub := service.NewHub()
	queue := event.NewQueue()
	registry := status.NewRegistry()

	audioSvc := audio.NewService()
	engineSvc := engine.NewService(hub, queue, registry)
	if err := hub.Register(audioSvc, *mutedFlag, *recordFlag); err != nil {
		fatal(err)
	}
	if err := hub.Register(engineSvc, parseChord(*chordFlag), *autostartFlag); err != nil {
		fatal(err)
	}

	if err := hub.InitAll(); err != nil {
		fatal(err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fatal(err)
	}
	if err := screen.Init(); err != nil {
		fatal(err)
	}
	core.SetCrashTerminal(screen)
	core.OnCrash(func() { audioSvc.Stop() })

	if err := hub.StartAll(); err != nil {
		screen.Fini()
		fatal(err)
	}
	defer screen.Fini()
	defer hub.StopAll()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	core.Go(func() {
		<-signals
		queue.Push(event.Event{Type: event.EventQuit})
	})

	ctrl := engineSvc.Controller()
	surface := ui.New(screen, queue, ctrl.Snapshot, registry)
	surface.Run(ctrl.Done())

	log.Printf("shutdown after %s", time.Since(startTime).Round(time.Millisecond))
}

var startTime = time.Now()

// parseChord splits a comma separated note list, dropping blanks
func parseChord(s string) []string {
	var notes []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			notes = append(notes, part)
		}
	}
	return notes
}

func fatal(err error) {
	log.Printf("fatal: %v", err)
	fmt.Fprintf(os.Stderr, "morph-synth: %v\n", err)
	os.Exit(1)
}
