// Package ui is the terminal control surface: it turns keys into intents and draws controller snapshots
package ui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/morph-synth/audio"
	"github.com/lixenwraith/morph-synth/core"
	"github.com/lixenwraith/morph-synth/engine"
	"github.com/lixenwraith/morph-synth/event"
	"github.com/lixenwraith/morph-synth/parameter"
	"github.com/lixenwraith/morph-synth/status"
)

// knobLabels names knobs 1-6 in order
var knobLabels = [parameter.KnobCount]string{"SQR", "TRI", "SAW", "DRV", "AMP", "DET"}

// Styles
var (
	styleDefault  = tcell.StyleDefault
	styleDim      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSelected = tcell.StyleDefault.Reverse(true)
	stylePlaying  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleCursor   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Underline(true)
	styleError    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleStatusOn = tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)
	styleStatusOf = tcell.StyleDefault.Background(tcell.ColorGray).Foreground(tcell.ColorBlack)
)

// Surface draws the note grid, knobs and level meter, and pushes key intents to the queue
type Surface struct {
	screen  tcell.Screen
	queue   *event.Queue
	source  func() engine.Snapshot
	metrics *status.Registry

	octave int // Cursor octave, NoteGridMinOctave..NoteGridMaxOctave
	class  int // Cursor pitch class, 0..11
	knob   int // Focused knob, 1..KnobCount

	// Knob values pushed but not yet seen in a snapshot, so repeated nudges within a tick accumulate
	pending map[int]float64
}

// New creates a surface; source returns the latest controller snapshot
func New(screen tcell.Screen, queue *event.Queue, source func() engine.Snapshot, metrics *status.Registry) *Surface {
	return &Surface{
		screen:  screen,
		queue:   queue,
		source:  source,
		metrics: metrics,
		octave:  4,
		knob:    1,
		pending: make(map[int]float64),
	}
}

// CursorNote returns the note under the grid cursor
func (s *Surface) CursorNote() string {
	return fmt.Sprintf("%s%d", audio.NoteNames[s.class], s.octave)
}

// Knob returns the focused knob index
func (s *Surface) Knob() int {
	return s.knob
}

// HandleKey maps a key press to an intent
//
//	arrows/hjkl move, space toggles, 1-6 focus a knob, -/+ nudge it ([/] by 10),
//	s start, x stop, c change chord, q or Esc quits
func (s *Surface) HandleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		s.queue.Push(event.Event{Type: event.EventQuit})
		return
	case tcell.KeyLeft:
		s.moveCursor(0, -1)
		return
	case tcell.KeyRight:
		s.moveCursor(0, 1)
		return
	case tcell.KeyUp:
		s.moveCursor(-1, 0)
		return
	case tcell.KeyDown:
		s.moveCursor(1, 0)
		return
	case tcell.KeyEnter:
		s.queue.Push(event.NoteToggle(s.CursorNote()))
		return
	case tcell.KeyRune:
	default:
		return
	}

	switch r := ev.Rune(); r {
	case 'q':
		s.queue.Push(event.Event{Type: event.EventQuit})
	case 'h':
		s.moveCursor(0, -1)
	case 'l':
		s.moveCursor(0, 1)
	case 'k':
		s.moveCursor(-1, 0)
	case 'j':
		s.moveCursor(1, 0)
	case ' ':
		s.queue.Push(event.NoteToggle(s.CursorNote()))
	case 's':
		s.queue.Push(event.Event{Type: event.EventTransportStart})
	case 'x':
		s.queue.Push(event.Event{Type: event.EventTransportStop})
	case 'c':
		s.queue.Push(event.Event{Type: event.EventChangeChord})
	case '-':
		s.nudge(-1)
	case '+', '=':
		s.nudge(1)
	case '[':
		s.nudge(-10)
	case ']':
		s.nudge(10)
	default:
		if r >= '1' && r < '1'+parameter.KnobCount {
			s.knob = int(r-'1') + 1
		}
	}
}

// moveCursor wraps within the grid; rows are octaves, descending downward
func (s *Surface) moveCursor(dOctave, dClass int) {
	s.class = (s.class + dClass + len(audio.NoteNames)) % len(audio.NoteNames)
	s.octave -= dOctave
	if s.octave < parameter.NoteGridMinOctave {
		s.octave = parameter.NoteGridMinOctave
	} else if s.octave > parameter.NoteGridMaxOctave {
		s.octave = parameter.NoteGridMaxOctave
	}
}

// nudge moves the focused knob relative to its last requested position
func (s *Surface) nudge(delta float64) {
	snap := s.source()
	s.settle(snap)
	base, ok := s.pending[s.knob]
	if !ok {
		base = snap.Knobs.Get(s.knob)
	}
	v := base + delta
	if v < parameter.KnobMin {
		v = parameter.KnobMin
	} else if v > parameter.KnobMax {
		v = parameter.KnobMax
	}
	s.pending[s.knob] = v
	s.queue.Push(event.ParamChange(s.knob, v))
}

// settle forgets pending knob values the controller has applied
func (s *Surface) settle(snap engine.Snapshot) {
	for k, v := range s.pending {
		if snap.Knobs.Get(k) == v {
			delete(s.pending, k)
		}
	}
}

// Draw renders snap to the screen buffer; caller shows it
func (s *Surface) Draw(snap engine.Snapshot) {
	s.settle(snap)
	s.screen.Clear()
	row := 0

	if len(snap.Playing) > 0 {
		s.text(0, row, parameter.StatusPlaying, styleStatusOn)
	} else {
		s.text(0, row, parameter.StatusStopped, styleStatusOf)
	}
	s.text(len(parameter.StatusPlaying)+1, row, parameter.AudioStr+"morph-synth", styleDefault)
	row += 2

	// Top row is the highest octave
	for octave := parameter.NoteGridMaxOctave; octave >= parameter.NoteGridMinOctave; octave-- {
		s.text(0, row, fmt.Sprintf("%d", octave), styleDim)
		for class, name := range audio.NoteNames {
			note := fmt.Sprintf("%s%d", name, octave)
			style := styleDim
			switch {
			case slices.Contains(snap.Playing, note):
				style = stylePlaying
			case slices.Contains(snap.Selected, note):
				style = styleSelected
			}
			if octave == s.octave && class == s.class {
				style = style.Foreground(tcell.ColorYellow).Underline(true)
			}
			s.text(parameter.GridLeftMargin+class*parameter.GridCellWidth, row, note, style)
		}
		row++
	}
	row++

	for i, label := range knobLabels {
		style := styleDefault
		if i+1 == s.knob {
			style = styleCursor
		}
		s.text(i*10, row, fmt.Sprintf("%d %s %3.0f", i+1, label, snap.Knobs[i]), style)
	}
	row += 2

	s.text(0, row, "LVL "+Meter(snap.Level, parameter.MeterWidth), styleDefault)
	row += 2

	s.text(0, row, "[s]tart", enabledStyle(snap.CanStart))
	s.text(9, row, "[x]stop", enabledStyle(snap.CanStop))
	s.text(18, row, "[c]hange", enabledStyle(snap.CanChange))
	if snap.Fading > 0 {
		s.text(28, row, fmt.Sprintf("fading %d", snap.Fading), styleDim)
	}
	row++

	s.text(0, row, "chord: "+strings.Join(snap.Selected, " "), styleDefault)
	row++

	if snap.LastError != "" {
		s.text(0, row, snap.LastError, styleError)
	}
	row += 2

	if s.metrics != nil {
		s.text(0, row, strings.Join(s.metrics.Lines(), "  "), styleDim)
	}
}

func enabledStyle(on bool) tcell.Style {
	if on {
		return styleDefault.Bold(true)
	}
	return styleDim
}

// text writes str at x,y clipped to the screen width
func (s *Surface) text(x, y int, str string, style tcell.Style) {
	w, h := s.screen.Size()
	if y >= h {
		return
	}
	for _, r := range str {
		if x >= w {
			return
		}
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// Meter renders a linear level in [0,1] as a fixed-width bar
func Meter(level float64, width int) string {
	if level < 0 {
		level = 0
	} else if level > 1 {
		level = 1
	}
	filled := int(level*float64(width) + 0.5)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

// Run polls keys and redraws until done closes or a poll fails
func (s *Surface) Run(done <-chan struct{}) {
	keys := make(chan tcell.Event, 16)
	core.Go(func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				close(keys)
				return
			}
			select {
			case keys <- ev:
			case <-done:
				return
			}
		}
	})

	ticker := time.NewTicker(parameter.UIRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-keys:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				s.HandleKey(ev)
			case *tcell.EventResize:
				s.screen.Sync()
			}
		case <-ticker.C:
			s.Draw(s.source())
			s.screen.Show()
		}
	}
}
