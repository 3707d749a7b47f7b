package synth

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/lixenwraith/morph-synth/audio"
	"github.com/lixenwraith/morph-synth/audio/audiotest"
	"github.com/lixenwraith/morph-synth/clock"
	"github.com/lixenwraith/morph-synth/parameter"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// rig bundles a synth with its deterministic collaborators
type rig struct {
	synth *Synth
	eng   *audiotest.Engine
	clock *clock.MockClock
	sched *clock.Scheduler
}

func newRig() *rig {
	mc := clock.NewMockClock(testEpoch)
	eng := audiotest.New(mc)
	sched := clock.NewScheduler(mc)
	cfg := Config{AnalyserMode: audio.AnalyserWaveform, AnalyserSize: parameter.AnalyserDefaultSize}
	return &rig{
		synth: New(eng, sched, cfg),
		eng:   eng,
		clock: mc,
		sched: sched,
	}
}

// advance moves time forward and fires due timers, as the controller loop does
func (r *rig) advance(d time.Duration) {
	r.clock.Advance(d)
	r.sched.Run()
}

func mustFreq(t *testing.T, note string) float64 {
	t.Helper()
	f, err := audio.NoteFrequency(note)
	if err != nil {
		t.Fatalf("NoteFrequency(%s): %v", note, err)
	}
	return f
}

func recOsc(v *Voice, i int) *audiotest.Oscillator {
	return v.Oscillators()[i].(*audiotest.Oscillator)
}

func recGain(v *Voice, i int) *audiotest.Gain {
	return v.Gains()[i].(*audiotest.Gain)
}

func (r *rig) assertConserved(t *testing.T) {
	t.Helper()
	pool := r.synth.Pool()
	want := parameter.OscillatorsPerVoice * (pool.Len() + pool.FadingCount())
	if got := r.eng.Live(audiotest.KindOscillator); got != want {
		t.Errorf("Expected %d live oscillators, got %d", want, got)
	}
	if got := r.eng.Live(audiotest.KindGain); got != want+boolInt(pool.Chain() != nil) {
		t.Errorf("Expected %d live gains, got %d", want+boolInt(pool.Chain() != nil), got)
	}
	if r.eng.DoubleDisposals() != 0 {
		t.Errorf("Expected no double disposals, got %d", r.eng.DoubleDisposals())
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// TestPoolStartCreatesVoices verifies one started voice per note on a single chain
func TestPoolStartCreatesVoices(t *testing.T) {
	r := newRig()
	if err := r.synth.Start([]string{"C4", "E4", "G4"}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	pool := r.synth.Pool()
	if pool.Len() != 3 {
		t.Fatalf("Expected 3 voices, got %d", pool.Len())
	}
	if r.eng.Created(audiotest.KindDistortion) != 1 || r.eng.Created(audiotest.KindSink) != 1 {
		t.Error("Expected exactly one master chain")
	}
	if r.eng.Resumes() != 1 {
		t.Errorf("Expected engine resumed once, got %d", r.eng.Resumes())
	}

	for i, v := range pool.Voices() {
		for w := 0; w < parameter.OscillatorsPerVoice; w++ {
			osc := recOsc(v, w)
			if !osc.Running() {
				t.Errorf("Voice %d osc %d not started", i, w)
			}
			if osc.Type() != audio.Waveforms[w] {
				t.Errorf("Voice %d osc %d: expected %s, got %s", i, w, audio.Waveforms[w], osc.Type())
			}
			if !osc.Connected(v.Gains()[w]) {
				t.Errorf("Voice %d osc %d not connected to its gain", i, w)
			}
			if !recGain(v, w).Connected(pool.Chain().Input()) {
				t.Errorf("Voice %d gain %d not connected to chain", i, w)
			}
		}
		if f := recOsc(v, 0).Frequency().Value(); math.Abs(f-mustFreq(t, v.Note())) > 1e-9 {
			t.Errorf("Voice %d: expected %s frequency, got %f", i, v.Note(), f)
		}
		// Default blend is pure sine
		if g := recGain(v, 0).Gain().Value(); g != 1 {
			t.Errorf("Voice %d: expected sine gain 1, got %f", i, g)
		}
	}
	r.assertConserved(t)
}

// TestPoolStartTwiceIsNoop verifies a second start leaks no second chain
func TestPoolStartTwiceIsNoop(t *testing.T) {
	r := newRig()
	r.synth.Start([]string{"A4"})
	if err := r.synth.Pool().Start([]string{"C4", "D4"}, r.synth.Params()); err != nil {
		t.Fatalf("Second start: %v", err)
	}
	if r.synth.Pool().Len() != 1 {
		t.Errorf("Expected pool unchanged, got %d voices", r.synth.Pool().Len())
	}
	if r.eng.Created(audiotest.KindDistortion) != 1 {
		t.Errorf("Expected one chain, got %d", r.eng.Created(audiotest.KindDistortion))
	}
}

// TestPoolRetargetPreservesIdentity verifies equal-length retarget glides the same handles
func TestPoolRetargetPreservesIdentity(t *testing.T) {
	r := newRig()
	r.synth.Start([]string{"A4", "B4"})
	before := r.synth.Pool().Voices()
	created := r.eng.Created(audiotest.KindOscillator)

	if err := r.synth.ChangeChord([]string{"C5", "D5"}); err != nil {
		t.Fatalf("ChangeChord: %v", err)
	}

	after := r.synth.Pool().Voices()
	if r.eng.Created(audiotest.KindOscillator) != created {
		t.Error("Expected no new oscillators on equal-length retarget")
	}
	for i, note := range []string{"C5", "D5"} {
		if after[i] != before[i] || after[i].Oscillators() != before[i].Oscillators() {
			t.Errorf("Voice %d: expected same identity", i)
		}
		if after[i].Note() != note {
			t.Errorf("Voice %d: expected note %s, got %s", i, note, after[i].Note())
		}
		for w := 0; w < parameter.OscillatorsPerVoice; w++ {
			p := recOsc(after[i], w).FrequencyParam()
			if math.Abs(p.Target()-mustFreq(t, note)) > 1e-9 {
				t.Errorf("Voice %d osc %d: expected target %s, got %f", i, w, note, p.Target())
			}
			if p.Ramp().Length != parameter.GlideTime {
				t.Errorf("Voice %d osc %d: expected glide %v, got %v", i, w, parameter.GlideTime, p.Ramp().Length)
			}
		}
	}
	if r.synth.Pool().FadingCount() != 0 {
		t.Error("Expected no fading voices")
	}
}

// TestPoolGrowthGlidesFromLastVoice verifies new voices start at the previous voice's pitch
func TestPoolGrowthGlidesFromLastVoice(t *testing.T) {
	r := newRig()
	r.synth.Start([]string{"A4"})

	if err := r.synth.ChangeChord([]string{"A4", "C5", "E5"}); err != nil {
		t.Fatalf("ChangeChord: %v", err)
	}

	voices := r.synth.Pool().Voices()
	if len(voices) != 3 {
		t.Fatalf("Expected 3 voices, got %d", len(voices))
	}

	a4 := mustFreq(t, "A4")
	for i, note := range []string{"C5", "E5"} {
		v := voices[i+1]
		for w := 0; w < parameter.OscillatorsPerVoice; w++ {
			ramp := recOsc(v, w).FrequencyParam().Ramp()
			if math.Abs(ramp.From-a4) > 1e-9 {
				t.Errorf("New voice %d osc %d: expected glide from %f, got %f", i, w, a4, ramp.From)
			}
			if math.Abs(ramp.To-mustFreq(t, note)) > 1e-9 {
				t.Errorf("New voice %d osc %d: expected glide to %s", i, w, note)
			}
			if !recOsc(v, w).Running() {
				t.Errorf("New voice %d osc %d not started", i, w)
			}
		}
	}

	r.advance(parameter.GlideTime)
	if f := recOsc(voices[2], 0).Frequency().Value(); math.Abs(f-mustFreq(t, "E5")) > 1e-9 {
		t.Errorf("Expected E5 after glide, got %f", f)
	}
	r.assertConserved(t)
}

// TestPoolGrowthStartsFromSoundingPitch verifies a mid-glide clone starts where the last voice currently is
func TestPoolGrowthStartsFromSoundingPitch(t *testing.T) {
	r := newRig()
	r.synth.Start([]string{"A4"})
	r.synth.ChangeChord([]string{"A5"})
	r.advance(parameter.GlideTime / 2)

	r.synth.ChangeChord([]string{"A5", "E5"})

	mid := (mustFreq(t, "A4") + mustFreq(t, "A5")) / 2
	clone := r.synth.Pool().Voices()[1]
	if from := recOsc(clone, 0).FrequencyParam().Ramp().From; math.Abs(from-mid) > 1e-6 {
		t.Errorf("Expected clone to start at %f, got %f", mid, from)
	}
}

// TestPoolShrinkFadesThenDisposes verifies surplus voices leave the pool at once but are disposed after the delay
func TestPoolShrinkFadesThenDisposes(t *testing.T) {
	r := newRig()
	r.synth.Start([]string{"A4", "C5", "E5"})
	surplus := r.synth.Pool().Voices()[1:]

	if err := r.synth.ChangeChord([]string{"A4"}); err != nil {
		t.Fatalf("ChangeChord: %v", err)
	}

	pool := r.synth.Pool()
	if pool.Len() != 1 || pool.FadingCount() != 2 {
		t.Fatalf("Expected 1 pooled and 2 fading, got %d and %d", pool.Len(), pool.FadingCount())
	}

	a4 := mustFreq(t, "A4")
	for i, v := range surplus {
		if v.State() != VoiceFading {
			t.Errorf("Surplus %d: expected fading, got %s", i, v.State())
		}
		for w := 0; w < parameter.OscillatorsPerVoice; w++ {
			g := recGain(v, w).GainParam()
			if g.Target() != 0 || g.Ramp().Length != parameter.FadeTime {
				t.Errorf("Surplus %d gain %d: expected fade to 0 over %v", i, w, parameter.FadeTime)
			}
			if f := recOsc(v, w).FrequencyParam().Target(); math.Abs(f-a4) > 1e-9 {
				t.Errorf("Surplus %d osc %d: expected wrapped glide to A4, got %f", i, w, f)
			}
		}
	}

	r.advance(parameter.FadeTime)
	r.advance(parameter.DisposeDelay - parameter.FadeTime - time.Millisecond)
	for i, v := range surplus {
		if recOsc(v, 0).Disposed() {
			t.Errorf("Surplus %d disposed before the delay elapsed", i)
		}
	}
	r.assertConserved(t)

	r.advance(time.Millisecond)
	if pool.FadingCount() != 0 {
		t.Errorf("Expected fading set drained, got %d", pool.FadingCount())
	}
	for i, v := range surplus {
		if v.State() != VoiceDisposed {
			t.Errorf("Surplus %d: expected disposed, got %s", i, v.State())
		}
	}
	r.assertConserved(t)
}

// TestPoolShrinkWrapsTargets verifies surplus voices glide to targets[i mod len]
func TestPoolShrinkWrapsTargets(t *testing.T) {
	r := newRig()
	r.synth.Start([]string{"C4", "D4", "E4", "F4", "G4"})
	surplus := r.synth.Pool().Voices()[2:]

	r.synth.ChangeChord([]string{"A4", "B4"})

	// Indices 2, 3, 4 wrap to 0, 1, 0
	want := []string{"A4", "B4", "A4"}
	for i, v := range surplus {
		if got := recOsc(v, 0).FrequencyParam().Target(); math.Abs(got-mustFreq(t, want[i])) > 1e-9 {
			t.Errorf("Surplus %d: expected glide to %s, got %f", i, want[i], got)
		}
	}
}

// TestPoolReclaimCancelsDisposal verifies growth reuses a fading voice and its timer never fires
func TestPoolReclaimCancelsDisposal(t *testing.T) {
	r := newRig()
	r.synth.Start([]string{"A4", "C5"})
	faded := r.synth.Pool().Voices()[1]

	r.synth.ChangeChord([]string{"A4"})
	r.advance(500 * time.Millisecond)
	r.synth.ChangeChord([]string{"A4", "E5"})

	pool := r.synth.Pool()
	if pool.Voices()[1] != faded {
		t.Fatal("Expected the fading voice to be reclaimed")
	}
	if faded.State() != VoiceActive || pool.FadingCount() != 0 {
		t.Errorf("Expected reclaimed voice active, state %s, fading %d", faded.State(), pool.FadingCount())
	}
	if r.sched.Pending() != 0 {
		t.Errorf("Expected disposal timer cancelled, %d pending", r.sched.Pending())
	}
	if r.eng.Created(audiotest.KindOscillator) != 8 {
		t.Errorf("Expected no new oscillators, got %d created", r.eng.Created(audiotest.KindOscillator))
	}

	// Gains come back up to the blend
	if g := recGain(faded, 0).GainParam(); g.Target() != 1 || g.Ramp().Length != parameter.BlendSmoothing {
		t.Errorf("Expected sine gain ramping to 1 over %v, got %f over %v", parameter.BlendSmoothing, g.Target(), g.Ramp().Length)
	}

	r.advance(3 * parameter.DisposeDelay)
	if faded.State() != VoiceActive || recOsc(faded, 0).Disposed() {
		t.Error("Reclaimed voice was disposed by a stale timer")
	}
	r.assertConserved(t)
}

// TestPoolStopDuringFade verifies Stop disposes fading voices once and cancels their timers
func TestPoolStopDuringFade(t *testing.T) {
	r := newRig()
	r.synth.Start([]string{"A4", "C5", "E5"})
	r.synth.ChangeChord([]string{"A4"})
	r.advance(time.Second)

	r.synth.Stop()

	if r.sched.Pending() != 0 {
		t.Errorf("Expected no pending timers, got %d", r.sched.Pending())
	}
	if r.eng.LiveNodes() != 0 {
		t.Errorf("Expected zero live nodes, got %d", r.eng.LiveNodes())
	}

	r.advance(3 * parameter.DisposeDelay)
	if r.eng.DoubleDisposals() != 0 {
		t.Errorf("Expected no double disposals, got %d", r.eng.DoubleDisposals())
	}
}

// TestPoolStopIdempotent verifies a second Stop changes nothing
func TestPoolStopIdempotent(t *testing.T) {
	r := newRig()
	r.synth.Start([]string{"A4", "C5"})

	r.synth.Stop()
	gen := r.synth.Pool().Generation()
	r.synth.Stop()
	r.synth.Pool().Stop()

	if r.synth.Pool().Generation() != gen {
		t.Error("Expected second Stop to be a no-op")
	}
	if r.eng.LiveNodes() != 0 || r.eng.DoubleDisposals() != 0 {
		t.Errorf("Expected clean teardown, live %d double %d", r.eng.LiveNodes(), r.eng.DoubleDisposals())
	}
	if !r.synth.Pool().Empty() {
		t.Error("Expected empty pool")
	}
}

// TestPoolConservationSequence verifies node accounting across a mixed call sequence
func TestPoolConservationSequence(t *testing.T) {
	r := newRig()
	steps := [][]string{
		{"C4"},
		{"C4", "E4", "G4", "B4"},
		{"D4", "F4"},
		{"D4", "F4", "A4"},
		{"E4"},
		{"E4", "G4"},
	}

	r.synth.Start(steps[0])
	r.assertConserved(t)
	for _, chord := range steps[1:] {
		if err := r.synth.ChangeChord(chord); err != nil {
			t.Fatalf("ChangeChord(%v): %v", chord, err)
		}
		r.assertConserved(t)
		r.advance(700 * time.Millisecond)
		r.assertConserved(t)
	}

	r.advance(parameter.DisposeDelay)
	if r.synth.Pool().FadingCount() != 0 {
		t.Errorf("Expected all fades settled, got %d", r.synth.Pool().FadingCount())
	}
	if got := r.eng.Live(audiotest.KindOscillator); got != 4*r.synth.Pool().Len() {
		t.Errorf("Expected %d live oscillators at quiescence, got %d", 4*r.synth.Pool().Len(), got)
	}

	r.synth.Stop()
	r.assertConserved(t)
	if r.eng.LiveNodes() != 0 {
		t.Errorf("Expected zero live nodes after stop, got %d", r.eng.LiveNodes())
	}
}

// TestPoolRetargetFromEmptyIsNoop verifies retarget needs a running pool
func TestPoolRetargetFromEmptyIsNoop(t *testing.T) {
	r := newRig()
	if err := r.synth.Pool().Retarget([]string{"A4"}, r.synth.Params()); err != nil {
		t.Fatalf("Retarget: %v", err)
	}
	if r.eng.Created(audiotest.KindOscillator) != 0 {
		t.Error("Expected nothing created")
	}

	r.synth.Start([]string{"A4"})
	gen := r.synth.Pool().Generation()
	r.synth.Pool().Retarget(nil, r.synth.Params())
	if r.synth.Pool().Generation() != gen {
		t.Error("Expected empty target to be a no-op")
	}
}

// TestPoolStartRollback verifies an engine failure part-way leaves nothing behind
func TestPoolStartRollback(t *testing.T) {
	// Chain is 4 nodes, each voice 8; fail inside the second voice
	for _, budget := range []int{0, 2, 4, 7, 13} {
		r := newRig()
		r.eng.FailAfter(budget)

		err := r.synth.Start([]string{"A4", "C5", "E5"})
		if !errors.Is(err, ErrEngineUnavailable) {
			t.Errorf("budget %d: expected ErrEngineUnavailable, got %v", budget, err)
		}
		if r.eng.LiveNodes() != 0 {
			t.Errorf("budget %d: expected zero live nodes, got %d", budget, r.eng.LiveNodes())
		}
		if r.eng.DoubleDisposals() != 0 {
			t.Errorf("budget %d: expected no double disposals", budget)
		}
		if !r.synth.Pool().Empty() {
			t.Errorf("budget %d: expected empty pool", budget)
		}

		// Retry succeeds once the engine recovers
		r.eng.FailAfter(-1)
		if err := r.synth.Start([]string{"A4"}); err != nil {
			t.Errorf("budget %d: retry failed: %v", budget, err)
		}
	}
}

// TestPoolUnknownNote verifies validation precedes any allocation
func TestPoolUnknownNote(t *testing.T) {
	r := newRig()
	err := r.synth.Start([]string{"C4", "H9"})
	if !errors.Is(err, ErrUnknownNote) {
		t.Fatalf("Expected ErrUnknownNote, got %v", err)
	}
	if r.eng.Created(audiotest.KindDistortion) != 0 {
		t.Error("Expected no nodes created for an invalid chord")
	}

	r.synth.Start([]string{"C4"})
	if err := r.synth.ChangeChord([]string{"X"}); !errors.Is(err, ErrUnknownNote) {
		t.Errorf("Expected ErrUnknownNote from retarget, got %v", err)
	}
	if r.synth.Pool().Notes()[0] != "C4" {
		t.Error("Expected pool unchanged after invalid retarget")
	}
}
