package audio

import "time"

// Ramp is a linear parameter trajectory on the engine clock
type Ramp struct {
	From   float64
	To     float64
	Start  time.Duration
	Length time.Duration
}

// Hold returns a ramp pinned at v
func Hold(v float64) Ramp {
	return Ramp{From: v, To: v}
}

// At evaluates the ramp at engine time t
func (r Ramp) At(t time.Duration) float64 {
	if r.Length <= 0 || t >= r.Start+r.Length {
		return r.To
	}
	if t <= r.Start {
		return r.From
	}
	frac := float64(t-r.Start) / float64(r.Length)
	return r.From + (r.To-r.From)*frac
}

// Retarget starts a new ramp from the value at now, so in-flight ramps never jump
func (r Ramp) Retarget(now time.Duration, to float64, d time.Duration) Ramp {
	return Ramp{
		From:   r.At(now),
		To:     to,
		Start:  now,
		Length: d,
	}
}

// Settled reports whether the ramp has reached its target at t
func (r Ramp) Settled(t time.Duration) bool {
	return r.Length <= 0 || t >= r.Start+r.Length
}
