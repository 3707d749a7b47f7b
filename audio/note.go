package audio

import (
	"fmt"
	"strconv"
)

// NoteFrequencies contains precomputed frequencies for MIDI notes 0-127
// A4 (note 69) = 440Hz, equal temperament
var NoteFrequencies [128]float64

// NoteNames are the twelve pitch classes in sharp spelling
var NoteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func init() {
	for i := range NoteFrequencies {
		NoteFrequencies[i] = 440.0 * pow2((float64(i)-69.0)/12.0)
	}
}

// pow2 computes 2^x using Taylor series
func pow2(x float64) float64 {
	ln2 := 0.693147180559945
	y := x * ln2
	sum := 1.0
	term := 1.0
	for i := 1; i < 30; i++ {
		term *= y / float64(i)
		sum += term
	}
	return sum
}

// NoteFreq returns frequency in Hz for MIDI note number
func NoteFreq(midi int) float64 {
	if midi < 0 || midi >= 128 {
		return 0
	}
	return NoteFrequencies[midi]
}

// NoteName returns the sharp spelling of a MIDI note, e.g. 61 -> "C#4"
func NoteName(midi int) string {
	if midi < 0 || midi >= 128 {
		return ""
	}
	return NoteNames[midi%12] + strconv.Itoa(midi/12-1)
}

// ParseNote converts scientific pitch notation ("C#4", "Bb2") to a MIDI note number
// C4 is 60
func ParseNote(name string) (int, error) {
	if len(name) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}

	var class int
	switch name[0] {
	case 'C', 'c':
		class = 0
	case 'D', 'd':
		class = 2
	case 'E', 'e':
		class = 4
	case 'F', 'f':
		class = 5
	case 'G', 'g':
		class = 7
	case 'A', 'a':
		class = 9
	case 'B', 'b':
		class = 11
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}

	rest := name[1:]
	switch rest[0] {
	case '#':
		class++
		rest = rest[1:]
	case 'b':
		class--
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil || len(rest) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}

	midi := (octave+1)*12 + class
	if midi < 0 || midi >= 128 {
		return 0, fmt.Errorf("%w: %q out of range", ErrUnknownNote, name)
	}
	return midi, nil
}

// NoteFrequency parses a note name and returns its frequency in Hz
func NoteFrequency(name string) (float64, error) {
	midi, err := ParseNote(name)
	if err != nil {
		return 0, err
	}
	return NoteFreq(midi), nil
}
