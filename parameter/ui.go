package parameter

// Layout
const (
	// GridLeftMargin leaves room for the octave label
	GridLeftMargin = 4

	// GridCellWidth fits the widest note name plus padding ("C#8 ")
	GridCellWidth = 5

	// MeterWidth is the analyser level bar width in cells
	MeterWidth = 40
)

// Status text
const (
	StatusPlaying = " PLAYING "
	StatusStopped = " STOPPED "
	AudioStr      = "♫ "
)
