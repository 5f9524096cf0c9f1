package biometric

const (
	DefaultEARThreshold   = 0.21
	DefaultMinBlinkFrames = 2
)

// BlinkDetector debounces eye aspect ratios into discrete blinks. A blink is
// counted once the ratio has stayed below Threshold for at least MinFrames
// consecutive frames and then returns to or above it.
type BlinkDetector struct {
	Threshold float64
	MinFrames int

	below int
	total int
}

func NewBlinkDetector() *BlinkDetector {
	return &BlinkDetector{Threshold: DefaultEARThreshold, MinFrames: DefaultMinBlinkFrames}
}

// Update takes the ratio of each eye and reports whether this frame completed a blink.
func (d *BlinkDetector) Update(leftEAR, rightEAR float64) bool {
	ear := (leftEAR + rightEAR) / 2
	if ear < d.Threshold {
		d.below++
		return false
	}
	blinked := d.below >= d.MinFrames
	d.below = 0
	if blinked {
		d.total++
	}
	return blinked
}

func (d *BlinkDetector) Total() int {
	return d.total
}
