package booking

import "time"

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewWindow(start, end time.Time) Window {
	return Window{Start: start, End: end}
}

// Overlaps uses the half-open rule: [a1,a2) and [b1,b2) overlap iff a1 < b2 and b1 < a2.
// Touching windows (a2 == b1) do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Validate checks the temporal rules that apply before any store access.
func (w Window) Validate(now time.Time) error {
	if !w.Start.After(now) {
		return ErrStartInPast
	}
	if !w.End.After(w.Start) {
		return ErrInvalidWindow
	}
	return nil
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}
