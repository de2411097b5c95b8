package mastery

// Tally is one grading event's per-topic count.
type Tally struct {
	Correct int
	Total   int
}

func (t Tally) Observed() float64 {
	if t.Total <= 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Total)
}

// Blend is the EMA step alpha*observed + (1-alpha)*old, clamped to [0,1].
func Blend(alpha, old, observed float64) float64 {
	return clamp(alpha*observed + (1-alpha)*old)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
