package calculator

import "SignalScanner/internal/model"

// FindLastCrossover scans backward from the last index to index 1 and returns the
// most recent bar where fast moved strictly across slow. Equality on either side of
// the boundary is not a transition. ok is false when no crossover exists.
func FindLastCrossover(fast, slow []float64) (evt model.CrossoverEvent, ok bool) {
	n := len(fast)
	if len(slow) < n {
		n = len(slow)
	}
	for j := n - 1; j >= 1; j-- {
		switch {
		case fast[j] > slow[j] && fast[j-1] < slow[j-1]:
			return model.CrossoverEvent{Index: j, Direction: model.DirectionUp}, true
		case fast[j] < slow[j] && fast[j-1] > slow[j-1]:
			return model.CrossoverEvent{Index: j, Direction: model.DirectionDown}, true
		}
	}
	return model.CrossoverEvent{}, false
}
