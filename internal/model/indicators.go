package model

// IndicatorSet holds the derived series of one evaluation. Every slice has the
// same length as the input bars and shares its indices.
type IndicatorSet struct {
	FastEMA   []float64
	SlowEMA   []float64
	VolumeEMA []float64
}

// Direction is the side of a crossover.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// Action returns the trade side implied by the direction.
func (d Direction) Action() string {
	if d == DirectionUp {
		return "BUY"
	}
	return "SELL"
}

// CrossoverEvent marks the bar at which the fast EMA moved across the slow EMA.
type CrossoverEvent struct {
	Index     int
	Direction Direction
}
