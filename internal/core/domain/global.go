package domain

import "math/bits"

// GlobalAggregate is the protocol-wide counter. There is exactly one,
// stored under GlobalAggregateLabel.
type GlobalAggregate struct {
	Label string
	Count uint64
}

const GlobalAggregateLabel = "global6"

func NewGlobalAggregate() *GlobalAggregate {
	return &GlobalAggregate{Label: GlobalAggregateLabel}
}

func (g *GlobalAggregate) Add(delta uint64) error {
	sum, carry := bits.Add64(g.Count, delta, 0)
	if carry != 0 {
		return ErrAggregateOverflow
	}
	g.Count = sum
	return nil
}
