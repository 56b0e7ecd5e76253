package wave

// Wave is a selected subset of orders plus the aisles visited to pick them,
// together with the derived per-item aggregates.
type Wave struct {
	Orders         map[int]bool
	Aisles         map[int]bool
	UnitsPicked    map[int]int
	UnitsAvailable map[int]int
	TotalUnits     int
}

// EmptyWave returns a wave with no orders and no aisles.
func EmptyWave() Wave {
	return Wave{
		Orders:         map[int]bool{},
		Aisles:         map[int]bool{},
		UnitsPicked:    map[int]int{},
		UnitsAvailable: map[int]int{},
	}
}

// NewWave derives the aggregates for the given order and aisle sets.
func NewWave(in *Context, orders, aisles map[int]bool) Wave {
	picked := map[int]int{}
	total := 0
	for o := range orders {
		mergeMapInPlace(picked, in.Order(o))
		total += in.OrderSum(o)
	}
	available := map[int]int{}
	for a := range aisles {
		mergeMapInPlace(available, in.Aisle(a))
	}
	return Wave{
		Orders:         orders,
		Aisles:         aisles,
		UnitsPicked:    picked,
		UnitsAvailable: available,
		TotalUnits:     total,
	}
}

// ObjectiveValue is units picked per aisle visited, zero when no aisle is
// visited.
func (w Wave) ObjectiveValue() float64 {
	if len(w.Aisles) == 0 {
		return 0
	}
	return float64(w.TotalUnits) / float64(len(w.Aisles))
}

// IsFeasible reports whether the wave satisfies all constraints: both sets
// non-empty, total units within [LB, UB], and availability covering demand
// on every item.
func IsFeasible(in *Context, w Wave) bool {
	if len(w.Orders) == 0 || len(w.Aisles) == 0 {
		return false
	}
	if w.TotalUnits < in.WaveSizeLB() || w.TotalUnits > in.WaveSizeUB() {
		return false
	}
	return !AnyExceeds(w.UnitsPicked, w.UnitsAvailable)
}
