package wave

// CoverageMode selects how the aisle coverage selector picks among
// candidate aisles.
type CoverageMode int

const (
	// CoverGreedy picks the aisle with the largest contribution; the first
	// seen wins ties.
	CoverGreedy CoverageMode = iota
	// CoverWeighted picks an aisle with probability proportional to its
	// contribution.
	CoverWeighted
)

// contribTable accumulates per-aisle contributions while preserving the
// order aisles were first seen, so that "first max wins" and the weighted
// cumulative walk are deterministic.
type contribTable struct {
	order []int
	total map[int]int
}

func newContribTable() *contribTable {
	return &contribTable{total: map[int]int{}}
}

func (t *contribTable) add(aisle, contribution int) {
	if _, seen := t.total[aisle]; !seen {
		t.order = append(t.order, aisle)
	}
	t.total[aisle] += contribution
}

func (t *contribTable) sum() int {
	sum := 0
	for _, v := range t.total {
		sum += v
	}
	return sum
}

// firstMax returns the first-seen aisle with the strictly largest
// contribution, or -1 when all contributions are zero.
func (t *contribTable) firstMax() (aisle, contribution int) {
	aisle = -1
	for _, a := range t.order {
		if t.total[a] > contribution {
			contribution = t.total[a]
			aisle = a
		}
	}
	return aisle, contribution
}

// weighted draws r uniformly from [1, total] and walks the table in first-
// seen order subtracting contributions until r drops to zero or below.
func (t *contribTable) weighted(in *Context) int {
	total := t.sum()
	if total <= 0 {
		return -1
	}
	r := in.Rand().Intn(total) + 1
	for _, a := range t.order {
		r -= t.total[a]
		if r <= 0 {
			return a
		}
	}
	return -1
}

// SelectAisles returns a set of aisles whose combined stock covers the
// required units elementwise when possible, or the best partial set when
// the remaining demand cannot be contributed to at all. Each round scores
// every still-available aisle by how much of the remaining demand it would
// satisfy, picks one according to the mode, and subtracts its stock.
func SelectAisles(required map[int]int, in *Context, mode CoverageMode) map[int]bool {
	selected := map[int]bool{}
	remaining := make(map[int]int, len(required))
	for k, v := range required {
		remaining[k] = v
	}
	available := make(map[int]bool, in.NAisles())
	for a := 0; a < in.NAisles(); a++ {
		available[a] = true
	}

	matrix := in.Matrix()

	for len(remaining) > 0 {
		contributions := newContribTable()
		for _, item := range sortedKeys(remaining) {
			needed := remaining[item]
			cols, qtys := matrix.Row(item)
			for idx, aisle := range cols {
				if !available[aisle] {
					continue
				}
				contribute := qtys[idx]
				if contribute > needed {
					contribute = needed
				}
				contributions.add(aisle, contribute)
			}
		}

		var chosen int
		switch mode {
		case CoverWeighted:
			chosen = contributions.weighted(in)
		default:
			chosen, _ = contributions.firstMax()
		}
		if chosen == -1 {
			break
		}

		selected[chosen] = true
		delete(available, chosen)

		for item, qty := range in.Aisle(chosen) {
			if need, ok := remaining[item]; ok {
				if need-qty <= 0 {
					delete(remaining, item)
				} else {
					remaining[item] = need - qty
				}
			}
		}
	}
	return selected
}
