package wave

import "testing"

func TestRepairTrimsAboveUpperBound(t *testing.T) {
	orders := []map[int]int{{0: 4}, {0: 4}, {0: 4}}
	aisles := []map[int]int{{0: 12}}
	in := NewContext(orders, aisles, 1, 1, 8, 1)

	ind := NewIndividual(in)
	for i := range ind.Orders {
		ind.Orders[i] = 1.0
	}
	ind.Aisles[0] = 1.0

	Repair(ind)
	ordersBits, _ := ind.Binary()
	total := recalcTotalUnits(ordersBits, in)
	if total > 8 || total < 1 {
		t.Fatalf("total after repair: %d, want within [1, 8]", total)
	}
	// lowest-indexed set bits are pruned first
	if ordersBits.Test(0) {
		t.Fatal("order 0 should have been pruned first")
	}
}

func TestRepairFillsBelowLowerBound(t *testing.T) {
	orders := []map[int]int{{0: 3}, {0: 3}, {0: 3}}
	aisles := []map[int]int{{0: 9}}
	in := NewContext(orders, aisles, 1, 9, 9, 1)

	ind := NewIndividual(in)
	Repair(ind)
	ordersBits, aislesBits := ind.Binary()

	total := recalcTotalUnits(ordersBits, in)
	clear := in.NOrders() - int(ordersBits.Count())
	if total < 9 && clear > 0 {
		t.Fatalf("total %d below LB with %d clear bits left", total, clear)
	}
	if aislesBits.Count() == 0 {
		t.Fatal("repair must leave at least one aisle")
	}
}

func TestRepairExtendsAislesToCoverDemand(t *testing.T) {
	orders := []map[int]int{{0: 4, 1: 2}}
	aisles := []map[int]int{{0: 4}, {1: 2}, {0: 1}}
	in := NewContext(orders, aisles, 2, 1, 10, 1)

	ind := NewIndividual(in)
	ind.Orders[0] = 1.0
	// no aisle selected: repair sets one at random, then covers the deficit
	Repair(ind)

	ordersBits, aislesBits := ind.Binary()
	required := computeRequired(ordersBits, in.Orders())
	available := computeRequired(aislesBits, in.Aisles())
	if AnyExceeds(required, available) {
		t.Fatalf("demand %v not covered by %v", required, available)
	}
}

func TestRepairWritesBinaryPositions(t *testing.T) {
	orders := []map[int]int{{0: 2}, {0: 3}}
	aisles := []map[int]int{{0: 9}}
	in := NewContext(orders, aisles, 1, 1, 9, 1)

	ind := NewRandomIndividual(in)
	Repair(ind)
	for _, v := range append(append([]float64{}, ind.Orders...), ind.Aisles...) {
		if v != 0.0 && v != 1.0 {
			t.Fatalf("position %v not binary after repair", v)
		}
	}
}

func TestRepairEmptyInstance(t *testing.T) {
	in := NewContext(nil, []map[int]int{{0: 5}}, 1, 0, 0, 1)
	ind := NewIndividual(in)
	Repair(ind) // must not panic with zero orders
	_, aislesBits := ind.Binary()
	if aislesBits.Count() == 0 {
		t.Fatal("repair must still pick an aisle")
	}
}
