package wave

import "testing"

func TestAnyExceedsIsExistsCheck(t *testing.T) {
	demand := map[int]int{0: 3, 1: 5}
	if AnyExceeds(demand, map[int]int{0: 3, 1: 5}) {
		t.Fatal("equal maps must not exceed")
	}
	if !AnyExceeds(demand, map[int]int{0: 3, 1: 4}) {
		t.Fatal("one short key must exceed")
	}
	// a missing key counts as zero availability
	if !AnyExceeds(demand, map[int]int{0: 10}) {
		t.Fatal("missing key must exceed")
	}
	// surplus elsewhere does not compensate a single deficit
	if !AnyExceeds(demand, map[int]int{0: 100, 1: 4}) {
		t.Fatal("surplus on another key must not mask a deficit")
	}
	if AnyExceeds(map[int]int{}, map[int]int{}) {
		t.Fatal("empty demand never exceeds")
	}
}

func TestRemoveMapDropsNonPositive(t *testing.T) {
	got := removeMap(map[int]int{0: 5, 1: 2, 2: 4}, map[int]int{0: 5, 1: 3, 2: 1})
	if len(got) != 1 || got[2] != 3 {
		t.Fatalf("removeMap: got %v, want map[2:3]", got)
	}
}

func TestMergeHelpers(t *testing.T) {
	merged := mergeMap(map[int]int{0: 1}, map[int]int{0: 2, 1: 3})
	if merged[0] != 3 || merged[1] != 3 {
		t.Fatalf("mergeMap: got %v", merged)
	}

	total := mergeListMaps([]map[int]int{{0: 1, 1: 2}, {0: 4}}, 2)
	if total[0] != 5 || total[1] != 2 {
		t.Fatalf("mergeListMaps: got %v", total)
	}

	dst := map[int]int{0: 2}
	removeMapInPlace(dst, map[int]int{0: 2})
	if len(dst) != 0 {
		t.Fatalf("removeMapInPlace: got %v, want empty", dst)
	}
}
