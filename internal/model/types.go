package model

import (
	"sort"
	"time"

	"wavepick/internal/wave"
)

// ItemCount is one (item, quantity) pair of an order or aisle.
type ItemCount struct {
	Item int `json:"item"`
	Qty  int `json:"qty"`
}

// InstanceIn is the submit payload for a problem instance.
type InstanceIn struct {
	Name       string        `json:"name,omitempty"`
	NItems     int           `json:"nItems"`
	Orders     [][]ItemCount `json:"orders"`
	Aisles     [][]ItemCount `json:"aisles"`
	WaveSizeLB int           `json:"waveSizeLB"`
	WaveSizeUB int           `json:"waveSizeUB"`
}

// Instance is a stored problem instance.
type Instance struct {
	ID         string        `json:"id"`
	TenantID   string        `json:"tenantId"`
	Name       string        `json:"name,omitempty"`
	NItems     int           `json:"nItems"`
	NOrders    int           `json:"nOrders"`
	NAisles    int           `json:"nAisles"`
	Orders     [][]ItemCount `json:"orders,omitempty"`
	Aisles     [][]ItemCount `json:"aisles,omitempty"`
	WaveSizeLB int           `json:"waveSizeLB"`
	WaveSizeUB int           `json:"waveSizeUB"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// SolveRequest starts a solve job for a stored instance. A zero budget
// means the full runtime wall; a zero seed picks one.
type SolveRequest struct {
	InstanceID     string `json:"instanceId"`
	TimeBudgetMs   int64  `json:"timeBudgetMs,omitempty"`
	Seed           int64  `json:"seed,omitempty"`
	PopulationSize int    `json:"populationSize,omitempty"`
	SkipSeedSolver bool   `json:"skipSeedSolver,omitempty"`
}

// Job lifecycle statuses.
const (
	JobQueued  = "queued"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

// Job is one solve run over an instance.
type Job struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	InstanceID string    `json:"instanceId"`
	Status     string    `json:"status"`
	Seed       int64     `json:"seed,omitempty"`
	Population int       `json:"populationSize,omitempty"`
	BudgetMs   int64     `json:"timeBudgetMs,omitempty"`
	Error      string    `json:"error,omitempty"`
	Wave       *WaveOut  `json:"wave,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	StartedAt  time.Time `json:"startedAt,omitempty"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// WaveOut is the serialized form of a solved wave.
type WaveOut struct {
	Orders         []int       `json:"orders"`
	Aisles         []int       `json:"aisles"`
	UnitsPicked    []ItemCount `json:"unitsPicked"`
	UnitsAvailable []ItemCount `json:"unitsAvailable"`
	TotalUnits     int         `json:"totalUnitsPicked"`
	Objective      float64     `json:"objective"`
	Feasible       bool        `json:"feasible"`
}

// ItemMaps converts pair lists to the item->qty maps the solver consumes.
func ItemMaps(lists [][]ItemCount) []map[int]int {
	maps := make([]map[int]int, len(lists))
	for i, list := range lists {
		m := make(map[int]int, len(list))
		for _, ic := range list {
			m[ic.Item] += ic.Qty
		}
		maps[i] = m
	}
	return maps
}

// ItemLists converts item->qty maps to sorted pair lists for storage and
// JSON output.
func ItemLists(maps []map[int]int) [][]ItemCount {
	lists := make([][]ItemCount, len(maps))
	for i, m := range maps {
		lists[i] = itemCounts(m)
	}
	return lists
}

// NewWaveOut flattens a wave into its output form.
func NewWaveOut(in *wave.Context, w wave.Wave) *WaveOut {
	return &WaveOut{
		Orders:         sortedIndices(w.Orders),
		Aisles:         sortedIndices(w.Aisles),
		UnitsPicked:    itemCounts(w.UnitsPicked),
		UnitsAvailable: itemCounts(w.UnitsAvailable),
		TotalUnits:     w.TotalUnits,
		Objective:      w.ObjectiveValue(),
		Feasible:       wave.IsFeasible(in, w),
	}
}

func sortedIndices(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func itemCounts(m map[int]int) []ItemCount {
	out := make([]ItemCount, 0, len(m))
	for item, qty := range m {
		out = append(out, ItemCount{Item: item, Qty: qty})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Item < out[b].Item })
	return out
}
