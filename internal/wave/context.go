package wave

import (
	"math/rand"
	"runtime"
	"sync"
	"time"
)

// MaxRuntime is the hard wall-clock budget for a solve, in milliseconds.
const MaxRuntime = 600000

// Stopwatch measures elapsed wall-clock time since Start. Tests may set
// Start in the past to shrink the effective budget, or swap Now for a
// manual clock.
type Stopwatch struct {
	Start time.Time
	Now   func() time.Time
}

func NewStopwatch() *Stopwatch {
	return &Stopwatch{Start: time.Now()}
}

func (s *Stopwatch) ElapsedMs() int64 {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	return now().Sub(s.Start).Milliseconds()
}

// Context is the immutable, precomputed view of one problem instance. It is
// built once and shared read-only by every solver component. The embedded
// RNG is the single randomness source for a run; seeding it makes the whole
// solve reproducible.
type Context struct {
	orders      []map[int]int
	aisles      []map[int]int
	matrix      *CSRMatrix
	stock       map[int]int
	validOrders []bool
	orderSums   []int
	nItems      int
	nOrders     int
	nAisles     int
	waveSizeLB  int
	waveSizeUB  int
	rng         *rand.Rand
}

// NewContext precomputes the instance view. A zero seed picks a
// time-derived one.
func NewContext(orders, aisles []map[int]int, nItems, waveSizeLB, waveSizeUB int, seed int64) *Context {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	c := &Context{
		orders:      orders,
		aisles:      aisles,
		nOrders:     len(orders),
		nAisles:     len(aisles),
		nItems:      nItems,
		waveSizeLB:  waveSizeLB,
		waveSizeUB:  waveSizeUB,
		validOrders: make([]bool, len(orders)),
		orderSums:   make([]int, len(orders)),
		stock:       mergeListMaps(aisles, nItems),
		rng:         rand.New(rand.NewSource(seed)),
	}
	c.matrix = newCSRMatrix(aisles, true, true, nItems)
	c.processOrders()
	return c
}

func (c *Context) Orders() []map[int]int   { return c.orders }
func (c *Context) Aisles() []map[int]int   { return c.aisles }
func (c *Context) Order(i int) map[int]int { return c.orders[i] }
func (c *Context) Aisle(i int) map[int]int { return c.aisles[i] }
func (c *Context) Matrix() *CSRMatrix      { return c.matrix }
func (c *Context) Stock() map[int]int      { return c.stock }
func (c *Context) NOrders() int            { return c.nOrders }
func (c *Context) NAisles() int            { return c.nAisles }
func (c *Context) NItems() int             { return c.nItems }
func (c *Context) WaveSizeLB() int         { return c.waveSizeLB }
func (c *Context) WaveSizeUB() int         { return c.waveSizeUB }
func (c *Context) OrderSum(i int) int      { return c.orderSums[i] }
func (c *Context) ValidOrder(i int) bool   { return c.validOrders[i] }
func (c *Context) Rand() *rand.Rand        { return c.rng }

// RemainingTime returns how much of the runtime budget is left, in
// milliseconds, never negative.
func (c *Context) RemainingTime(sw *Stopwatch) int64 {
	remaining := MaxRuntime - sw.ElapsedMs()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// processOrders computes per-order unit sums and validity. An order is
// valid when every demanded item is coverable by global stock, no single
// item demand exceeds the wave upper bound, and the order total fits under
// it. Each order writes distinct slots, so the work fans out over a worker
// pool.
func (c *Context) processOrders() {
	numWorkers := runtime.NumCPU()
	if numWorkers > c.nOrders {
		numWorkers = c.nOrders
	}
	if numWorkers < 1 {
		return
	}

	workChan := make(chan int, c.nOrders)
	wg := &sync.WaitGroup{}
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workChan {
				c.processOrder(i)
			}
		}()
	}
	for i := 0; i < c.nOrders; i++ {
		workChan <- i
	}
	close(workChan)
	wg.Wait()
}

func (c *Context) processOrder(i int) {
	valid := true
	sum := 0
	for item, qty := range c.orders[i] {
		if c.stock[item] < qty || qty > c.waveSizeUB {
			valid = false
		}
		sum += qty
	}
	if sum > c.waveSizeUB {
		valid = false
	}
	c.validOrders[i] = valid
	c.orderSums[i] = sum
}
