package wave

import (
	"math"
)

// DefaultPopulationSize is the population used when none is configured.
const DefaultPopulationSize = 10

// spiralB is the logarithmic spiral shape constant.
const spiralB = 1.0

// Stats reports what a solve did, for the service and admin surfaces.
type Stats struct {
	Generations  int               `json:"generations"`
	Evaluations  int               `json:"evaluations"`
	Improvements int               `json:"improvements"`
	BestFitness  float64           `json:"bestFitness"`
	Snapshots    []FitnessSnapshot `json:"snapshots,omitempty"`
}

// FitnessSnapshot records the best fitness seen as of a generation.
type FitnessSnapshot struct {
	Generation  int     `json:"generation"`
	BestFitness float64 `json:"bestFitness"`
}

// IWOA runs the whale optimization driver: a continuous-vector population
// seeded by an exact relaxation and two constructive heuristics, sharing
// the repair operator and the penalized objective. OnGeneration, when set,
// is called after every generation with the current generation count and
// best fitness.
type IWOA struct {
	in             *Context
	seed           SeedSolver
	PopulationSize int
	MaxGenerations int // optional generation cap; 0 means budget-only
	OnGeneration   func(generation int, bestFitness float64)
}

func NewIWOA(in *Context, seed SeedSolver) *IWOA {
	if seed == nil {
		seed = NoSeed{}
	}
	return &IWOA{in: in, seed: seed, PopulationSize: DefaultPopulationSize}
}

const snapshotEvery = 50

// Solve runs until the runtime budget on the stopwatch is nearly spent
// (10 ms of slack) and returns the best wave observed plus run statistics.
func (w *IWOA) Solve(sw *Stopwatch) (Wave, Stats) {
	in := w.in
	popSize := w.PopulationSize
	if popSize <= 0 {
		popSize = DefaultPopulationSize
	}

	population := make([]*Individual, popSize)
	allocatedForSeed := in.RemainingTime(sw) / 2

	for i := 0; i < popSize; i++ {
		switch i {
		case 0:
			population[i] = NewSeededIndividual(in, w.seed.Solve(in, allocatedForSeed))
		case 3:
			population[i] = NewSeededIndividual(in, DecreasingTotal(in))
		case 4:
			population[i] = NewSeededIndividual(in, DecreasingEffort(in))
		default:
			population[i] = NewRandomIndividual(in)
		}
	}

	st := Stats{}

	// math.SmallestNonzeroFloat64 mirrors the positive-epsilon floor the
	// leader threshold starts from: slot 0 stays leader until something
	// scores strictly above it.
	maxFitness := math.SmallestNonzeroFloat64
	leaderIndex := 0
	for i := 0; i < popSize; i++ {
		fit := population[i].Evaluate()
		st.Evaluations++
		if fit > maxFitness {
			maxFitness = fit
			leaderIndex = i
		}
	}
	leader := population[leaderIndex].Clone()

	rng := in.Rand()
	for in.RemainingTime(sw) > 10 {
		if w.MaxGenerations > 0 && st.Generations >= w.MaxGenerations {
			break
		}
		st.Generations++
		elapsedSec := float64(sw.ElapsedMs())
		a := 2 - (2 * elapsedSec / MaxRuntime)

		for i := 0; i < popSize; i++ {
			ind := population[i]
			if rng.Intn(2) == 0 {
				A := 2*a*rng.Float64() - a
				C := 2 * rng.Float64()

				target := leader
				if math.Abs(A) >= 1 {
					target = population[rng.Intn(popSize)]
				}
				for j := range ind.Orders {
					D := math.Abs(C*target.Orders[j] - ind.Orders[j])
					ind.Orders[j] = target.Orders[j] - A*D
				}
				for j := range ind.Aisles {
					D := math.Abs(C*target.Aisles[j] - ind.Aisles[j])
					ind.Aisles[j] = target.Aisles[j] - A*D
				}
			} else {
				for j := range ind.Orders {
					ind.Orders[j] = spiralStep(leader.Orders[j], ind.Orders[j], rng.Float64())
				}
				for j := range ind.Aisles {
					ind.Aisles[j] = spiralStep(leader.Aisles[j], ind.Aisles[j], rng.Float64())
				}
			}

			ind.Clip()
			Repair(ind)
			fit := ind.Evaluate()
			st.Evaluations++
			if fit > maxFitness {
				maxFitness = fit
				leader = ind.Clone()
				st.Improvements++
			}
		}

		if w.OnGeneration != nil {
			w.OnGeneration(st.Generations, maxFitness)
		}
		if st.Generations%snapshotEvery == 0 {
			st.Snapshots = append(st.Snapshots, FitnessSnapshot{Generation: st.Generations, BestFitness: maxFitness})
		}
	}

	st.BestFitness = maxFitness
	return leader.ToWave(), st
}

// spiralStep moves a coordinate along a logarithmic spiral around the
// leader. The draw u in [0,1) maps to l in [-1, 1.1), clamped at 1.
func spiralStep(leaderPos, pos, u float64) float64 {
	D := math.Abs(leaderPos - pos)
	l := -1 + u*2.1
	if l > 1 {
		l = 1
	}
	return D*math.Exp(spiralB*l)*math.Cos(2*math.Pi*l) + leaderPos
}
