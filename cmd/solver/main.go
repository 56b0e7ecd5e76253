// The solver command runs one instance file through the full pipeline and
// writes the answer in the challenge output format.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"wavepick/internal/ilp"
	"wavepick/internal/parse"
	"wavepick/internal/wave"
)

type solverConfig struct {
	PopulationSize int   `yaml:"populationSize"`
	Seed           int64 `yaml:"seed"`
	TimeBudgetMs   int64 `yaml:"timeBudgetMs"`
	SkipSeedSolver bool  `yaml:"skipSeedSolver"`
}

func main() {
	var (
		inPath     = flag.String("in", "", "instance file (required)")
		outPath    = flag.String("out", "", "answer file (default: stdout)")
		configPath = flag.String("config", "", "optional YAML config file")
	)
	flag.Parse()
	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := solverConfig{}
	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("read config: %v", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Fatalf("parse config: %v", err)
		}
	}

	f, err := os.Open(*inPath)
	if err != nil {
		log.Fatalf("open instance: %v", err)
	}
	inst, err := parse.ReadInstance(f)
	_ = f.Close()
	if err != nil {
		log.Fatalf("parse instance: %v", err)
	}

	started := time.Now()
	sw := wave.NewStopwatch()
	in := wave.NewContext(inst.Orders, inst.Aisles, inst.NItems, inst.WaveSizeLB, inst.WaveSizeUB, cfg.Seed)

	var seed wave.SeedSolver = ilp.Solver{}
	if cfg.SkipSeedSolver {
		seed = wave.NoSeed{}
	}
	driver := wave.NewIWOA(in, seed)
	if cfg.PopulationSize > 0 {
		driver.PopulationSize = cfg.PopulationSize
	}
	if cfg.TimeBudgetMs > 0 && cfg.TimeBudgetMs < wave.MaxRuntime {
		// Backdate the stopwatch so the runtime wall leaves exactly the
		// configured budget.
		sw.Start = sw.Start.Add(-time.Duration(wave.MaxRuntime-cfg.TimeBudgetMs) * time.Millisecond)
	}

	result, stats := driver.Solve(sw)

	out := os.Stdout
	if *outPath != "" {
		out, err = os.Create(*outPath)
		if err != nil {
			log.Fatalf("create answer file: %v", err)
		}
		defer func() { _ = out.Close() }()
	}
	if err := parse.WriteWave(out, result); err != nil {
		log.Fatalf("write answer: %v", err)
	}

	fmt.Fprintf(os.Stderr, "Is solution feasible: %v\n", wave.IsFeasible(in, result))
	fmt.Fprintf(os.Stderr, "Objective function value: %.4f\n", result.ObjectiveValue())
	fmt.Fprintf(os.Stderr, "Execution time: %.3f s (%d generations, %d evaluations)\n",
		time.Since(started).Seconds(), stats.Generations, stats.Evaluations)
}
