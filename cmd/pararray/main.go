// Command pararray populates and reduces a large array of integers with the
// executors, fork-join, and sequential strategies, and reports the
// minimum, maximum, and mean together with the elapsed time.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"golang.org/x/term"
	"gonum.org/v1/gonum/stat"

	"github.com/exascience/pararray"
	"github.com/exascience/pararray/parallel"
)

const (
	ExitSuccess       = 0
	ExitErrorGeneric  = 1
	ExitErrorInput    = 2
	ExitErrorMismatch = 3
	ExitErrorCanceled = 130
)

// AppConfig holds the command-line parameters.
type AppConfig struct {
	Size      int
	Workers   int
	Strategy  string
	Runs      int
	Threshold int
	Seed      uint64
	Seeded    bool
	Trace     string
}

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
	headColor = color.New(color.Bold)
)

func main() {
	sizeFlag := flag.Int("size", 10_000_000, "number of values in the array")
	workersFlag := flag.Int("workers", runtime.GOMAXPROCS(0), "worker count of the executors strategy")
	strategyFlag := flag.String("strategy", "all", "executors, forkjoin, sequential, or all")
	runsFlag := flag.Int("runs", 1, "repetitions per strategy")
	thresholdFlag := flag.Int("threshold", parallel.DefaultThreshold, "leaf size of the fork-join strategy")
	seedFlag := flag.Uint64("seed", 0, "seed for reproducible values (0 = random)")
	traceFlag := flag.String("trace", "error", "trace level: error, info, or debug")
	noColorFlag := flag.Bool("no-color", false, "disable colored output")
	flag.Parse()

	color.NoColor = *noColorFlag || !term.IsTerminal(int(os.Stdout.Fd()))

	config := AppConfig{
		Size:      *sizeFlag,
		Workers:   *workersFlag,
		Strategy:  *strategyFlag,
		Runs:      *runsFlag,
		Threshold: *thresholdFlag,
		Seed:      *seedFlag,
		Seeded:    *seedFlag != 0,
		Trace:     *traceFlag,
	}
	setupTracing(config.Trace)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx, config, os.Stdout)
	stop()
	os.Exit(exitCode)
}

func setupTracing(level string) {
	tracing.SetTraceSelector(tracing.SelectorForAdapter(gologadapter.GetAdapter()))
	tracing.Select("pararray").SetTraceLevel(tracing.TraceLevelFromString(level))
}

// strategy pairs a population and a reduction that belong together.
type strategy struct {
	name     string
	populate func(ctx context.Context, e *pararray.Engine) error
	compute  func(ctx context.Context, e *pararray.Engine) error
}

func strategies(config AppConfig) map[string]strategy {
	return map[string]strategy{
		"executors": {
			name: fmt.Sprintf("executors (%d workers)", config.Workers),
			populate: func(ctx context.Context, e *pararray.Engine) error {
				return e.PopulateWithExecutors(ctx, config.Workers)
			},
			compute: func(ctx context.Context, e *pararray.Engine) error {
				return e.ComputeWithExecutors(ctx, config.Workers)
			},
		},
		"forkjoin": {
			name: fmt.Sprintf("fork-join (threshold %d)", config.Threshold),
			populate: func(ctx context.Context, e *pararray.Engine) error {
				return e.PopulateWithForkJoin(ctx)
			},
			compute: func(ctx context.Context, e *pararray.Engine) error {
				return e.ComputeWithForkJoin(ctx)
			},
		},
		"sequential": {
			name: "sequential",
			populate: func(ctx context.Context, e *pararray.Engine) error {
				return e.PopulateSequential(ctx)
			},
			compute: func(ctx context.Context, e *pararray.Engine) error {
				return e.ComputeSequential(ctx)
			},
		},
	}
}

var strategyOrder = []string{"executors", "forkjoin", "sequential"}

func run(ctx context.Context, config AppConfig, out io.Writer) int {
	if config.Runs <= 0 {
		failColor.Fprintf(out, "Error: invalid number of runs: %d\n", config.Runs)
		return ExitErrorInput
	}
	registry := strategies(config)
	var selected []string
	if s := strings.ToLower(config.Strategy); s == "all" {
		selected = strategyOrder
	} else if _, ok := registry[s]; ok {
		selected = []string{s}
	} else {
		failColor.Fprintf(out, "Error: unknown strategy %q\n", config.Strategy)
		return ExitErrorInput
	}

	opts := []pararray.Option{pararray.WithThreshold(config.Threshold)}
	if config.Seeded {
		opts = append(opts, pararray.WithSeed(config.Seed))
	}
	engine := pararray.NewEngine(opts...)
	defer engine.Close()

	headColor.Fprintf(out, "--- Configuration ---\n")
	fmt.Fprintf(out, "Size=%d | Workers=%d | Threshold=%d | Runs=%d | CPUs=%d\n",
		config.Size, config.Workers, engine.Threshold(), config.Runs, runtime.NumCPU())

	for _, key := range selected {
		if code := measure(ctx, engine, registry[key], config, out); code != ExitSuccess {
			return code
		}
	}
	if len(selected) > 1 {
		return crossCheck(ctx, engine, registry, out)
	}
	return ExitSuccess
}

// measure times populate and compute of one strategy over config.Runs
// fresh runs, and prints the results of the last run.
func measure(ctx context.Context, engine *pararray.Engine, s strategy, config AppConfig, out io.Writer) int {
	headColor.Fprintf(out, "\n--- %s ---\n", s.name)
	elapsed := make([]float64, 0, config.Runs)
	for i := 0; i < config.Runs; i++ {
		if err := engine.Create(config.Size); err != nil {
			return handleError(err, out)
		}
		start := time.Now()
		if err := s.populate(ctx, engine); err != nil {
			return handleError(err, out)
		}
		if err := s.compute(ctx, engine); err != nil {
			return handleError(err, out)
		}
		elapsed = append(elapsed, time.Since(start).Seconds())
	}
	mean, err := engine.Mean()
	if err != nil && !errors.Is(err, pararray.ErrDivideByZero) {
		return handleError(err, out)
	}
	fmt.Fprintf(out, "Min: %d | Max: %d | ", engine.Min(), engine.Max())
	if err != nil {
		fmt.Fprintf(out, "Mean: n/a (empty array)\n")
	} else {
		fmt.Fprintf(out, "Mean: %.4f\n", mean)
	}
	fmt.Fprintf(out, "Elapsed: %s\n", formatElapsed(elapsed))
	return ExitSuccess
}

func formatElapsed(samples []float64) string {
	if len(samples) == 1 {
		return seconds(samples[0]).String()
	}
	mean, std := stat.MeanStdDev(samples, nil)
	return fmt.Sprintf("%s ± %s over %d runs", seconds(mean), seconds(std), len(samples))
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Round(time.Microsecond)
}

// crossCheck reduces the content of the current run with every strategy
// and verifies that all of them agree.
func crossCheck(ctx context.Context, engine *pararray.Engine, registry map[string]strategy, out io.Writer) int {
	headColor.Fprintf(out, "\n--- Cross-check ---\n")
	var first pararray.Stats
	for i, key := range strategyOrder {
		if err := registry[key].compute(ctx, engine); err != nil {
			return handleError(err, out)
		}
		s, _ := engine.Stats()
		if i == 0 {
			first = s
			continue
		}
		if s != first {
			failColor.Fprintf(out, "Mismatch: %s computed %v, %s computed %v\n",
				registry[key].name, s, registry[strategyOrder[0]].name, first)
			return ExitErrorMismatch
		}
	}
	okColor.Fprintf(out, "All strategies agree: %v\n", first)
	return ExitSuccess
}

func handleError(err error, out io.Writer) int {
	switch {
	case errors.Is(err, pararray.ErrInterrupted):
		failColor.Fprintf(out, "Interrupted: %v\n", err)
		return ExitErrorCanceled
	case errors.Is(err, pararray.ErrInvalidSize), errors.Is(err, pararray.ErrInvalidWorkerCount):
		failColor.Fprintf(out, "Error: %v\n", err)
		return ExitErrorInput
	default:
		failColor.Fprintf(out, "Error: %v\n", err)
		return ExitErrorGeneric
	}
}
