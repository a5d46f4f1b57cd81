package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Clock reports the current time. Readings from time.Now carry a monotonic
// component, so differences are immune to wall-clock adjustments.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Observer is notified as measurements are taken.
type Observer interface {
	ObserveWorkload(id ID, pass int, d time.Duration)
	ObservePass(pass int, total time.Duration)
}

// Runner executes every workload of a result tree repeatedly.
type Runner struct {
	Resolver Resolver
	// Progress receives one line per workload invocation.
	Progress io.Writer
	// Extension is appended to IDs in progress lines.
	Extension string
	// Resolution truncates every measurement. Zero keeps the raw reading.
	Resolution time.Duration
	Clock      Clock
	Observer   Observer
	Logger     *slog.Logger
}

// NewRunner returns a Runner with millisecond resolution, the system clock and
// progress written to out.
func NewRunner(resolver Resolver, out io.Writer) *Runner {
	return &Runner{
		Resolver:   resolver,
		Progress:   out,
		Extension:  ".js",
		Resolution: time.Millisecond,
		Clock:      systemClock{},
		Logger:     slog.Default(),
	}
}

// Run performs repeatCount+1 passes over results. Pass -1 is the warm-up.
// The first failing workload aborts the run and is returned as a
// *WorkloadError; results are then incomplete and must not be reported.
func (r *Runner) Run(ctx context.Context, results *Results, repeatCount int) error {
	for pass := -1; pass < repeatCount; pass++ {
		var total time.Duration
		for _, category := range results.Categories() {
			var categoryTime time.Duration
			for _, test := range category.Tests() {
				id := ID{Category: category.Name, Name: test.Name}
				d, err := r.runOne(ctx, id, pass)
				if err != nil {
					return &WorkloadError{ID: id, Pass: pass, Err: err}
				}
				test.Times = append(test.Times, d)
				categoryTime += d
				total += d
				if r.Observer != nil {
					r.Observer.ObserveWorkload(id, pass, d)
				}
			}
			category.Times = append(category.Times, categoryTime)
		}
		results.Times = append(results.Times, total)
		if r.Observer != nil {
			r.Observer.ObservePass(pass, total)
		}
		r.logger().Debug("pass complete", "iteration", pass, "total", total)
	}
	return nil
}

func (r *Runner) runOne(ctx context.Context, id ID, pass int) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if r.Progress != nil {
		fmt.Fprintf(r.Progress, "iteration %2d : loading %s\n", pass, id.Script(r.Extension))
	}

	w, err := r.Resolver.Resolve(id)
	if err != nil {
		return 0, err
	}

	clock := r.Clock
	if clock == nil {
		clock = systemClock{}
	}
	start := clock.Now()
	if err := w.Run(ctx); err != nil {
		return 0, err
	}
	d := clock.Now().Sub(start)
	if r.Resolution > 0 {
		d = d.Truncate(r.Resolution)
	}
	r.logger().Debug("workload finished", "iteration", pass, "workload", id.String(), "duration", d)
	return d, nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
