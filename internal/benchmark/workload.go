package benchmark

import (
	"context"
	"errors"
	"fmt"
)

// ErrWorkloadNotFound is returned by resolvers when no script exists for an ID.
var ErrWorkloadNotFound = errors.New("workload not found")

// Workload is one unit of benchmark code. Run performs the full computation
// and returns nil on success.
type Workload interface {
	Run(ctx context.Context) error
}

// Resolver locates the workload for an ID.
type Resolver interface {
	Resolve(id ID) (Workload, error)
}

// WorkloadFunc adapts a function to the Workload interface.
type WorkloadFunc func(ctx context.Context) error

// Run calls f(ctx).
func (f WorkloadFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(id ID) (Workload, error)

// Resolve calls f(id).
func (f ResolverFunc) Resolve(id ID) (Workload, error) {
	return f(id)
}

// WorkloadError reports the workload that aborted a run.
type WorkloadError struct {
	ID   ID
	Pass int
	Err  error
}

func (e *WorkloadError) Error() string {
	return fmt.Sprintf("workload %s failed on iteration %d: %v", e.ID, e.Pass, e.Err)
}

func (e *WorkloadError) Unwrap() error {
	return e.Err
}
