package benchmark

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock advances by the next scripted duration on every second reading,
// so each start/end pair around a workload measures one step.
type stepClock struct {
	now   time.Time
	steps []time.Duration
	reads int
}

func (c *stepClock) Now() time.Time {
	if c.reads%2 == 1 {
		c.now = c.now.Add(c.steps[(c.reads/2)%len(c.steps)])
	}
	c.reads++
	return c.now
}

type recordingResolver struct {
	calls []string
	fail  map[string]error
}

func (r *recordingResolver) Resolve(id ID) (Workload, error) {
	return WorkloadFunc(func(ctx context.Context) error {
		r.calls = append(r.calls, id.String())
		return r.fail[id.String()]
	}), nil
}

type recordingObserver struct {
	workloads int
	passes    []int
}

func (o *recordingObserver) ObserveWorkload(id ID, pass int, d time.Duration) { o.workloads++ }
func (o *recordingObserver) ObservePass(pass int, total time.Duration)        { o.passes = append(o.passes, pass) }

func newTestRunner(resolver Resolver, steps ...time.Duration) (*Runner, *bytes.Buffer) {
	var out bytes.Buffer
	r := NewRunner(resolver, &out)
	r.Clock = &stepClock{now: time.Unix(0, 0), steps: steps}
	return r, &out
}

func TestRunner_RunsEveryWorkloadRepeatPlusOne(t *testing.T) {
	ids, err := ParseIDs([]string{"a-x", "b-y", "a-z"})
	require.NoError(t, err)
	results := Build(ids)

	resolver := &recordingResolver{}
	r, _ := newTestRunner(resolver, time.Millisecond)
	require.NoError(t, r.Run(context.Background(), results, 4))

	assert.Len(t, resolver.calls, 3*5)
	// Category first, then tests in order.
	assert.Equal(t, []string{"a-x", "a-z", "b-y"}, resolver.calls[:3])

	for _, c := range results.Categories() {
		assert.Len(t, c.Times, 5)
		for _, test := range c.Tests() {
			assert.Len(t, test.Times, 5)
		}
	}
	assert.Len(t, results.Times, 5)
}

func TestRunner_Aggregates(t *testing.T) {
	results := Build([]ID{{"a", "x"}, {"a", "y"}, {"b", "z"}})
	r, _ := newTestRunner(&recordingResolver{}, 1*time.Millisecond, 2*time.Millisecond, 4*time.Millisecond)
	require.NoError(t, r.Run(context.Background(), results, 1))

	a, _ := results.Category("a")
	b, _ := results.Category("b")
	x, _ := a.Test("x")
	assert.Equal(t, []time.Duration{time.Millisecond, time.Millisecond}, x.Times)
	assert.Equal(t, []time.Duration{3 * time.Millisecond, 3 * time.Millisecond}, a.Times)
	assert.Equal(t, []time.Duration{4 * time.Millisecond, 4 * time.Millisecond}, b.Times)
	assert.Equal(t, []time.Duration{7 * time.Millisecond, 7 * time.Millisecond}, results.Times)
}

func TestRunner_ProgressLines(t *testing.T) {
	results := Build([]ID{{"3d", "cube"}})
	r, out := newTestRunner(&recordingResolver{}, time.Millisecond)
	require.NoError(t, r.Run(context.Background(), results, 10))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "iteration -1 : loading 3d-cube.js", lines[0])
	assert.Equal(t, "iteration  0 : loading 3d-cube.js", lines[1])
	assert.Equal(t, "iteration  9 : loading 3d-cube.js", lines[10])
}

func TestRunner_TruncatesToResolution(t *testing.T) {
	results := Build([]ID{{"a", "x"}})
	r, _ := newTestRunner(&recordingResolver{}, 1700*time.Microsecond)
	require.NoError(t, r.Run(context.Background(), results, 1))

	a, _ := results.Category("a")
	x, _ := a.Test("x")
	assert.Equal(t, []time.Duration{time.Millisecond, time.Millisecond}, x.Times)

	results = Build([]ID{{"a", "x"}})
	r, _ = newTestRunner(&recordingResolver{}, 1700*time.Microsecond)
	r.Resolution = 0
	require.NoError(t, r.Run(context.Background(), results, 0))
	a, _ = results.Category("a")
	x, _ = a.Test("x")
	assert.Equal(t, []time.Duration{1700 * time.Microsecond}, x.Times)
}

func TestRunner_FailureAborts(t *testing.T) {
	boom := errors.New("boom")
	results := Build([]ID{{"a", "x"}, {"a", "y"}, {"b", "z"}})
	resolver := &recordingResolver{fail: map[string]error{"a-y": boom}}
	r, out := newTestRunner(resolver, time.Millisecond)

	err := r.Run(context.Background(), results, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var werr *WorkloadError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, ID{"a", "y"}, werr.ID)
	assert.Equal(t, -1, werr.Pass)

	// Nothing after the failing workload ran.
	assert.Equal(t, []string{"a-x", "a-y"}, resolver.calls)
	assert.Empty(t, results.Times)
	assert.True(t, strings.HasSuffix(out.String(), "iteration -1 : loading a-y.js\n"))
}

func TestRunner_ResolveFailureAborts(t *testing.T) {
	results := Build([]ID{{"a", "x"}, {"a", "y"}})
	calls := 0
	resolver := ResolverFunc(func(id ID) (Workload, error) {
		calls++
		return nil, ErrWorkloadNotFound
	})
	r, _ := newTestRunner(resolver, time.Millisecond)

	err := r.Run(context.Background(), results, 2)
	assert.ErrorIs(t, err, ErrWorkloadNotFound)
	assert.Equal(t, 1, calls)
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resolver := &recordingResolver{}
	r, out := newTestRunner(resolver, time.Millisecond)
	err := r.Run(ctx, Build([]ID{{"a", "x"}}), 2)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, resolver.calls)
	assert.Empty(t, out.String())
}

func TestRunner_CancelledMidPass(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls []string
	resolver := ResolverFunc(func(id ID) (Workload, error) {
		return WorkloadFunc(func(ctx context.Context) error {
			calls = append(calls, id.String())
			cancel()
			return nil
		}), nil
	})
	r, out := newTestRunner(resolver, time.Millisecond)

	var werr *WorkloadError
	err := r.Run(ctx, Build([]ID{{"a", "x"}, {"b", "y"}}), 2)
	require.ErrorAs(t, err, &werr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "b-y", werr.ID.String())
	assert.Equal(t, []string{"a-x"}, calls)
	// No progress line for a workload that never started.
	assert.Equal(t, "iteration -1 : loading a-x.js\n", out.String())
}

func TestRunner_Observer(t *testing.T) {
	obs := &recordingObserver{}
	r, _ := newTestRunner(&recordingResolver{}, time.Millisecond)
	r.Observer = obs
	require.NoError(t, r.Run(context.Background(), Build([]ID{{"a", "x"}, {"b", "y"}}), 2))

	assert.Equal(t, 6, obs.workloads)
	assert.Equal(t, []int{-1, 0, 1}, obs.passes)
}
