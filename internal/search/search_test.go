package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/parsearch/internal/errors"
)

// countingSequence records how many times each index is read.
type countingSequence struct {
	values []int
	reads  []atomic.Int32
}

func newCountingSequence(values []int) *countingSequence {
	return &countingSequence{values: values, reads: make([]atomic.Int32, len(values))}
}

func (c *countingSequence) Len() int { return len(c.values) }

func (c *countingSequence) At(i int) int {
	c.reads[i].Add(1)
	return c.values[i]
}

func TestSearchScenarios(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		target  int
		values  []int
		workers int
		want    bool
	}{
		{"target in second segment", 7, []int{1, 2, 3, 7, 5, 6}, 2, true},
		{"target absent", 4, []int{1, 2, 3, 5, 6, 8}, 3, false},
		{"single element match", 9, []int{9}, 1, true},
		{"duplicates across segments", 2, []int{2, 2, 2, 2}, 4, true},
		{"target at last index", 8, []int{1, 2, 3, 4, 5, 6, 7, 8}, 4, true},
		{"target at first index", 1, []int{1, 2, 3, 4, 5, 6, 7, 8}, 2, true},
		{"empty sequence", 1, []int{}, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			found, err := Search[int](context.Background(), tt.target, Slice[int](tt.values), tt.workers)
			require.NoError(t, err)
			assert.Equal(t, tt.want, found)
		})
	}
}

func TestSearchRejectsNonDividingWorkerCount(t *testing.T) {
	t.Parallel()
	seq := newCountingSequence([]int{1, 2, 3, 4, 5})

	found, err := Search[int](context.Background(), 3, seq, 2)

	assert.False(t, found)
	var cfgErr apperrors.ConfigError
	require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
	for i := range seq.reads {
		assert.Zero(t, seq.reads[i].Load(), "no element may be read when configuration is rejected")
	}
}

func TestSearchRejectsNonPositiveWorkers(t *testing.T) {
	t.Parallel()
	for _, k := range []int{0, -1} {
		_, err := Search[int](context.Background(), 1, Slice[int]{1, 2}, k)
		assert.True(t, apperrors.IsConfigError(err), "workers=%d: got %v", k, err)
	}
}

func TestRunRejectsNilInputs(t *testing.T) {
	t.Parallel()
	_, err := Run[int](context.Background(), New(), 1, nil, 1, Equal[int])
	assert.True(t, apperrors.IsConfigError(err))

	_, err = Run[int](context.Background(), New(), 1, Slice[int]{1}, 1, nil)
	assert.True(t, apperrors.IsConfigError(err))
}

func TestSearchIsIdempotent(t *testing.T) {
	t.Parallel()
	values := Slice[int]{4, 8, 15, 16, 23, 42}
	for i := 0; i < 50; i++ {
		found, err := Search[int](context.Background(), 23, values, 3)
		require.NoError(t, err)
		require.True(t, found)

		found, err = Search[int](context.Background(), 99, values, 6)
		require.NoError(t, err)
		require.False(t, found)
	}
}

func TestSearchDoesNotModifySequence(t *testing.T) {
	t.Parallel()
	values := []int{5, 4, 3, 2, 1, 0}
	snapshot := append([]int(nil), values...)
	_, err := Search[int](context.Background(), 2, Slice[int](values), 3)
	require.NoError(t, err)
	assert.Equal(t, snapshot, values)
}

func TestRunReadsEveryIndexOnceWhenAbsent(t *testing.T) {
	t.Parallel()
	values := make([]int, 240)
	for i := range values {
		values[i] = i
	}

	for _, k := range Divisors(len(values), 24) {
		seq := newCountingSequence(values)
		report, err := Run[int](context.Background(), New(), -1, seq, k, Equal[int])
		require.NoError(t, err)
		require.False(t, report.Found)
		assert.Equal(t, len(values), report.Scanned())

		for i := range seq.reads {
			require.Equal(t, int32(1), seq.reads[i].Load(), "k=%d index %d", k, i)
		}
	}
}

func TestRunReportsWinner(t *testing.T) {
	t.Parallel()
	values := Slice[int]{0, 0, 0, 0, 0, 7, 0, 0, 0}

	report, err := Run(context.Background(), New(), 7, values, 3, Equal[int])

	require.NoError(t, err)
	assert.True(t, report.Found)
	assert.Equal(t, 1, report.Winner)
	assert.Equal(t, 9, report.Length)
	assert.Equal(t, 3, report.Workers)
	require.Len(t, report.Segments, 3)
	assert.Equal(t, OutcomeMatched, report.Segments[1].Outcome)
	for _, s := range report.Segments {
		assert.LessOrEqual(t, s.Scanned, s.Segment.Len())
	}
}

func TestRunSingleWorkerStopsAtMatch(t *testing.T) {
	t.Parallel()
	report, err := Run(context.Background(), New(), 3, Slice[int]{1, 2, 3, 4, 5, 6}, 1, Equal[int])
	require.NoError(t, err)
	assert.True(t, report.Found)
	assert.Equal(t, 3, report.Scanned())
	assert.Equal(t, OutcomeMatched, report.Segments[0].Outcome)
}

func TestSearchFuncCustomEquality(t *testing.T) {
	t.Parallel()
	type point struct{ x, y int }
	seq := Slice[point]{{1, 2}, {3, 4}, {5, 6}, {7, 8}}
	sameX := func(a, b point) bool { return a.x == b.x }

	found, err := SearchFunc[point](context.Background(), point{x: 5, y: 0}, seq, 2, sameX)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = SearchFunc[point](context.Background(), point{x: 2}, seq, 4, sameX)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRunPropagatesWorkerFault(t *testing.T) {
	t.Parallel()
	values := Slice[int]{1, 2, 3, 4, 5, 6}
	boom := errors.New("comparison failed")
	equal := func(e, target int) bool {
		if e == 5 {
			panic(boom)
		}
		return e == target
	}

	report, err := Run(context.Background(), New(), 100, values, 3, equal)

	var fault apperrors.WorkerFault
	require.True(t, errors.As(err, &fault), "expected WorkerFault, got %v", err)
	assert.Equal(t, 2, fault.Segment)
	assert.Equal(t, 4, fault.Index)
	assert.ErrorIs(t, err, boom)
	assert.False(t, report.Found)
	assert.Equal(t, OutcomeFaulted, report.Segments[2].Outcome)
	assert.Equal(t, OutcomeExhausted, report.Segments[0].Outcome)
}

func TestRunFaultFromNonErrorPanic(t *testing.T) {
	t.Parallel()
	equal := func(e, target int) bool { panic("bad element") }

	_, err := Run(context.Background(), New(), 1, Slice[int]{1, 2}, 2, equal)

	var fault apperrors.WorkerFault
	require.True(t, errors.As(err, &fault))
	assert.Contains(t, err.Error(), "bad element")
}

func TestRunWithCanceledContextStartsNoWorker(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	seq := newCountingSequence([]int{1, 2, 3, 4})

	_, err := Run[int](ctx, New(), 1, seq, 2, Equal[int])

	var interrupted apperrors.InterruptedError
	require.True(t, errors.As(err, &interrupted), "expected InterruptedError, got %v", err)
	assert.ErrorIs(t, err, context.Canceled)
	for i := range seq.reads {
		assert.Zero(t, seq.reads[i].Load())
	}
}

func TestRunInterruptedWaitStillJoinsWorkers(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	var entered sync.WaitGroup
	entered.Add(2)
	var finished atomic.Int32

	equal := func(e, target int) bool {
		if e == 0 {
			entered.Done()
			<-release
			finished.Add(1)
		}
		return false
	}

	done := make(chan error, 1)
	go func() {
		_, err := Run(ctx, New(), 9, Slice[int]{0, 1, 0, 1}, 2, equal)
		done <- err
	}()

	entered.Wait()
	cancel()

	select {
	case err := <-done:
		t.Fatalf("Run returned before its workers were joined: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	err := <-done

	var interrupted apperrors.InterruptedError
	require.True(t, errors.As(err, &interrupted), "expected InterruptedError, got %v", err)
	assert.Equal(t, int32(2), finished.Load(), "every worker must have finished before Run returns")
}

func TestRunNotifiesObserver(t *testing.T) {
	t.Parallel()
	var calls []Report
	var errs []error
	obs := ObserverFunc(func(r Report, err error) {
		calls = append(calls, r)
		errs = append(errs, err)
	})
	s := New(WithObserver(obs))

	_, err := Run(context.Background(), s, 3, Slice[int]{1, 2, 3, 4}, 2, Equal[int])
	require.NoError(t, err)
	_, err = Run(context.Background(), s, 3, Slice[int]{1, 2, 3}, 2, Equal[int])
	require.Error(t, err)

	require.Len(t, calls, 2)
	assert.True(t, calls[0].Found)
	assert.NoError(t, errs[0])
	assert.True(t, apperrors.IsConfigError(errs[1]))
}

func TestSearchConcurrentSearches(t *testing.T) {
	t.Parallel()
	const size = 4096
	values := make(Slice[int], size)
	for i := range values {
		values[i] = i
	}
	s := New()

	var wg sync.WaitGroup
	failures := make(chan string, 64)
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			workers := []int{1, 2, 8, 64, 256}[g%5]
			target := size - 1
			if g%2 == 1 {
				target = size + g
			}
			report, err := Run(context.Background(), s, target, values, workers, Equal[int])
			if err != nil {
				failures <- err.Error()
				return
			}
			if report.Found != (target < size) {
				failures <- "wrong result"
			}
		}()
	}
	wg.Wait()
	close(failures)
	for f := range failures {
		t.Error(f)
	}
}

func TestSearchManyWorkersLastIndex(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}
	t.Parallel()
	const size = 1 << 16
	values := make(Slice[int], size)
	values[size-1] = 1

	for i := 0; i < 20; i++ {
		report, err := Run(context.Background(), New(), 1, values, 1024, Equal[int])
		require.NoError(t, err)
		require.True(t, report.Found)
		require.Equal(t, 1023, report.Winner)
	}
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "exhausted", OutcomeExhausted.String())
	assert.Equal(t, "matched", OutcomeMatched.String())
	assert.Equal(t, "early-exit", OutcomeEarlyExit.String())
	assert.Equal(t, "faulted", OutcomeFaulted.String())
	assert.Equal(t, "Outcome(9)", Outcome(9).String())
}
