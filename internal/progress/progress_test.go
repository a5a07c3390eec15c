package progress

import (
	"bytes"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/agbru/fibfill/internal/logging"
)

// countingObserver tracks the number of Update calls using an atomic counter,
// making it safe for concurrent use.
type countingObserver struct {
	count atomic.Int64
}

func (o *countingObserver) Update(int, float64, int64) {
	o.count.Add(1)
}

// TestFreezeSnapshotImmutability verifies that observers registered after
// Freeze are not notified by the frozen callback.
func TestFreezeSnapshotImmutability(t *testing.T) {
	t.Parallel()
	subject := NewProgressSubject()
	obs1 := &countingObserver{}
	subject.Register(obs1)

	callback := subject.Freeze(0)

	obs2 := &countingObserver{}
	subject.Register(obs2)

	callback(0.5, 10)

	if obs1.count.Load() != 1 {
		t.Errorf("obs1 should have count 1, got %d", obs1.count.Load())
	}
	if obs2.count.Load() != 0 {
		t.Errorf("obs2 should have count 0, got %d", obs2.count.Load())
	}
}

// TestFreezeConcurrentRegister must pass under -race.
func TestFreezeConcurrentRegister(t *testing.T) {
	t.Parallel()
	subject := NewProgressSubject()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			subject.Register(&countingObserver{})
		}()
		go func(i int) {
			defer wg.Done()
			subject.Freeze(i)(0.1, 1)
		}(i)
	}
	wg.Wait()

	if got := subject.ObserverCount(); got != 100 {
		t.Errorf("ObserverCount() = %d, want 100", got)
	}
}

func TestSubjectNotifyAndUnregister(t *testing.T) {
	t.Parallel()
	subject := NewProgressSubject()
	a, b := &countingObserver{}, &countingObserver{}
	subject.Register(a)
	subject.Register(b)
	subject.Register(nil)

	subject.Notify(0, 0.2, 2)
	subject.Unregister(a)
	subject.Notify(0, 0.4, 4)

	if a.count.Load() != 1 || b.count.Load() != 2 {
		t.Errorf("counts = (%d, %d), want (1, 2)", a.count.Load(), b.count.Load())
	}
}

func TestChannelObserver(t *testing.T) {
	t.Parallel()
	ch := make(chan ProgressUpdate, 1)
	obs := NewChannelObserver(ch)

	obs.Update(3, 0.25, 100)
	// Channel full: dropped rather than blocking.
	obs.Update(3, 0.5, 200)

	got := <-ch
	want := ProgressUpdate{DestinationIndex: 3, Value: 0.25, BytesWritten: 100}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	select {
	case extra := <-ch:
		t.Errorf("unexpected update %+v", extra)
	default:
	}

	NewChannelObserver(nil).Update(0, 1, 1)
}

func TestLoggingObserver(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewStdLoggerAdapter(log.New(&buf, "", 0))
	obs := NewLoggingObserver(logger, 0.5)

	for _, v := range []float64{0, 0.1, 0.2, 0.6, 0.7, 1} {
		obs.Update(1, v, int64(v*100))
	}

	lines := strings.Count(buf.String(), "progress")
	if lines != 3 {
		t.Errorf("logged %d progress lines, want 3:\n%s", lines, buf.String())
	}
}

func TestThrottle(t *testing.T) {
	t.Parallel()
	var got []float64
	cb := Throttle(func(v float64, _ int64) { got = append(got, v) }, 0.25)

	for _, v := range []float64{0, 0.1, 0.2, 0.3, 0.5, 0.6, 0.99, 1, 1} {
		cb(v, 0)
	}

	want := []float64{0, 0.3, 0.6, 0.99, 1}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	if Throttle(nil, 0.1) != nil {
		t.Error("Throttle(nil) should be nil")
	}
}

func TestFraction(t *testing.T) {
	t.Parallel()
	tests := []struct {
		written, budget int64
		want            float64
	}{
		{0, 100, 0},
		{50, 100, 0.5},
		{100, 100, 1},
		{150, 100, 1},
		{-1, 100, 0},
		{0, 0, 1},
	}
	for _, tc := range tests {
		if got := Fraction(tc.written, tc.budget); got != tc.want {
			t.Errorf("Fraction(%d, %d) = %v, want %v", tc.written, tc.budget, got, tc.want)
		}
	}
}

func TestNoOpObserver(t *testing.T) {
	t.Parallel()
	subject := NewProgressSubject()
	subject.Register(NewNoOpObserver())
	subject.Notify(0, 1, 1)
}
