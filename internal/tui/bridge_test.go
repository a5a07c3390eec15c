package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/fibfill/internal/errors"
	"github.com/agbru/fibfill/internal/orchestration"
	"github.com/agbru/fibfill/internal/plan"
	"github.com/agbru/fibfill/internal/progress"
)

// recorder collects the messages sent through a mailbox.
type recorder struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recorder) Send(msg tea.Msg) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

func (r *recorder) messages() []tea.Msg {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tea.Msg(nil), r.msgs...)
}

func newRecordingMailbox() (*mailbox, *recorder) {
	rec := &recorder{}
	box := &mailbox{}
	box.attach(rec)
	return box, rec
}

func dests(n int) []plan.Destination {
	ds := make([]plan.Destination, n)
	for i := range ds {
		ds[i] = plan.Destination{Index: i, Name: plan.DestinationName("fib", i, n), Budget: 100}
	}
	return ds
}

func TestTUIProgressReporter_ForwardsUpdates(t *testing.T) {
	t.Parallel()
	box, rec := newRecordingMailbox()
	reporter := &TUIProgressReporter{box: box}

	ch := make(chan progress.ProgressUpdate, 4)
	ch <- progress.ProgressUpdate{DestinationIndex: 0, Value: 0.5, BytesWritten: 50}
	ch <- progress.ProgressUpdate{DestinationIndex: 1, Value: 1, BytesWritten: 100}
	close(ch)

	var wg sync.WaitGroup
	wg.Add(1)
	reporter.DisplayProgress(&wg, ch, dests(2), nil)
	wg.Wait()

	msgs := rec.messages()
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	last, ok := msgs[1].(ProgressMsg)
	if !ok {
		t.Fatalf("second message is %T, want ProgressMsg", msgs[1])
	}
	if last.DestinationIndex != 1 || last.BytesWritten != 100 || last.TotalBytes != 150 {
		t.Errorf("unexpected message: %+v", last)
	}
	if last.AverageProgress != 0.75 {
		t.Errorf("AverageProgress = %v, want 0.75", last.AverageProgress)
	}
	if _, ok := msgs[2].(ProgressDoneMsg); !ok {
		t.Errorf("last message is %T, want ProgressDoneMsg", msgs[2])
	}
}

func TestTUIProgressReporter_NoDestinations(t *testing.T) {
	t.Parallel()
	box, rec := newRecordingMailbox()
	reporter := &TUIProgressReporter{box: box}

	ch := make(chan progress.ProgressUpdate, 1)
	ch <- progress.ProgressUpdate{Value: 0.5}
	close(ch)

	var wg sync.WaitGroup
	wg.Add(1)
	reporter.DisplayProgress(&wg, ch, nil, nil)
	wg.Wait()
	if n := len(rec.messages()); n != 0 {
		t.Errorf("expected no messages, got %d", n)
	}
}

func TestProgramRef_Send_NilProgram(t *testing.T) {
	t.Parallel()
	box := &mailbox{}
	box.Send(ProgressDoneMsg{}) // must not panic
}

func TestProgramRef_Send_Concurrent(t *testing.T) {
	t.Parallel()
	box, rec := newRecordingMailbox()
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			box.Send(TickMsg(time.Now()))
		}()
	}
	wg.Wait()
	if n := len(rec.messages()); n != 10 {
		t.Errorf("got %d messages, want 10", n)
	}
}

func TestTUIResultPresenter_PresentReport(t *testing.T) {
	t.Parallel()
	box, rec := newRecordingMailbox()
	presenter := &TUIResultPresenter{box: box}

	presenter.PresentReport(orchestration.Report{BytesWritten: 42}, true, nil)
	msgs := rec.messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if m, ok := msgs[0].(ReportMsg); !ok || m.Report.BytesWritten != 42 {
		t.Errorf("unexpected message %#v", msgs[0])
	}
}

func TestTUIResultPresenter_HandleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Timeout", context.DeadlineExceeded, apperrors.ExitErrorTimeout},
		{"Canceled", context.Canceled, apperrors.ExitErrorCanceled},
		{"Generic", errors.New("boom"), apperrors.ExitErrorGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			box, rec := newRecordingMailbox()
			presenter := &TUIResultPresenter{box: box}
			if code := presenter.HandleError(tt.err, time.Second, nil); code != tt.want {
				t.Errorf("code = %d, want %d", code, tt.want)
			}
			msg, ok := rec.messages()[0].(ErrorMsg)
			if !ok || msg.Duration != time.Second || !errors.Is(msg.Err, tt.err) {
				t.Errorf("unexpected message %#v", rec.messages()[0])
			}
		})
	}
}
