package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestActionBlock_SequentialOrder(t *testing.T) {
	const numMessages = 50

	var mu sync.Mutex
	var seen []int
	action := NewActionBlock(func(input interface{}) error {
		// Earlier messages sleep longer; order must still hold.
		time.Sleep(time.Duration(numMessages-input.(int)) * 10 * time.Microsecond)
		mu.Lock()
		seen = append(seen, input.(int))
		mu.Unlock()
		return nil
	})

	for i := 0; i < numMessages; i++ {
		if err := action.Send(context.Background(), i); err != nil {
			t.Fatalf("Send(%d) failed: %v", i, err)
		}
	}
	action.Complete()

	if err := action.Wait(); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if len(seen) != numMessages {
		t.Fatalf("Expected %d messages, got %d", numMessages, len(seen))
	}
	for i, v := range seen {
		if v != i {
			t.Fatalf("Message %d processed at position %d", v, i)
		}
	}
}

func TestActionBlock_FaultsAreRecorded(t *testing.T) {
	boom := errors.New("boom")
	action := NewActionBlock(func(input interface{}) error {
		switch input.(int) {
		case 1:
			return boom
		case 2:
			panic("worse")
		}
		return nil
	}, WithName("faulty"))

	for i := 0; i < 4; i++ {
		if err := action.Send(context.Background(), i); err != nil {
			t.Fatalf("Send(%d) failed: %v", i, err)
		}
	}
	action.Complete()

	if err := action.Wait(); !errors.Is(err, boom) {
		t.Fatalf("Expected first fault to be kept, got %v", err)
	}
}

func TestActionBlock_PanicDoesNotStopWorker(t *testing.T) {
	var handled int32
	action := NewActionBlock(func(input interface{}) error {
		if input.(int) == 0 {
			panic("boom")
		}
		atomic.AddInt32(&handled, 1)
		return nil
	}, WithName("panicky"))

	for i := 0; i < 3; i++ {
		if err := action.Send(context.Background(), i); err != nil {
			t.Fatalf("Send(%d) failed: %v", i, err)
		}
	}
	action.Complete()

	err := action.Wait()
	if err == nil || err.Error() != "pipeline panicky: panic: boom" {
		t.Fatalf("Expected recorded panic, got %v", err)
	}
	if got := atomic.LoadInt32(&handled); got != 2 {
		t.Errorf("Expected 2 messages handled after the panic, got %d", got)
	}
}

func TestActionBlock_SendAfterComplete(t *testing.T) {
	action := NewActionBlock(func(interface{}) error { return nil })
	action.Complete()
	action.Complete()

	if err := action.Send(context.Background(), 1); !errors.Is(err, ErrBlockCompleted) {
		t.Fatalf("Expected ErrBlockCompleted, got %v", err)
	}
}

func TestActionBlock_SendHonorsContext(t *testing.T) {
	release := make(chan struct{})
	action := NewActionBlock(func(interface{}) error {
		<-release
		return nil
	})
	defer func() {
		close(release)
		action.Complete()
		_ = action.Wait()
	}()

	if err := action.Send(context.Background(), 1); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := action.Send(ctx, 2); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline exceeded, got %v", err)
	}
}
