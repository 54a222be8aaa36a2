package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/anamboary/anamboary/internal/logging"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []Message
	fail     bool
}

func (n *recordingNotifier) Send(_ context.Context, message Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("delivery failed")
	}
	n.messages = append(n.messages, message)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func TestDispatcherDeliversQueuedMessages(t *testing.T) {
	recorder := &recordingNotifier{}
	d := NewDispatcher(recorder, logging.Discard())

	for i := 0; i < 5; i++ {
		d.Enqueue(Message{Kind: KindTransaction, Destination: "0341234567", Body: "deposit confirmed"})
	}
	d.Close()

	if recorder.count() != 5 {
		t.Fatalf("expected 5 delivered messages, got %d", recorder.count())
	}
}

func TestDispatcherSwallowsDeliveryFailures(t *testing.T) {
	recorder := &recordingNotifier{fail: true}
	d := NewDispatcher(recorder, logging.Discard())

	d.Enqueue(Message{Kind: KindWelcome, Destination: "0341234567"})
	d.Close() // must not panic or block on failed deliveries
}
