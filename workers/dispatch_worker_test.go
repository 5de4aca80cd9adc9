package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"resqlink/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDeliverer struct {
	mu     sync.Mutex
	events []models.NotificationEvent
	block  chan struct{}
}

func (r *recordingDeliverer) Deliver(ctx context.Context, event models.NotificationEvent) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingDeliverer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type panickingDeliverer struct {
	delivered sync.WaitGroup
}

func (p *panickingDeliverer) Deliver(ctx context.Context, event models.NotificationEvent) {
	defer p.delivered.Done()
	panic("boom")
}

func TestDispatchWorker_DeliversEnqueuedEvents(t *testing.T) {
	deliverer := &recordingDeliverer{}
	worker := NewDispatchWorker(deliverer, 16, 2)
	worker.Start()

	for i := 0; i < 5; i++ {
		require.True(t, worker.Enqueue(models.NotificationEvent{Kind: models.NotificationNewEmergency}))
	}

	worker.Stop()
	assert.Equal(t, 5, deliverer.count())
}

func TestDispatchWorker_EnqueueNeverBlocksWhenFull(t *testing.T) {
	block := make(chan struct{})
	deliverer := &recordingDeliverer{block: block}
	worker := NewDispatchWorker(deliverer, 1, 1)
	worker.Start()

	// First event occupies the single worker, second fills the buffer.
	worker.Enqueue(models.NotificationEvent{Kind: "a"})
	time.Sleep(20 * time.Millisecond)
	worker.Enqueue(models.NotificationEvent{Kind: "b"})

	done := make(chan bool, 1)
	go func() {
		done <- worker.Enqueue(models.NotificationEvent{Kind: "c"})
	}()

	select {
	case accepted := <-done:
		assert.False(t, accepted, "full queue drops the event")
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(block)
	worker.Stop()
}

func TestDispatchWorker_RejectsAfterStop(t *testing.T) {
	worker := NewDispatchWorker(&recordingDeliverer{}, 16, 1)
	worker.Start()
	worker.Stop()

	assert.False(t, worker.Enqueue(models.NotificationEvent{Kind: "late"}))
}

func TestDispatchWorker_SurvivesPanickingDelivery(t *testing.T) {
	deliverer := &panickingDeliverer{}
	deliverer.delivered.Add(2)

	worker := NewDispatchWorker(deliverer, 16, 1)
	worker.Start()

	require.True(t, worker.Enqueue(models.NotificationEvent{Kind: "a"}))
	require.True(t, worker.Enqueue(models.NotificationEvent{Kind: "b"}))

	waitTimeout(t, &deliverer.delivered, time.Second)
	worker.Stop()
}

func waitTimeout(t *testing.T, wg *sync.WaitGroup, timeout time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("timed out waiting for deliveries")
	}
}

func TestDispatchWorker_EnqueueConcurrentWithStop(t *testing.T) {
	worker := NewDispatchWorker(&recordingDeliverer{}, 4, 2)
	worker.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				worker.Enqueue(models.NotificationEvent{Kind: models.NotificationStatusUpdate})
			}
		}()
	}

	worker.Stop()
	wg.Wait()

	assert.False(t, worker.Enqueue(models.NotificationEvent{Kind: "late"}))
}
