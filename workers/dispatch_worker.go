package workers

import (
	"context"
	"sync"
	"time"

	"resqlink/interfaces"
	"resqlink/models"

	"github.com/sirupsen/logrus"
)

const deliverTimeout = 30 * time.Second

// DispatchWorker drains notification events onto the delivery pipeline in
// the background. Enqueue never blocks: when the buffer is full the event is
// dropped, since notification delivery is best effort and must not stall
// emergency mutations.
type DispatchWorker struct {
	deliverer interfaces.NotificationDeliverer
	events    chan models.NotificationEvent
	workers   int

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewDispatchWorker(deliverer interfaces.NotificationDeliverer, queueSize, workers int) *DispatchWorker {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 4
	}

	return &DispatchWorker{
		deliverer: deliverer,
		events:    make(chan models.NotificationEvent, queueSize),
		workers:   workers,
		done:      make(chan struct{}),
	}
}

func (dw *DispatchWorker) Start() {
	for i := 0; i < dw.workers; i++ {
		dw.wg.Add(1)
		go dw.run()
	}
	logrus.Infof("Dispatch worker started with %d workers, queue size %d",
		dw.workers, cap(dw.events))
}

// Enqueue offers an event to the queue and reports whether it was accepted.
func (dw *DispatchWorker) Enqueue(event models.NotificationEvent) bool {
	select {
	case <-dw.done:
		return false
	default:
	}

	select {
	case dw.events <- event:
		return true
	default:
		return false
	}
}

// Stop signals shutdown and waits for the workers to drain the buffer and
// finish in-flight deliveries. The events channel is never closed, so an
// Enqueue racing Stop cannot panic; it starts returning false once done is
// closed.
func (dw *DispatchWorker) Stop() {
	dw.stopOnce.Do(func() {
		close(dw.done)
	})
	dw.wg.Wait()
	logrus.Info("Dispatch worker stopped")
}

func (dw *DispatchWorker) run() {
	defer dw.wg.Done()

	for {
		select {
		case <-dw.done:
			dw.drain()
			return
		case event := <-dw.events:
			dw.deliver(event)
		}
	}
}

func (dw *DispatchWorker) drain() {
	for {
		select {
		case event := <-dw.events:
			dw.deliver(event)
		default:
			return
		}
	}
}

func (dw *DispatchWorker) deliver(event models.NotificationEvent) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Panic delivering %s event: %v", event.Kind, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	dw.deliverer.Deliver(ctx, event)
}
