package gateway

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/metrics"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
)

const (
	defaultBatchSize     = 100
	defaultFlushInterval = 5 * time.Second
)

// UsageSink persists batches of usage events.
type UsageSink interface {
	CreateUsageEvents(ctx context.Context, events []models.UsageEvent) error
}

// UsageRecorder buffers usage events and writes them in batches off the
// request path. Events are dropped when the buffer is full.
type UsageRecorder struct {
	sink          UsageSink
	events        chan models.UsageEvent
	batchSize     int
	flushInterval time.Duration

	once sync.Once
	done chan struct{}
	wg   sync.WaitGroup
}

func NewUsageRecorder(sink UsageSink, bufferSize int) *UsageRecorder {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	return &UsageRecorder{
		sink:          sink,
		events:        make(chan models.UsageEvent, bufferSize),
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		done:          make(chan struct{}),
	}
}

// Starts the background batch writer
func (r *UsageRecorder) Start() {
	r.wg.Add(1)
	go r.run()
}

// Queues an event without blocking
func (r *UsageRecorder) Record(event models.UsageEvent) {
	select {
	case r.events <- event:
	default:
		metrics.UsageEventsDropped.Inc()
		log.Printf("[usage] buffer full, dropping %s event for user %s", event.Kind, event.UserID)
	}
}

// Stops the writer after flushing what is buffered
func (r *UsageRecorder) Close() {
	r.once.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
}

func (r *UsageRecorder) run() {
	defer r.wg.Done()

	batch := make([]models.UsageEvent, 0, r.batchSize)
	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-r.events:
			batch = append(batch, event)
			if len(batch) >= r.batchSize {
				batch = r.flush(batch)
			}
		case <-ticker.C:
			batch = r.flush(batch)
		case <-r.done:
			for {
				select {
				case event := <-r.events:
					batch = append(batch, event)
					if len(batch) >= r.batchSize {
						batch = r.flush(batch)
					}
				default:
					r.flush(batch)
					return
				}
			}
		}
	}
}

func (r *UsageRecorder) flush(batch []models.UsageEvent) []models.UsageEvent {
	if len(batch) == 0 {
		return batch
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := r.sink.CreateUsageEvents(ctx, batch); err != nil {
		log.Printf("[usage] failed to insert %d usage events: %v", len(batch), err)
	}

	return make([]models.UsageEvent, 0, r.batchSize)
}
