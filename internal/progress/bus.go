// Package progress provides the ingestion pipeline's live broadcast
// channel (Bus) and its durable per-job checkpoint tracker (Tracker),
// reworking the teacher's SQLite-backed internal/progress.Tracker into
// the two cooperating pieces spec.md §4.14 calls for.
package progress

import (
	"sync"
)

// EventKind enumerates the typed progress events subscribers receive.
type EventKind string

const (
	EventPipelineStage   EventKind = "pipeline_stage"
	EventPaperIngested   EventKind = "paper_ingested"
	EventEntityExtracted EventKind = "entity_extracted"
)

// Event is one broadcast progress notification. JobID ties related
// events together; ordering is total within one job's producer but not
// guaranteed across jobs (spec.md §5).
type Event struct {
	Kind    EventKind
	JobID   string
	Stage   string
	Gene    string
	Message string
	Count   int
}

// subscriberBufferSize bounds each subscriber's channel; once full,
// further sends for that subscriber are dropped rather than blocking
// the producer (spec.md §4.14 "never block producers").
const subscriberBufferSize = 256

// Bus is a single-process, multi-producer multi-consumer broadcast
// channel. Publish never blocks: a lagging subscriber drops events
// instead of slowing down ingestion.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
}

// NewBus creates an empty broadcast bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber and returns its event channel
// along with an unsubscribe function. The channel is never closed by
// Publish; callers should stop reading and call unsubscribe when done.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBufferSize)
	b.subscribers[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(c)
		}
	}
	return ch, unsubscribe
}

// Publish broadcasts ev to every current subscriber. A subscriber whose
// buffer is full has the event dropped for it; Publish itself never
// blocks regardless of subscriber behavior.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
			// Subscriber is lagging; drop rather than block the producer.
		}
	}
}

// SubscriberCount reports the current number of live subscribers,
// primarily for tests and diagnostics.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
