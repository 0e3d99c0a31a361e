package stream

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"raffle/internal/raffle"
)

// Envelope is the wire frame sent to websocket subscribers.
type Envelope struct {
	Type string       `json:"type"`
	Data raffle.Event `json:"data"`
	Ts   time.Time    `json:"ts"`
}

// Hub fans committed ledger events out to websocket subscribers. It
// implements raffle.EventSink; Publish never blocks, slow subscribers lose
// frames.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uint64]chan []byte
	nextSub uint64
	buf     int

	dropped uint64
	logger  *zap.Logger
}

func NewHub(bufferSize int, logger *zap.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Hub{
		subs:   map[uint64]chan []byte{},
		buf:    bufferSize,
		logger: logger,
	}
}

// Publish marshals the event once and hands it to every subscriber.
func (h *Hub) Publish(ev raffle.Event) {
	if h == nil || ev == nil {
		return
	}
	frame, err := json.Marshal(Envelope{
		Type: ev.EventType(),
		Data: ev,
		Ts:   time.Now().UTC(),
	})
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("stream marshal failed", zap.String("type", ev.EventType()), zap.Error(err))
		}
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- frame:
		default:
			atomic.AddUint64(&h.dropped, 1)
		}
	}
}

// Subscribe registers a new subscriber and returns its frame channel plus a
// cancel func. Cancel closes the channel and is idempotent.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, h.buf)
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			// The write lock excludes publishers, so closing here is safe.
			h.mu.Lock()
			delete(h.subs, id)
			close(ch)
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Subscribers reports the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped reports how many frames were discarded on slow subscribers.
func (h *Hub) Dropped() uint64 {
	return atomic.LoadUint64(&h.dropped)
}
