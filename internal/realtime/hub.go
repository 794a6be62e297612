// Package realtime is the in-memory live-connection registry: channels keyed
// by user or project identifiers, with best-effort fanout to subscribers.
package realtime

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/rs/zerolog"

	"github.com/crewboard/crewboard-api/internal/api/metrics"
)

const eventBuffer = 16

// Event is a single message delivered to a channel subscriber.
type Event struct {
	Channel string `json:"channel"`
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

// Subscription is one live client attached to a set of channels. Events
// arrive on Events(); Close detaches the subscription.
type Subscription struct {
	id       string
	channels []string
	events   chan Event

	mu     sync.Mutex
	closed bool
}

func newSubscription(channels []string) *Subscription {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return &Subscription{
		id:       hex.EncodeToString(b),
		channels: channels,
		events:   make(chan Event, eventBuffer),
	}
}

// Events returns the subscription's delivery channel.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Channels returns the channel names this subscription listens on.
func (s *Subscription) Channels() []string {
	return s.channels
}

func (s *Subscription) publish(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	// Never block a publisher on a slow client: drop when the buffer is
	// full. The persisted record is the durable copy.
	select {
	case s.events <- e:
	default:
	}
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

// Hub maps channel names to live subscriptions. Mutations happen only on
// subscribe/unsubscribe; publishing takes the read lock.
type Hub struct {
	mu            sync.RWMutex
	subsByChannel map[string]map[string]*Subscription
	log           zerolog.Logger
}

// NewHub creates an empty Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subsByChannel: make(map[string]map[string]*Subscription),
		log:           log,
	}
}

// Subscribe attaches a new subscription to the given channels.
func (h *Hub) Subscribe(channels ...string) *Subscription {
	sub := newSubscription(channels)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range channels {
		if h.subsByChannel[ch] == nil {
			h.subsByChannel[ch] = make(map[string]*Subscription)
		}
		h.subsByChannel[ch][sub.id] = sub
	}

	metrics.SubscribersGauge.Inc()
	h.log.Debug().Strs("channels", channels).Msg("subscription opened")
	return sub
}

// Unsubscribe detaches the subscription from every channel and closes it.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := false
	for _, ch := range sub.channels {
		if subs, ok := h.subsByChannel[ch]; ok {
			if _, present := subs[sub.id]; present {
				delete(subs, sub.id)
				removed = true
			}
			if len(subs) == 0 {
				delete(h.subsByChannel, ch)
			}
		}
	}
	sub.close()

	if removed {
		metrics.SubscribersGauge.Dec()
	}
}

// Publish delivers an event to every live subscriber of the channel.
// Publishing to a channel with no subscribers is a no-op.
func (h *Hub) Publish(channel, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subs := h.subsByChannel[channel]
	if len(subs) == 0 {
		return
	}

	e := Event{Channel: channel, Name: event, Payload: payload}
	for _, sub := range subs {
		sub.publish(e)
	}
	metrics.BroadcastsTotal.WithLabelValues(event).Inc()
}
