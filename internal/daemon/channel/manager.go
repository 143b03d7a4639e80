// Package channel implements the named-channel broadcast registry for
// realtime subscribers.
package channel

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openclaw/dashd/config"
	"github.com/openclaw/dashd/pkg/models"
	"github.com/sirupsen/logrus"
)

// Conn is the minimal transport handle the manager needs. The websocket
// layer adapts its connections to this; tests use recording fakes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// deadlineConn is implemented by transports that support write deadlines
// (gorilla connections do). Fakes without it are only bounded by the queue.
type deadlineConn interface {
	SetWriteDeadline(t time.Time) error
}

// Subscriber is one live connection registered on a channel. It owns a
// bounded outbound queue drained by a dedicated writer goroutine.
type Subscriber struct {
	id      uint64
	channel string
	conn    Conn
	queue   chan models.Frame
	done    chan struct{}
	once    sync.Once
}

// Channel returns the channel this subscriber is registered on.
func (s *Subscriber) Channel() string { return s.channel }

// Manager is the registry of channel subscribers. Channels are created
// lazily on first subscription and may persist with zero subscribers.
// Delivery is best-effort at-most-once per subscriber, FIFO per channel.
type Manager struct {
	mu       sync.Mutex
	channels map[string]map[*Subscriber]struct{}

	queueBound  int
	sendTimeout time.Duration
	heartbeat   time.Duration
	nextID      atomic.Uint64
	logger      *logrus.Entry
}

// NewManager creates a channel manager with the configured queue bound and
// slow-consumer send timeout.
func NewManager(cfg config.ChannelConfig, logger *logrus.Entry) *Manager {
	return &Manager{
		channels:    make(map[string]map[*Subscriber]struct{}),
		queueBound:  cfg.QueueBound,
		sendTimeout: cfg.SendTimeout(),
		heartbeat:   cfg.HeartbeatInterval(),
		logger:      logger,
	}
}

// Subscribe registers a connection on a channel and starts its writer.
func (m *Manager) Subscribe(channelName string, conn Conn) *Subscriber {
	sub := &Subscriber{
		id:      m.nextID.Add(1),
		channel: channelName,
		conn:    conn,
		queue:   make(chan models.Frame, m.queueBound),
		done:    make(chan struct{}),
	}

	m.mu.Lock()
	subs, ok := m.channels[channelName]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		m.channels[channelName] = subs
	}
	subs[sub] = struct{}{}
	m.mu.Unlock()

	go m.writeLoop(sub)

	m.logger.WithFields(logrus.Fields{"channel": channelName, "subscriber": sub.id}).
		Debug("Subscriber registered")
	return sub
}

// Unsubscribe removes a subscriber and stops its writer. The connection
// itself is left to the transport layer to close.
func (m *Manager) Unsubscribe(sub *Subscriber) {
	m.remove(sub)
	sub.once.Do(func() { close(sub.done) })
}

// Publish delivers a frame to every current subscriber of a channel and
// returns the number of queues it reached. A subscriber whose queue is full
// is evicted; that failure never affects delivery to the others.
func (m *Manager) Publish(channelName string, frame models.Frame) int {
	m.mu.Lock()
	subs := make([]*Subscriber, 0, len(m.channels[channelName]))
	for sub := range m.channels[channelName] {
		subs = append(subs, sub)
	}
	m.mu.Unlock()

	delivered := 0
	for _, sub := range subs {
		select {
		case sub.queue <- frame:
			delivered++
		default:
			m.evict(sub, "queue full")
		}
	}
	return delivered
}

// SubscriberCount returns the live subscriber count for a channel.
func (m *Manager) SubscriberCount(channelName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.channels[channelName])
}

// RunHeartbeat publishes heartbeat frames on every channel at the idle
// interval until the context is canceled, so clients can detect dead
// connections on their side too.
func (m *Manager) RunHeartbeat(ctx context.Context) {
	ticker := time.NewTicker(m.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.mu.Lock()
			names := make([]string, 0, len(m.channels))
			for name, subs := range m.channels {
				if len(subs) > 0 {
					names = append(names, name)
				}
			}
			m.mu.Unlock()

			for _, name := range names {
				m.Publish(name, models.Frame{
					Channel: name,
					Type:    models.FrameHeartbeat,
					Payload: map[string]interface{}{"ts": now.UTC().Format(time.RFC3339)},
				})
			}
		}
	}
}

// Close evicts every subscriber. Used on daemon shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	var all []*Subscriber
	for _, subs := range m.channels {
		for sub := range subs {
			all = append(all, sub)
		}
	}
	m.mu.Unlock()

	for _, sub := range all {
		m.evict(sub, "shutdown")
	}
}

// writeLoop drains one subscriber's queue onto its connection. A write
// error or timeout evicts the subscriber.
func (m *Manager) writeLoop(sub *Subscriber) {
	for {
		select {
		case <-sub.done:
			return
		case frame := <-sub.queue:
			if dc, ok := sub.conn.(deadlineConn); ok {
				_ = dc.SetWriteDeadline(time.Now().Add(m.sendTimeout))
			}
			if err := sub.conn.WriteJSON(frame); err != nil {
				m.logger.WithError(err).WithFields(logrus.Fields{
					"channel": sub.channel, "subscriber": sub.id,
				}).Debug("Subscriber write failed")
				m.evict(sub, "write failed")
				return
			}
		}
	}
}

// evict removes a subscriber from the registry, stops its writer, and
// closes its connection.
func (m *Manager) evict(sub *Subscriber, reason string) {
	m.remove(sub)
	sub.once.Do(func() {
		close(sub.done)
		_ = sub.conn.Close()
		m.logger.WithFields(logrus.Fields{
			"channel": sub.channel, "subscriber": sub.id, "reason": reason,
		}).Warn("Subscriber evicted")
	})
}

func (m *Manager) remove(sub *Subscriber) {
	m.mu.Lock()
	if subs, ok := m.channels[sub.channel]; ok {
		delete(subs, sub)
	}
	m.mu.Unlock()
}
