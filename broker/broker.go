// Package broker publishes application events to subscribers, either through NATS or,
// when no NATS server is configured, through an in-process fan-out.
package broker

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("broker closed")

type Message struct {
	Subject string
	Data    []byte
}

type Handler func(msg Message)

type Subscription interface {
	Unsubscribe() error
}

type Broker interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler Handler) (Subscription, error)
	Close()
}

// MemoryBroker delivers messages synchronously to matching in-process subscribers.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[int]*memorySubscription
	nextID int
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[int]*memorySubscription)}
}

type memorySubscription struct {
	id      int
	pattern string
	handler Handler
	broker  *MemoryBroker
}

func (s *memorySubscription) Unsubscribe() error {
	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()
	delete(s.broker.subs, s.id)
	return nil
}

func (b *MemoryBroker) Publish(subject string, data []byte) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	var handlers []Handler
	for _, sub := range b.subs {
		if SubjectMatches(sub.pattern, subject) {
			handlers = append(handlers, sub.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(Message{Subject: subject, Data: data})
	}
	return nil
}

func (b *MemoryBroker) Subscribe(subject string, handler Handler) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	b.nextID++
	sub := &memorySubscription{id: b.nextID, pattern: subject, handler: handler, broker: b}
	b.subs[sub.id] = sub
	return sub, nil
}

func (b *MemoryBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[int]*memorySubscription)
}
