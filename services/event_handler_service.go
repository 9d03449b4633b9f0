package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"notes-app/notes/broker"
	"notes-app/notes/database"
	"notes-app/notes/models"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

const (
	defaultDispatchInterval = time.Second
	dispatchBatchSize       = 100
)

// EventHandlerService drains the events outbox into the broker.
type EventHandlerService struct {
	db       *database.Database
	broker   broker.Broker
	log      *zap.Logger
	interval time.Duration

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewEventHandlerService(db *database.Database, b broker.Broker, log *zap.Logger) *EventHandlerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventHandlerService{
		db:       db,
		broker:   b,
		log:      log,
		interval: defaultDispatchInterval,
	}
}

// WithInterval overrides the polling interval. It has no effect once started.
func (s *EventHandlerService) WithInterval(d time.Duration) *EventHandlerService {
	if d > 0 {
		s.interval = d
	}
	return s
}

func (s *EventHandlerService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.isRunning = true
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

// Stop cancels the dispatch loop and waits for the current batch to finish.
func (s *EventHandlerService) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.cancel()
	done := s.done
	s.mu.Unlock()

	<-done
}

func (s *EventHandlerService) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ProcessPendingEvents(ctx); err != nil && ctx.Err() == nil {
				s.log.Error("event dispatch failed", zap.Error(err))
			}
		}
	}
}

// ProcessPendingEvents publishes one batch of undispatched events in creation order and
// returns how many were marked dispatched. Events that fail to publish stay pending and
// are retried on the next pass.
func (s *EventHandlerService) ProcessPendingEvents(ctx context.Context) (int, error) {
	var events []models.Event
	err := s.db.DB.WithContext(ctx).
		Where("dispatched = ?", false).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}).
		Limit(dispatchBatchSize).
		Find(&events).Error
	if err != nil {
		return 0, err
	}

	if len(events) > 0 {
		s.log.Debug("found pending events", zap.Int("count", len(events)))
	}

	dispatched := 0
	for _, event := range events {
		if err := s.dispatchEvent(ctx, event); err != nil {
			s.log.Warn("error dispatching event",
				zap.String("event_id", event.ID.String()),
				zap.String("event", event.Event),
				zap.Error(err))
			continue
		}
		dispatched++
	}
	return dispatched, nil
}

func (s *EventHandlerService) dispatchEvent(ctx context.Context, event models.Event) error {
	payload, err := eventEnvelope(event)
	if err != nil {
		return err
	}

	subject := subjectForEvent(event)
	if err := s.broker.Publish(subject, payload); err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.db.DB.WithContext(ctx).Model(&models.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]interface{}{
			"dispatched":    true,
			"dispatched_at": now,
			"status":        "completed",
		}).Error
}

// eventEnvelope is the message body subscribers receive.
func eventEnvelope(event models.Event) ([]byte, error) {
	data := event.Data
	if len(data) == 0 || !json.Valid(data) {
		data = json.RawMessage("{}")
	}
	return json.Marshal(map[string]interface{}{
		"event_id":  event.ID.String(),
		"type":      event.Event,
		"entity":    event.Entity,
		"operation": event.Operation,
		"actor_id":  event.ActorID,
		"timestamp": event.Timestamp,
		"data":      data,
	})
}

func subjectForEvent(event models.Event) string {
	if event.Entity == "webhook" {
		return broker.WebhookSubject
	}
	return broker.SubjectForEvent(event.Event)
}
