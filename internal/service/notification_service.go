package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/tatweer-edu/visit-plans-api/internal/dto"
	"github.com/tatweer-edu/visit-plans-api/internal/models"
	"github.com/tatweer-edu/visit-plans-api/internal/observability"
	"github.com/tatweer-edu/visit-plans-api/internal/repository"
)

const feedBufferSize = 16

// NotificationService records plan lifecycle events and streams them to the
// manager activity feed. When a NATS connection is configured, events fan out
// across instances; otherwise the in-process broker alone serves the feed.
type NotificationService interface {
	Publish(ctx context.Context, eventType, message string, planID *uint, metadata map[string]any) error
	List(ctx context.Context, limit, offset int) ([]dto.NotificationResponse, error)
	Subscribe() (<-chan dto.NotificationResponse, func())
	Start(ctx context.Context)
}

type notificationService struct {
	repo        repository.NotificationRepository
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	tracer      trace.Tracer
	sanitizer   *bluemonday.Policy
	broker      *feedBroker
	nodeID      string
}

type feedEvent struct {
	Source       string                   `json:"source"`
	Notification dto.NotificationResponse `json:"notification"`
	SentAt       time.Time                `json:"sent_at"`
}

type feedBroker struct {
	mu          sync.RWMutex
	subscribers map[chan dto.NotificationResponse]struct{}
}

// NewNotificationService constructs the activity feed service. natsConn may
// be nil for single-instance deployments.
func NewNotificationService(repo repository.NotificationRepository, natsConn *nats.Conn, subjectBase string, logger zerolog.Logger) NotificationService {
	subject := ""
	if subjectBase != "" {
		subject = strings.ReplaceAll(subjectBase, ":", ".") + ".plan-events"
	}

	return &notificationService{
		repo:        repo,
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "notification_service").Logger(),
		tracer:      otel.Tracer("github.com/tatweer-edu/visit-plans-api/internal/service/notification"),
		sanitizer:   bluemonday.StrictPolicy(),
		broker: &feedBroker{
			subscribers: make(map[chan dto.NotificationResponse]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

func (s *notificationService) Start(ctx context.Context) {
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *notificationService) Publish(ctx context.Context, eventType, message string, planID *uint, metadata map[string]any) error {
	cleanMessage := strings.TrimSpace(s.sanitizer.Sanitize(message))
	if cleanMessage == "" {
		return errors.New("event message empty after sanitization")
	}

	attrs := []attribute.KeyValue{
		attribute.String("event.type", eventType),
	}

	spanCtx, span := s.tracer.Start(ctx, "feed.publish", trace.WithAttributes(attrs...))
	defer span.End()

	model := models.Notification{
		Type:     eventType,
		Message:  cleanMessage,
		PlanID:   planID,
		Metadata: datatypes.JSONMap(metadata),
	}

	if err := s.repo.Create(spanCtx, &model); err != nil {
		span.RecordError(err)
		return err
	}

	response := dto.NewNotificationResponse(model)
	s.broker.broadcast(response)
	if err := s.fanOut(response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish event to nats")
	}

	observability.EventsPublished().WithLabelValues(eventType).Inc()

	return nil
}

func (s *notificationService) List(ctx context.Context, limit, offset int) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) Subscribe() (<-chan dto.NotificationResponse, func()) {
	channel := make(chan dto.NotificationResponse, feedBufferSize)

	s.broker.subscribe(channel)
	observability.FeedClientsActive().Inc()

	cleanup := func() {
		s.broker.unsubscribe(channel)
		observability.FeedClientsActive().Dec()
	}

	return channel, cleanup
}

func (s *notificationService) fanOut(notification dto.NotificationResponse) error {
	if s.nats == nil || s.natsSubject == "" {
		return nil
	}

	event := feedEvent{
		Source:       s.nodeID,
		Notification: notification,
		SentAt:       time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.nats.Publish(s.natsSubject, payload)
}

func (s *notificationService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "visit-plans-feed", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats feed subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain feed nats subscription")
		}
	}()
}

func (s *notificationService) handleEvent(payload []byte) {
	var event feedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid feed event payload")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	observability.EventsPublished().WithLabelValues(event.Notification.Type).Inc()
	s.broker.broadcast(event.Notification)
}

func (b *feedBroker) subscribe(ch chan dto.NotificationResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[ch] = struct{}{}
}

func (b *feedBroker) unsubscribe(ch chan dto.NotificationResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}

func (b *feedBroker) broadcast(notification dto.NotificationResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers {
		select {
		case ch <- notification:
		default:
		}
	}
}
