package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/tatweer-edu/visit-plans-api/internal/middleware"
	"github.com/tatweer-edu/visit-plans-api/internal/service"
	"github.com/tatweer-edu/visit-plans-api/internal/utils"
)

// FeedHandler exposes the live plan-event feed and the notification history.
type FeedHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
}

// NewFeedHandler constructs the handler.
func NewFeedHandler(service service.NotificationService, logger zerolog.Logger) *FeedHandler {
	return &FeedHandler{
		service: service,
		logger:  logger.With().Str("component", "feed_handler").Logger(),
	}
}

// Register wires the feed routes under the provided router group.
func (h *FeedHandler) Register(router fiber.Router) {
	router.Use("/feed", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
			c.Locals("request_ctx", ctx)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/feed", websocket.New(h.handleConnection))
	router.Get("/notifications", h.notifications)
}

func (h *FeedHandler) handleConnection(conn *websocket.Conn) {
	events, cancel := h.service.Subscribe()
	defer cancel()

	h.logger.Info().Msg("feed websocket connected")

	// Reads are only consumed to detect the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case notification, ok := <-events:
			if !ok {
				h.logger.Info().Msg("feed websocket closed by broker")
				return
			}
			if err := conn.WriteJSON(notification); err != nil {
				h.logger.Info().Err(err).Msg("feed websocket write failed")
				return
			}
		case <-closed:
			h.logger.Info().Msg("feed websocket disconnected")
			return
		}
	}
}

func (h *FeedHandler) notifications(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil || offset < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	notifications, err := h.service.List(c.Context(), limit, offset)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list notifications")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "notifications retrieved", notifications)
}
