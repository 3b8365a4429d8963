package handler

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderdomain "github.com/locallift/backend/internal/domain/order"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID     string
	UserID string
	Chan   chan SSEMessage
	Done   chan struct{}
}

// SSEMessage represents a message to be sent to SSE clients
type SSEMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
	ID    string `json:"id,omitempty"`
}

// NotificationSSEHandler streams inbox nudges over Server-Sent Events. It
// subscribes to order lifecycle events and tells affected clients to
// refetch their notifications; the inbox rows themselves are written by
// the notification event handler, so a dropped SSE message loses nothing.
type NotificationSSEHandler struct {
	BaseHandler
	logger     *zap.Logger
	clients    sync.Map // map[string]*SSEClient
	ctx        context.Context
	cancel     context.CancelFunc
	heartbeat  time.Duration
	maxClients int
}

var _ shared.EventHandler = (*NotificationSSEHandler)(nil)

// NotificationSSEOption is a functional option for configuring the handler
type NotificationSSEOption func(*NotificationSSEHandler)

// WithSSELogger sets the logger for the handler
func WithSSELogger(logger *zap.Logger) NotificationSSEOption {
	return func(h *NotificationSSEHandler) {
		h.logger = logger
	}
}

// WithSSEHeartbeat sets the heartbeat interval
func WithSSEHeartbeat(interval time.Duration) NotificationSSEOption {
	return func(h *NotificationSSEHandler) {
		h.heartbeat = interval
	}
}

// WithSSEMaxClients sets the maximum number of concurrent SSE clients
func WithSSEMaxClients(max int) NotificationSSEOption {
	return func(h *NotificationSSEHandler) {
		h.maxClients = max
	}
}

// NewNotificationSSEHandler creates a new SSE handler for inbox updates
func NewNotificationSSEHandler(opts ...NotificationSSEOption) *NotificationSSEHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &NotificationSSEHandler{
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		heartbeat:  30 * time.Second,
		maxClients: 10000,
	}

	for _, opt := range opts {
		opt(h)
	}

	go h.sendHeartbeats()
	return h
}

// Stop disconnects all clients and halts the heartbeat loop
func (h *NotificationSSEHandler) Stop() {
	h.cancel()

	h.clients.Range(func(key, value any) bool {
		if client, ok := value.(*SSEClient); ok {
			close(client.Done)
		}
		return true
	})

	h.logger.Info("Notification SSE handler stopped")
}

// EventTypes lists the order events that trigger an inbox nudge
func (h *NotificationSSEHandler) EventTypes() []string {
	return []string{
		orderdomain.EventTypeOrderPlaced,
		orderdomain.EventTypeOrderStatusChanged,
		orderdomain.EventTypeReturnRequested,
		orderdomain.EventTypeReturnDecided,
		orderdomain.EventTypeExchangeRequested,
		orderdomain.EventTypeExchangeDecided,
	}
}

// Handle fans an order event out to the SSE clients of everyone it touches
func (h *NotificationSSEHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	var recipients []uuid.UUID
	switch e := event.(type) {
	case *orderdomain.OrderPlacedEvent:
		recipients = withCustomer(e.VendorIDs, e.CustomerID)
	case *orderdomain.OrderStatusChangedEvent:
		recipients = withCustomer(e.VendorIDs, e.CustomerID)
	case *orderdomain.ReturnRequestedEvent:
		recipients = withCustomer(e.VendorIDs, e.CustomerID)
	case *orderdomain.ReturnDecidedEvent:
		recipients = []uuid.UUID{e.CustomerID}
	case *orderdomain.ExchangeRequestedEvent:
		recipients = withCustomer(e.VendorIDs, e.CustomerID)
	case *orderdomain.ExchangeDecidedEvent:
		recipients = []uuid.UUID{e.CustomerID}
	default:
		return nil
	}

	msg := SSEMessage{
		Event: "notification",
		Data:  fmt.Sprintf(`{"order_id":"%s","event":"%s"}`, event.AggregateID(), event.EventType()),
		ID:    event.EventID().String(),
	}
	h.broadcastTo(recipients, msg)
	return nil
}

func withCustomer(vendorIDs []uuid.UUID, customerID uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(vendorIDs)+1)
	out = append(out, vendorIDs...)
	return append(out, customerID)
}

// broadcastTo sends a message to every connected client of the given users
func (h *NotificationSSEHandler) broadcastTo(userIDs []uuid.UUID, msg SSEMessage) {
	targets := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		targets[id.String()] = struct{}{}
	}

	h.clients.Range(func(key, value any) bool {
		client, ok := value.(*SSEClient)
		if !ok {
			return true
		}
		if _, wanted := targets[client.UserID]; !wanted {
			return true
		}

		select {
		case client.Chan <- msg:
		default:
			// Channel full, client might be slow
			h.logger.Warn("Client channel full, dropping message",
				zap.String("client_id", client.ID))
		}
		return true
	})
}

// broadcast sends a message to all connected clients
func (h *NotificationSSEHandler) broadcast(msg SSEMessage) {
	h.clients.Range(func(key, value any) bool {
		if client, ok := value.(*SSEClient); ok {
			select {
			case client.Chan <- msg:
			default:
				h.logger.Warn("Client channel full, dropping message",
					zap.String("client_id", client.ID))
			}
		}
		return true
	})
}

// sendHeartbeats periodically sends heartbeat messages to keep connections alive
func (h *NotificationSSEHandler) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.broadcast(SSEMessage{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
		}
	}
}

// Stream handles GET /notifications/stream
func (h *NotificationSSEHandler) Stream(c *gin.Context) {
	if h.maxClients > 0 && h.ClientCount() >= h.maxClients {
		c.JSON(503, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MAX_CONNECTIONS_REACHED",
				"message": "Maximum number of SSE connections reached",
			},
		})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	userID := middleware.GetJWTUserID(c)

	// Buffer size allows messages to queue without blocking broadcast
	const sseMessageBufferSize = 100
	client := &SSEClient{
		ID:     uuid.New().String(),
		UserID: userID,
		Chan:   make(chan SSEMessage, sseMessageBufferSize),
		Done:   make(chan struct{}),
	}

	h.clients.Store(client.ID, client)
	defer func() {
		// Close channel first to prevent sends to closed channel
		close(client.Chan)
		h.clients.Delete(client.ID)
	}()

	h.logger.Info("SSE client connected",
		zap.String("client_id", client.ID),
		zap.String("user_id", userID))

	h.sendEvent(c.Writer, SSEMessage{
		Event: "connected",
		Data:  fmt.Sprintf(`{"client_id":"%s","timestamp":%d}`, client.ID, time.Now().Unix()),
	})
	c.Writer.Flush()

	reqCtx := c.Request.Context()

	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("SSE client disconnected",
				zap.String("client_id", client.ID))
			return
		case <-client.Done:
			return
		case <-h.ctx.Done():
			return
		case msg, ok := <-client.Chan:
			if !ok {
				return
			}
			h.sendEvent(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

// sendEvent writes an SSE event to the response writer
func (h *NotificationSSEHandler) sendEvent(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}

// ClientCount returns the number of connected SSE clients
func (h *NotificationSSEHandler) ClientCount() int {
	count := 0
	h.clients.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
