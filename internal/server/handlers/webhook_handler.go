package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
	service "github.com/icsherer/Herd-Ledger/internal/service/whatsapp"
)

// WebhookHandler is the WhatsApp side of the ledger. Farmhands text herd
// commands to the business number, Meta posts them here, and the messaging
// service parses and dispatches them to the ledger and replies in chat.
type WebhookHandler struct {
	svc    service.MessagingService
	logger *zap.Logger
}

// NewWebhookHandler wires the chat command flow to HTTP.
func NewWebhookHandler(svc service.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, logger: logger}
}

// Verify answers the subscription challenge Meta sends when the webhook is
// registered for the farm's number.
func (h *WebhookHandler) Verify(c *gin.Context) {
	resp, err := h.svc.VerifyWebhookToken(c.Query("hub.mode"), c.Query("hub.verify_token"), c.Query("hub.challenge"))
	if err != nil {
		h.logger.Warn("webhook verification failed", zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}
	c.String(http.StatusOK, resp)
}

// Receive takes a batch of farmhand messages and runs each as a herd
// command. Batches carrying only delivery receipts never reach the ledger.
// A command that fails is answered in chat by the service, so the batch is
// still acknowledged with 200 and Meta does not redeliver it.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	messages, receipts := countEvents(payload)
	if messages == 0 {
		h.logger.Debug("webhook without farmhand messages", zap.Int("receipts", receipts))
		c.Status(http.StatusOK)
		return
	}

	h.logger.Info("farmhand messages received", zap.Int("messages", messages))
	if err := h.svc.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("herd command failed", zap.Int("messages", messages), zap.Error(err))
	}
	c.Status(http.StatusOK)
}

// SendMessage pushes a text to a farmhand or the farm group, for reminders
// sent outside the daily digest.
func (h *WebhookHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid outbound payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.SendOutbound(c.Request.Context(), req); err != nil {
		h.logger.Error("farm message not sent", zap.String("to", req.To), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}
	c.Status(http.StatusAccepted)
}

func countEvents(p models.WebhookPayload) (messages, receipts int) {
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			messages += len(change.Value.Messages)
			receipts += len(change.Value.Statuses)
		}
	}
	return messages, receipts
}
