// WhatsApp webhook HTTP handlers.
//
// Two endpoints, both dictated by the Meta platform contract:
//   - GET  /webhook/whatsapp  (subscription verification handshake)
//   - POST /webhook/whatsapp  (inbound message delivery)
//
// The POST endpoint must answer 200 quickly and unconditionally for
// well-formed deliveries: any non-200 makes Meta retry, and repeated failures
// disable the subscription. Processing failures are therefore logged, never
// surfaced to the caller.
package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kuwex/whatsapp-ai-backend/internal/http/middleware"
	"github.com/kuwex/whatsapp-ai-backend/internal/whatsapp"
)

// maxWebhookBody caps how much of a webhook delivery is read. Real payloads
// are a few KiB; anything larger is not a text message.
const maxWebhookBody = 256 << 10

// MessageProcessor runs one inbound message through the reply pipeline.
type MessageProcessor interface {
	Process(ctx context.Context, msg whatsapp.InboundMessage) error
}

// WebhookHandler serves the Meta webhook endpoints.
type WebhookHandler struct {
	// VerifyToken must match the token configured in the Meta app dashboard.
	VerifyToken string
	// Pipeline handles each extracted inbound message.
	Pipeline MessageProcessor
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(verifyToken string, p MessageProcessor) *WebhookHandler {
	return &WebhookHandler{VerifyToken: verifyToken, Pipeline: p}
}

// Verify implements the GET subscription handshake: when hub.mode is
// "subscribe" and hub.verify_token matches, the raw hub.challenge is echoed
// back as plain text. Anything else is a 403.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.VerifyToken {
		c.String(http.StatusOK, challenge)
		return
	}
	fail(c, http.StatusForbidden, ErrCodeForbidden, "webhook verification failed")
}

// Receive implements the POST delivery endpoint. Status callbacks and
// non-text messages are acknowledged and ignored; text messages run through
// the pipeline. The response is 200 regardless of processing outcome.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		// Couldn't even read the delivery; nothing to process.
		ok(c, http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	msg, extracted := whatsapp.ExtractMessage(body)
	if !extracted {
		ok(c, http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if err := h.Pipeline.Process(c.Request.Context(), *msg); err != nil {
		middleware.LoggerFrom(c).Error().
			Err(err).
			Str("phone_number_id", msg.PhoneNumberID).
			Str("message_id", msg.MessageID).
			Msg("pipeline failed, acknowledging delivery anyway")
	}
	ok(c, http.StatusOK, gin.H{"status": "received"})
}
