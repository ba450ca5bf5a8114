// Package whatsapp speaks the WhatsApp Business Cloud API: posting outbound
// text messages to the Graph endpoint and normalizing the inbound webhook
// envelope into the record the pipeline consumes.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// OutboundMessage carries everything one send needs. PhoneNumberID and
// AccessToken are tenant-scoped: they come from the Tenant record per run and
// are never cached here.
type OutboundMessage struct {
	To            string
	Text          string
	PhoneNumberID string
	AccessToken   string
}

// DeliveryHook observes the outcome of each send attempt. Delivery is
// fire-and-forget today; the hook is the seam where a retry queue or a
// persisted delivery status could be attached without touching the pipeline.
type DeliveryHook func(msg OutboundMessage, delivered bool)

// SenderConfig configures the Graph API sender.
type SenderConfig struct {
	BaseURL    string        // default https://graph.facebook.com
	APIVersion string        // default v21.0
	Timeout    time.Duration // per send, default 10s
	Hook       DeliveryHook  // optional
}

// Sender posts text messages to the WhatsApp Business Graph API. Safe for
// concurrent use.
type Sender struct {
	cfg    SenderConfig
	client *http.Client
	log    zerolog.Logger
}

// NewSender builds a Sender, applying defaults for unset fields.
func NewSender(cfg SenderConfig) *Sender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://graph.facebook.com"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v21.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Sender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.With().Str("component", "whatsapp").Logger(),
	}
}

// sendPayload is the Graph API request body for a text message.
type sendPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

// Send posts one text message using the tenant's routing id and token. It
// reduces every failure (transport error, non-2xx) to false after logging;
// callers do not retry and already-persisted conversation state stays as is.
func (s *Sender) Send(ctx context.Context, msg OutboundMessage) bool {
	delivered := s.send(ctx, msg)
	if s.cfg.Hook != nil {
		s.cfg.Hook(msg, delivered)
	}
	return delivered
}

func (s *Sender) send(ctx context.Context, msg OutboundMessage) bool {
	url := fmt.Sprintf("%s/%s/%s/messages", s.cfg.BaseURL, s.cfg.APIVersion, msg.PhoneNumberID)

	body, err := json.Marshal(sendPayload{
		MessagingProduct: "whatsapp",
		To:               msg.To,
		Type:             "text",
		Text:             textBody{Body: msg.Text},
	})
	if err != nil {
		s.log.Error().Err(err).Msg("marshal send payload")
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		s.log.Error().Err(err).Msg("build send request")
		return false
	}
	req.Header.Set("Authorization", "Bearer "+msg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error().
			Err(err).
			Str("phone_number_id", msg.PhoneNumberID).
			Msg("whatsapp send transport error")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.log.Error().
			Int("status", resp.StatusCode).
			Str("phone_number_id", msg.PhoneNumberID).
			Str("body", string(errBody)).
			Msg("whatsapp send rejected")
		return false
	}
	return true
}
