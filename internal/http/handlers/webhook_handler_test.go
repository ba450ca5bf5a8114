package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kuwex/whatsapp-ai-backend/internal/whatsapp"
)

type fakeProcessor struct {
	msgs []whatsapp.InboundMessage
	err  error
}

func (f *fakeProcessor) Process(_ context.Context, msg whatsapp.InboundMessage) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

func webhookRouter(proc *fakeProcessor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	wh := NewWebhookHandler("secret-token", proc)
	r.GET("/webhook/whatsapp", wh.Verify)
	r.POST("/webhook/whatsapp", wh.Receive)
	return r
}

const textDelivery = `{
  "entry": [{
    "changes": [{
      "value": {
        "metadata": {"phone_number_id": "pn-1"},
        "contacts": [{"profile": {"name": "Ada"}}],
        "messages": [{
          "from": "263771000001",
          "id": "wamid.x1",
          "timestamp": "1756600000",
          "type": "text",
          "text": {"body": "how much?"}
        }]
      }
    }]
  }]
}`

func TestWebhookVerify(t *testing.T) {
	r := webhookRouter(&fakeProcessor{})

	// correct token echoes the challenge as plain text
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", nil))
	if w.Code != http.StatusOK || w.Body.String() != "12345" {
		t.Fatalf("verify = %d %q, want 200 \"12345\"", w.Code, w.Body.String())
	}

	// wrong token is refused
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet,
		"/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil))
	if w2.Code != http.StatusForbidden {
		t.Fatalf("verify with bad token = %d, want 403", w2.Code)
	}

	// wrong mode is refused even with the right token
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, httptest.NewRequest(http.MethodGet,
		"/webhook/whatsapp?hub.mode=unsubscribe&hub.verify_token=secret-token", nil))
	if w3.Code != http.StatusForbidden {
		t.Fatalf("verify with bad mode = %d, want 403", w3.Code)
	}
}

func TestWebhookReceive_TextMessage(t *testing.T) {
	proc := &fakeProcessor{}
	r := webhookRouter(proc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(textDelivery))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(proc.msgs) != 1 {
		t.Fatalf("processor calls = %d, want 1", len(proc.msgs))
	}
	got := proc.msgs[0]
	if got.PhoneNumber != "263771000001" || got.MessageText != "how much?" ||
		got.PhoneNumberID != "pn-1" || got.DisplayName != "Ada" || got.MessageID != "wamid.x1" {
		t.Fatalf("unexpected extracted message: %+v", got)
	}
}

func TestWebhookReceive_StatusCallbackIgnored(t *testing.T) {
	proc := &fakeProcessor{}
	r := webhookRouter(proc)

	status := `{"entry":[{"changes":[{"value":{"metadata":{"phone_number_id":"pn-1"},"statuses":[{"id":"wamid.x1","status":"delivered"}]}}]}]}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(status)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(proc.msgs) != 0 {
		t.Fatalf("status callback must not reach the pipeline")
	}
	if !strings.Contains(w.Body.String(), "ignored") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestWebhookReceive_MalformedBodyStill200(t *testing.T) {
	proc := &fakeProcessor{}
	r := webhookRouter(proc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader("not json")))
	if w.Code != http.StatusOK || len(proc.msgs) != 0 {
		t.Fatalf("malformed body: status = %d, calls = %d", w.Code, len(proc.msgs))
	}
}

func TestWebhookReceive_PipelineErrorStill200(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("store down")}
	r := webhookRouter(proc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(textDelivery)))
	if w.Code != http.StatusOK {
		t.Fatalf("pipeline failure must still ack: status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "received") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}
