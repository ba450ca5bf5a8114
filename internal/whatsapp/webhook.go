package whatsapp

import (
	"encoding/json"
)

// InboundMessage is the normalized record the pipeline consumes: one inbound
// text message plus the routing metadata that identifies the receiving tenant.
type InboundMessage struct {
	PhoneNumber   string // sender
	MessageText   string
	MessageID     string // provider-assigned, kept for audit
	Timestamp     string
	DisplayName   string // best-effort contact name
	PhoneNumberID string // routing id of the tenant's WhatsApp number
}

// webhookEnvelope mirrors the Meta webhook wrapper just deep enough to reach
// the first text message. Everything else in the payload is ignored.
type webhookEnvelope struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Metadata struct {
					PhoneNumberID string `json:"phone_number_id"`
				} `json:"metadata"`
				Contacts []struct {
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Messages []struct {
					From      string `json:"from"`
					ID        string `json:"id"`
					Timestamp string `json:"timestamp"`
					Text      *struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ExtractMessage normalizes a raw webhook body. It returns false for payloads
// that carry no extractable text: delivery/status callbacks, media-only
// messages, and malformed bodies. Those are acknowledged upstream without
// ever reaching the pipeline.
func ExtractMessage(body []byte) (*InboundMessage, bool) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false
	}
	if len(env.Entry) == 0 || len(env.Entry[0].Changes) == 0 {
		return nil, false
	}

	value := env.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 {
		return nil, false
	}
	m := value.Messages[0]
	if m.Text == nil || m.Text.Body == "" {
		return nil, false
	}

	name := "Customer"
	if len(value.Contacts) > 0 && value.Contacts[0].Profile.Name != "" {
		name = value.Contacts[0].Profile.Name
	}

	return &InboundMessage{
		PhoneNumber:   m.From,
		MessageText:   m.Text.Body,
		MessageID:     m.ID,
		Timestamp:     m.Timestamp,
		DisplayName:   name,
		PhoneNumberID: value.Metadata.PhoneNumberID,
	}, true
}
