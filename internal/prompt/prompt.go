// Package prompt builds the system prompt for the AI assistant from tenant
// configuration and the detected intent. Building is pure string assembly:
// identical inputs always produce identical output, which keeps replies
// reproducible and the function trivially testable.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kuwex/whatsapp-ai-backend/internal/intent"
)

// Profile is the slice of tenant configuration the prompt depends on.
type Profile struct {
	BusinessName        string
	BrandTone           string
	ServicesDescription string
}

// Defaults applied when a tenant leaves prompt fields blank.
const (
	DefaultBrandTone           = "professional and friendly"
	DefaultServicesDescription = "General business services"
)

const baseTemplate = `You are the AI sales assistant for %s. You ARE the business — speak as "we" and "our", never refer to yourself as an AI or bot.

Tone: %s

BUSINESS DETAILS (use this to answer questions):
%s

CRITICAL RULES:
- You MUST answer using the business details above. NEVER say "let me connect you with sales" or "I'll pass you to someone" unless the customer explicitly asks for a human.
- Keep messages concise — this is WhatsApp (under 150 words)
- Be confident, knowledgeable, and specific about services and pricing
- Use 1-2 emojis max
- Always guide toward a next step (booking a call, sharing project details, or making a deposit)
- If asked about pricing, give the actual prices from the business details above
- If asked about services, describe them specifically from the details above
- Ask clarifying questions to understand the client's needs before recommending solutions
`

// focusClauses appends an intent-specific steering paragraph to the base
// block. Intents without an entry (including sales) use defaultFocus.
var focusClauses = map[string]string{
	intent.Pricing: "\nFocus: Help with pricing questions. Frame costs as investments. Present 2-3 options when possible. Be transparent — no hidden fees.",
	intent.Booking: "\nFocus: Help schedule appointments/demos. Collect: preferred date/time, name, and contact. Confirm details before finalizing.",
	intent.Support: "\nFocus: Resolve customer issues empathetically. Acknowledge the problem first. Offer clear solutions or escalate to human if complex.",
}

const defaultFocus = "\nFocus: Engage the prospect warmly. Understand their needs. Highlight relevant services with specific details from the business info. Guide toward a consultation or booking a call. NEVER deflect to a human unless asked."

// BuildSystemPrompt produces the system prompt for one AI call. The tenant's
// services description is embedded verbatim; empty tone/description fall back
// to neutral defaults so a half-configured tenant still gets usable replies.
func BuildSystemPrompt(detectedIntent string, p Profile) string {
	tone := strings.TrimSpace(p.BrandTone)
	if tone == "" {
		tone = DefaultBrandTone
	}
	services := strings.TrimSpace(p.ServicesDescription)
	if services == "" {
		services = DefaultServicesDescription
	}

	base := fmt.Sprintf(baseTemplate, p.BusinessName, tone, services)

	if focus, ok := focusClauses[detectedIntent]; ok {
		return base + focus
	}
	return base + defaultFocus
}
