// Package services defines the business logic of the auto-reply platform:
// the message pipeline, tenant management, escalation handling, and
// analytics. This file centralizes common service-level error values so they
// can be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; mapping to
// user-facing messages or HTTP status codes happens at the handler layer.
package services

import "errors"

var (
	// ErrTenantNotFound indicates the requested tenant does not exist.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrMissingBusinessName is returned when creating a tenant without a
	// business name.
	ErrMissingBusinessName = errors.New("business name is required")

	// ErrMissingPhoneNumberID is returned when creating a tenant without a
	// WhatsApp routing id.
	ErrMissingPhoneNumberID = errors.New("whatsapp phone number id is required")

	// ErrMissingAccessToken is returned when creating a tenant without a
	// WhatsApp access token.
	ErrMissingAccessToken = errors.New("whatsapp access token is required")

	// ErrInvalidLanguage is returned when a tenant's default language is not
	// a valid BCP-47 tag.
	ErrInvalidLanguage = errors.New("default language is not a valid language tag")

	// ErrDuplicatePhoneNumberID is returned when a tenant create/update would
	// reuse another tenant's routing id.
	ErrDuplicatePhoneNumberID = errors.New("whatsapp phone number id already in use")

	// ErrEscalationNotFound indicates the requested escalation does not exist.
	ErrEscalationNotFound = errors.New("escalation not found")

	// ErrInvalidEscalationStatus is returned for a status outside the allowed
	// set (pending, assigned, resolved, expired).
	ErrInvalidEscalationStatus = errors.New("invalid escalation status")
)
