package domain

import "errors"

// Webhook event names recognised by the dispatcher.
const (
	EventIntegrationReady = "integrations.ready"
	EventProductCreate    = "products.create"
	EventProductUpdate    = "products.update"
	EventProductDelete    = "products.delete"
	EventCategoryCreate   = "categories.create"
	EventCategoryUpdate   = "categories.update"
	EventCategoryDelete   = "categories.delete"
)

var (
	// ErrMissingModelID is returned for delete events that carry no model ids.
	ErrMissingModelID = errors.New("delete event has no model_ids")
	// ErrMissingObjectID is returned by sinks for documents without an objectID.
	ErrMissingObjectID = errors.New("document has no objectID")
)

// WebhookEvent is the inbound event descriptor delivered by the platform.
type WebhookEvent struct {
	Event    string `json:"event"`
	Payload  Entity `json:"payload,omitempty"`
	ModelIDs []any  `json:"model_ids,omitempty"`
}

// FirstModelID returns model_ids[0] formatted as a string. Any further ids are ignored.
func (e WebhookEvent) FirstModelID() (string, error) {
	if len(e.ModelIDs) == 0 {
		return "", ErrMissingModelID
	}
	id := FormatID(e.ModelIDs[0])
	if id == "" {
		return "", ErrMissingModelID
	}
	return id, nil
}

// ParseWebhookEvent decodes a raw webhook body.
func ParseWebhookEvent(raw []byte) (WebhookEvent, error) {
	var evt WebhookEvent
	if err := DecodeJSON(raw, &evt); err != nil {
		return WebhookEvent{}, err
	}
	return evt, nil
}
