package models

import (
	dErrors "civicdesk/pkg/domain-errors"
)

// OutboundMessage is a WhatsApp message queued for delivery by the relay.
type OutboundMessage struct {
	To        string   `json:"to"`
	Body      string   `json:"body"`
	From      string   `json:"from"`
	MediaURLs []string `json:"mediaUrls"`
}

func (m *OutboundMessage) Validate() error {
	if m == nil || m.To == "" || m.Body == "" || m.From == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Invalid request: 'to', 'body', and 'from' are required.")
	}
	return nil
}

type StoreMediaRequest struct {
	ContactNumber string `json:"contactNumber"`
	MediaURL      string `json:"mediaUrl"`
}

func (r *StoreMediaRequest) Validate() error {
	if r == nil || r.MediaURL == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Media URL is required")
	}
	if r.ContactNumber == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Contact number is required")
	}
	return nil
}

type MessageQueuedResponse struct {
	Message string `json:"message"`
}

type StoreMediaResponse struct {
	Message string `json:"message"`
	FileURL string `json:"fileUrl"`
}

type LookupMediaResponse struct {
	FileURL string `json:"fileUrl"`
}
