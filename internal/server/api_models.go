package server

import "github.com/pagegrade/pagegrade/internal/model"

// CreateAuditRequest is the payload for starting an audit.
type CreateAuditRequest struct {
	URL         string `json:"url" example:"https://example.com"`
	WebsiteType string `json:"website_type" example:"e-commerce"`

	// Wait makes the request block until the audit completes instead of
	// returning the running record immediately.
	Wait bool `json:"wait" example:"false"`
}

// ListAuditsResponse pages through stored audits, newest first.
type ListAuditsResponse struct {
	Total  int                  `json:"total" example:"42"`
	Audits []*model.AuditResult `json:"audits"`
}

// HealthResponse reports service liveness and stored audit count.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Audits int    `json:"audits" example:"42"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}
