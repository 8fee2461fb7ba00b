package models

import "time"

// Lead statuses this service writes back. Leads are owned by the sales
// workflow; we only read them for todo hydration and move their status
// when an inspection completes or gets cancelled.
const (
	LeadStatusLead      = "Lead"
	LeadStatusQuotation = "Quotation"
)

type Lead struct {
	Name         string    `json:"name"`
	LeadName     string    `json:"lead_name"`
	Status       string    `json:"status"`
	EmailID      string    `json:"email_id,omitempty"`
	MobileNo     string    `json:"mobile_no,omitempty"`
	Source       string    `json:"source,omitempty"`
	PropertyType string    `json:"property_type,omitempty"`
	Address      string    `json:"address,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
