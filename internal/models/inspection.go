package models

import (
	"errors"
	"fmt"
	"time"

	"field-backend/internal/timeutil"
)

// InspectionStatus represents the lifecycle state of a site inspection.
type InspectionStatus string

const (
	InspectionStatusScheduled  InspectionStatus = "Scheduled"
	InspectionStatusInProgress InspectionStatus = "In Progress"
	// InspectionStatusPending is displayed to users as "On Hold".
	InspectionStatusPending    InspectionStatus = "Pending"
	InspectionStatusCompleted  InspectionStatus = "Completed"
	InspectionStatusCancelled  InspectionStatus = "Cancelled"
)

func (s InspectionStatus) String() string {
	return string(s)
}

func (s InspectionStatus) IsValid() bool {
	switch s {
	case InspectionStatusScheduled, InspectionStatusInProgress,
		InspectionStatusPending, InspectionStatusCompleted, InspectionStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted.
func (s InspectionStatus) IsTerminal() bool {
	return s == InspectionStatusCompleted || s == InspectionStatusCancelled
}

// transitions is the allowed next-status set per current status.
// Completed and Cancelled are terminal.
var transitions = map[InspectionStatus][]InspectionStatus{
	InspectionStatusScheduled:  {InspectionStatusInProgress, InspectionStatusPending, InspectionStatusCompleted, InspectionStatusCancelled},
	InspectionStatusInProgress: {InspectionStatusCompleted, InspectionStatusPending, InspectionStatusCancelled},
	InspectionStatusPending:    {InspectionStatusInProgress, InspectionStatusCompleted, InspectionStatusCancelled},
	InspectionStatusCompleted:  {},
	InspectionStatusCancelled:  {},
}

// LeadCascade describes the lead status write that follows a transition.
// Keeping the cascade rules in a table makes them independently testable
// and keeps new statuses from silently skipping their side effects.
type LeadCascade struct {
	LeadStatus string
}

// cascades maps a target inspection status to its lead side effect.
var cascades = map[InspectionStatus]LeadCascade{
	InspectionStatusCompleted: {LeadStatus: LeadStatusQuotation},
	InspectionStatusCancelled: {LeadStatus: LeadStatusLead},
}

// CascadeFor returns the lead side effect for a transition into target,
// if one exists.
func CascadeFor(target InspectionStatus) (LeadCascade, bool) {
	c, ok := cascades[target]
	return c, ok
}

// Guard rejection errors surfaced by CheckTransition.
var (
	ErrInspectionLocked     = errors.New("inspection is submitted and read-only")
	ErrInspectionTerminal   = errors.New("inspection status is terminal")
	ErrScheduleLapsed       = errors.New("scheduled date has passed; reschedule or cancel instead")
	ErrCompletionUnconfirmed = errors.New("completion requires explicit confirmation")
)

func (s InspectionStatus) canTransitionTo(target InspectionStatus) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// DimensionRow is one measured area within an inspection.
type DimensionRow struct {
	AreaName        string `json:"area_name"`
	DimensionsUnits string `json:"dimensionsunits"`
	Media           string `json:"media,omitempty"`
}

// SiteImage is one captured photo with optional remarks.
type SiteImage struct {
	Image   string `json:"image"`
	Remarks string `json:"remarks,omitempty"`
}

// SiteInspection is a record of a physical property inspection. Once
// DocStatus is 1 (submitted) the record is locked against any mutation.
type SiteInspection struct {
	Name              string           `json:"name"`
	Lead              string           `json:"lead"`
	InspectionStatus  InspectionStatus `json:"inspection_status"`
	InspectionDate    time.Time        `json:"inspection_date"`
	InspectionTime    string           `json:"inspection_time,omitempty"`
	PropertyType      string           `json:"property_type,omitempty"`
	SiteDimensions    []DimensionRow   `json:"site_dimensions,omitempty"`
	CustomSiteImages  []SiteImage      `json:"custom_site_images,omitempty"`
	MeasurementSketch string           `json:"measurement_sketch,omitempty"`
	InspectionNotes   string           `json:"inspection_notes,omitempty"`
	DocStatus         int              `json:"docstatus"`
	Owner             string           `json:"owner"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Locked reports whether the record rejects mutation: submitted records
// and completed inspections are read-only.
func (i *SiteInspection) Locked() bool {
	return i.DocStatus == 1 || i.InspectionStatus == InspectionStatusCompleted
}

// CheckTransition validates a status change against the transition table
// and its guards. confirmed must be true for a transition to Completed;
// a lapsed Scheduled inspection cannot be started, only rescheduled or
// cancelled.
func (i *SiteInspection) CheckTransition(target InspectionStatus, confirmed bool, now time.Time) error {
	if i.DocStatus == 1 {
		return ErrInspectionLocked
	}
	if i.InspectionStatus.IsTerminal() {
		return ErrInspectionTerminal
	}
	if !target.IsValid() {
		return fmt.Errorf("unknown inspection status %q", target)
	}
	if !i.InspectionStatus.canTransitionTo(target) {
		return fmt.Errorf("cannot transition inspection from %s to %s", i.InspectionStatus, target)
	}
	if i.InspectionStatus == InspectionStatusScheduled && target == InspectionStatusInProgress {
		if timeutil.StartOfDay(i.InspectionDate).Before(timeutil.StartOfDay(now)) {
			return ErrScheduleLapsed
		}
	}
	if target == InspectionStatusCompleted && !confirmed {
		return ErrCompletionUnconfirmed
	}
	return nil
}

// CreateInspectionRequest is the payload for creating an inspection.
type CreateInspectionRequest struct {
	Lead              string         `json:"lead"`
	InspectionDate    string         `json:"inspection_date"`
	InspectionTime    string         `json:"inspection_time"`
	PropertyType      string         `json:"property_type"`
	SiteDimensions    []DimensionRow `json:"site_dimensions"`
	CustomSiteImages  []SiteImage    `json:"custom_site_images"`
	MeasurementSketch string         `json:"measurement_sketch"`
	InspectionNotes   string         `json:"inspection_notes"`
	// TodoID, when set, is the assignment to close once the inspection
	// record exists.
	TodoID string `json:"todo_id,omitempty"`
}

// InspectionPatch carries a partial update. Zero-valued fields are left
// untouched by the repository. Confirmed gates transitions to Completed.
type InspectionPatch struct {
	Lead              string           `json:"lead,omitempty"`
	InspectionStatus  InspectionStatus `json:"inspection_status,omitempty"`
	InspectionDate    string           `json:"inspection_date,omitempty"`
	InspectionTime    string           `json:"inspection_time,omitempty"`
	PropertyType      string           `json:"property_type,omitempty"`
	SiteDimensions    []DimensionRow   `json:"site_dimensions,omitempty"`
	CustomSiteImages  []SiteImage      `json:"custom_site_images,omitempty"`
	MeasurementSketch string           `json:"measurement_sketch,omitempty"`
	InspectionNotes   string           `json:"inspection_notes,omitempty"`
	DocStatus         *int             `json:"docstatus,omitempty"`
	Confirmed         bool             `json:"confirmed,omitempty"`
}
