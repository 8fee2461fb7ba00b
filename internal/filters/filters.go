// Package filters holds the pure list-filtering predicates shared by the
// payment, receipt, todo, and inspection list endpoints. Nothing in here
// touches storage; callers pass collections in and get filtered copies back.
package filters

import (
	"strings"
	"time"

	"field-backend/internal/models"
	"field-backend/internal/timeutil"
)

// PayMode is the filter bucket a free-text mode-of-payment string falls
// into. The raw string is never rewritten; classification exists only for
// filtering.
type PayMode string

const (
	ModeCash   PayMode = "cash"
	ModeCard   PayMode = "card"
	ModeBank   PayMode = "bank"
	ModeCredit PayMode = "credit"
	// ModeAll disables mode filtering.
	ModeAll PayMode = "all"
)

// ClassifyMode buckets a free-text mode of payment. Case-insensitive
// substring match in priority order: cash, then card, then credit; any
// other text counts as a bank transaction. The order matters: a
// "Credit Card" entry is a card payment, not a credit one.
func ClassifyMode(raw string) PayMode {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "cash"):
		return ModeCash
	case strings.Contains(lower, "card"):
		return ModeCard
	case strings.Contains(lower, "credit"):
		return ModeCredit
	default:
		return ModeBank
	}
}

// DateRange is an inclusive calendar-date window. Comparison is date-only
// in GST; time of day never affects membership.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange normalizes the window so From <= To always holds: a
// reversed pair collapses to the single day From names.
func NewDateRange(from, to time.Time) DateRange {
	from = timeutil.StartOfDay(from)
	to = timeutil.StartOfDay(to)
	if from.After(to) {
		to = from
	}
	return DateRange{From: from, To: to}
}

// TodayRange is the default window for payment and receipt lists.
func TodayRange() DateRange {
	today := timeutil.StartOfDay(timeutil.Now())
	return DateRange{From: today, To: today}
}

// Contains reports whether t's calendar date falls inside the window.
func (r DateRange) Contains(t time.Time) bool {
	day := timeutil.StartOfDay(t)
	return !day.Before(r.From) && !day.After(r.To)
}

// AccountFilter is the criteria set for payment/receipt lists. All
// dimensions AND-combine, except that a non-empty Search suppresses the
// date window entirely so historical records stay findable.
type AccountFilter struct {
	Search string
	Mode   PayMode
	Range  DateRange
}

func matchAccount(name, counterparty, bill, purpose, mode string, date time.Time, f AccountFilter) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		hit := strings.Contains(strings.ToLower(name), q) ||
			strings.Contains(strings.ToLower(counterparty), q) ||
			strings.Contains(strings.ToLower(bill), q) ||
			strings.Contains(strings.ToLower(purpose), q)
		if !hit {
			return false
		}
	} else if !f.Range.Contains(date) {
		return false
	}
	if f.Mode != "" && f.Mode != ModeAll && ClassifyMode(mode) != f.Mode {
		return false
	}
	return true
}

// MatchPayment reports whether one payment passes the filter.
func MatchPayment(p *models.Payment, f AccountFilter) bool {
	return matchAccount(p.Name, p.PaidTo, p.BillNumber, p.CustomPurposeOfPayment,
		p.CustomModeOfPayment, p.Date, f)
}

// MatchReceipt reports whether one receipt passes the filter.
func MatchReceipt(r *models.Receipt, f AccountFilter) bool {
	return matchAccount(r.Name, r.PaidFrom, r.BillNumber, r.CustomPurposeOfPayment,
		r.CustomModeOfPayment, r.Date, f)
}

// Payments returns the payments passing the filter, in input order.
func Payments(list []*models.Payment, f AccountFilter) []*models.Payment {
	out := make([]*models.Payment, 0, len(list))
	for _, p := range list {
		if MatchPayment(p, f) {
			out = append(out, p)
		}
	}
	return out
}

// Receipts returns the receipts passing the filter, in input order.
func Receipts(list []*models.Receipt, f AccountFilter) []*models.Receipt {
	out := make([]*models.Receipt, 0, len(list))
	for _, r := range list {
		if MatchReceipt(r, f) {
			out = append(out, r)
		}
	}
	return out
}

// Todos returns the actionable todo list: always Open only, optionally
// narrowed to one priority. "all" (or empty) keeps every priority.
func Todos(list []*models.Todo, priority string) []*models.Todo {
	out := make([]*models.Todo, 0, len(list))
	for _, t := range list {
		if t.Status != models.TodoStatusOpen {
			continue
		}
		if priority != "" && priority != "all" && string(t.Priority) != priority {
			continue
		}
		out = append(out, t)
	}
	return out
}

// InspectionFilter is the criteria set for inspection lists. The
// search-over-date rule matches AccountFilter.
type InspectionFilter struct {
	Status string
	Search string
	Range  DateRange
	// RangeSet distinguishes "no window requested" from the zero window.
	RangeSet bool
}

// Inspections returns the inspections passing the filter, in input order.
func Inspections(list []*models.SiteInspection, f InspectionFilter) []*models.SiteInspection {
	out := make([]*models.SiteInspection, 0, len(list))
	for _, i := range list {
		if f.Status != "" && f.Status != "all" && string(i.InspectionStatus) != f.Status {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			hit := strings.Contains(strings.ToLower(i.Name), q) ||
				strings.Contains(strings.ToLower(i.Lead), q) ||
				strings.Contains(strings.ToLower(i.PropertyType), q)
			if !hit {
				continue
			}
		} else if f.RangeSet && !f.Range.Contains(i.InspectionDate) {
			continue
		}
		out = append(out, i)
	}
	return out
}
