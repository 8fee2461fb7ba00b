package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"field-backend/internal/cache"
	"field-backend/internal/metrics"
	"field-backend/internal/models"
	"field-backend/internal/timeutil"
)

// TodoStore, LeadStore, and InspectionStore are the persistence surfaces
// the service needs. The pgx repositories satisfy them; tests substitute
// in-memory fakes so every transition and cascade rule can be exercised
// without a database.
type TodoStore interface {
	Create(ctx context.Context, todo *models.Todo) error
	ListByAllocatedTo(ctx context.Context, email string) ([]*models.Todo, error)
	GetByName(ctx context.Context, name string) (*models.Todo, error)
	UpdateStatus(ctx context.Context, name string, status models.TodoStatus) error
}

type LeadStore interface {
	GetByName(ctx context.Context, name string) (*models.Lead, error)
	UpdateStatus(ctx context.Context, name, status string) error
}

type InspectionStore interface {
	Create(ctx context.Context, i *models.SiteInspection) error
	GetByName(ctx context.Context, name string) (*models.SiteInspection, error)
	ListByField(ctx context.Context, field, value string) ([]*models.SiteInspection, error)
	Update(ctx context.Context, name string, patch *models.InspectionPatch) error
}

// Notifier pushes entity-change events to connected clients so list views
// refresh after mutations.
type Notifier interface {
	BroadcastChange(entity, name, status string)
}

// InspectionService owns the todo and site-inspection lifecycle: fetching
// assignments with their lead snapshots, creating inspections off todos,
// and moving inspections through the status machine with its lead
// cascades.
type InspectionService struct {
	Todos       TodoStore
	Leads       LeadStore
	Inspections InspectionStore
	notifier    Notifier
}

func NewInspectionService(todos TodoStore, leads LeadStore, inspections InspectionStore) *InspectionService {
	return &InspectionService{
		Todos:       todos,
		Leads:       leads,
		Inspections: inspections,
	}
}

// SetNotifier wires the live-update hub. Optional.
func (s *InspectionService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *InspectionService) broadcast(entity, name, status string) {
	if s.notifier != nil {
		s.notifier.BroadcastChange(entity, name, status)
	}
}

// FetchTodos returns the todos allocated to a user, each Lead-referenced
// todo hydrated with a snapshot of its lead. A failed lead fetch keeps the
// todo with a nil snapshot; one bad record never empties the list.
func (s *InspectionService) FetchTodos(ctx context.Context, userEmail string) ([]*models.Todo, error) {
	todos, err := s.Todos.ListByAllocatedTo(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch todos for %s: %w", userEmail, err)
	}

	for _, todo := range todos {
		if todo.ReferenceType != "Lead" || todo.ReferenceName == "" {
			continue
		}
		lead, err := s.fetchLead(ctx, todo.ReferenceName)
		if err != nil {
			log.Printf("[Hydrate] lead %s for todo %s: %v", todo.ReferenceName, todo.Name, err)
			continue
		}
		todo.InquiryData = lead
	}
	return todos, nil
}

// fetchLead reads through the redis snapshot cache; misses fall back to
// the store and populate the cache.
func (s *InspectionService) fetchLead(ctx context.Context, name string) (*models.Lead, error) {
	if data, ok := cache.GetCachedLead(ctx, name); ok {
		lead := &models.Lead{}
		if err := json.Unmarshal(data, lead); err == nil {
			return lead, nil
		}
		cache.InvalidateLead(ctx, name)
	}

	lead, err := s.Leads.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(lead); err == nil {
		cache.CacheLead(ctx, name, data)
	}
	return lead, nil
}

// CreateTodo registers a new assignment from the sales side. Status
// always starts Open; priority defaults to Medium and the date to today
// when omitted.
func (s *InspectionService) CreateTodo(ctx context.Context, req *models.CreateTodoRequest) (*models.Todo, error) {
	if req.AllocatedTo == "" {
		return nil, errors.New("allocated_to is required")
	}
	if req.ReferenceName != "" && req.ReferenceType == "" {
		return nil, errors.New("reference_type is required when reference_name is set")
	}

	priority := req.Priority
	if priority == "" {
		priority = models.TodoPriorityMedium
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("invalid todo priority %q", priority)
	}

	date := timeutil.StartOfDay(timeutil.Now())
	if req.Date != "" {
		parsed, err := timeutil.ParseInGST(timeutil.DateLayout, req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid todo date %q: %w", req.Date, err)
		}
		date = parsed
	}

	todo := &models.Todo{
		Status:        models.TodoStatusOpen,
		Priority:      priority,
		Date:          date,
		Description:   req.Description,
		ReferenceType: req.ReferenceType,
		ReferenceName: req.ReferenceName,
		AllocatedTo:   req.AllocatedTo,
	}
	if err := s.Todos.Create(ctx, todo); err != nil {
		return nil, err
	}

	s.broadcast("todo", todo.Name, todo.Status.String())
	return todo, nil
}

// UpdateTodoStatus persists a todo status change. Write failures
// propagate to the caller. Cancelling a lead-referenced todo resets the
// lead back to "Lead" so the sales side can reassign it; that cascade is
// best-effort like the inspection one.
func (s *InspectionService) UpdateTodoStatus(ctx context.Context, todoID string, status models.TodoStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid todo status %q", status)
	}

	var todo *models.Todo
	if status == models.TodoStatusCancelled {
		var err error
		todo, err = s.Todos.GetByName(ctx, todoID)
		if err != nil {
			return fmt.Errorf("failed to load todo %s: %w", todoID, err)
		}
	}

	if err := s.Todos.UpdateStatus(ctx, todoID, status); err != nil {
		return err
	}

	if todo != nil && todo.ReferenceType == "Lead" && todo.ReferenceName != "" {
		if err := s.UpdateLeadStatus(ctx, todo.ReferenceName, models.LeadStatusLead); err != nil {
			metrics.LeadCascadesTotal.WithLabelValues(models.LeadStatusLead, "failed").Inc()
			log.Printf("[Cascade] todo %s cancelled but lead %s -> %s failed: %v",
				todoID, todo.ReferenceName, models.LeadStatusLead, err)
		} else {
			metrics.LeadCascadesTotal.WithLabelValues(models.LeadStatusLead, "applied").Inc()
		}
	}

	s.broadcast("todo", todoID, status.String())
	return nil
}

// CreateInspection persists a new inspection and returns its hydrated
// record. When the request names a todo, that todo is closed best-effort:
// the inspection already exists, so a failed close is logged and the
// creation still succeeds.
func (s *InspectionService) CreateInspection(ctx context.Context, req *models.CreateInspectionRequest, owner string) (*models.SiteInspection, error) {
	if req.Lead == "" {
		return nil, errors.New("lead is required")
	}
	if req.InspectionDate == "" {
		return nil, errors.New("inspection date is required")
	}
	date, err := timeutil.ParseInGST(timeutil.DateLayout, req.InspectionDate)
	if err != nil {
		return nil, fmt.Errorf("invalid inspection date %q: %w", req.InspectionDate, err)
	}

	inspection := &models.SiteInspection{
		Lead:              req.Lead,
		InspectionStatus:  models.InspectionStatusScheduled,
		InspectionDate:    date,
		InspectionTime:    req.InspectionTime,
		PropertyType:      req.PropertyType,
		SiteDimensions:    req.SiteDimensions,
		CustomSiteImages:  req.CustomSiteImages,
		MeasurementSketch: req.MeasurementSketch,
		InspectionNotes:   req.InspectionNotes,
		Owner:             owner,
	}
	if err := s.Inspections.Create(ctx, inspection); err != nil {
		return nil, err
	}

	detail, err := s.Inspections.GetByName(ctx, inspection.Name)
	if err != nil {
		return nil, fmt.Errorf("inspection %s created but detail fetch failed: %w", inspection.Name, err)
	}

	if req.TodoID != "" {
		if err := s.Todos.UpdateStatus(ctx, req.TodoID, models.TodoStatusClosed); err != nil {
			log.Printf("[Inspection] created %s but closing todo %s failed: %v", detail.Name, req.TodoID, err)
		} else {
			s.broadcast("todo", req.TodoID, models.TodoStatusClosed.String())
		}
	}

	s.broadcast("inspection", detail.Name, detail.InspectionStatus.String())
	return detail, nil
}

// FetchInspectionDetails returns one inspection's full record.
func (s *InspectionService) FetchInspectionDetails(ctx context.Context, name string) (*models.SiteInspection, error) {
	return s.Inspections.GetByName(ctx, name)
}

// FetchAllInspectionsByField returns every inspection matching a field
// equality predicate. The list query already selects full rows, so there
// is no per-record detail round trip to degrade on.
func (s *InspectionService) FetchAllInspectionsByField(ctx context.Context, field, value string) ([]*models.SiteInspection, error) {
	return s.Inspections.ListByField(ctx, field, value)
}

// FetchFirstInspectionByField returns the first match in store order, or
// nil when nothing matches.
func (s *InspectionService) FetchFirstInspectionByField(ctx context.Context, field, value string) (*models.SiteInspection, error) {
	list, err := s.Inspections.ListByField(ctx, field, value)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return s.Inspections.GetByName(ctx, list[0].Name)
}

// UpdateInspectionByID applies a partial update. Status changes run
// through the transition machine first; on Completed or Cancelled the
// linked lead is cascaded (patch.lead wins over the stored reference).
// A failed cascade is logged, not propagated: the inspection write
// already succeeded and the caller sees the primary outcome. The
// refreshed record is returned.
func (s *InspectionService) UpdateInspectionByID(ctx context.Context, name string, patch *models.InspectionPatch) (*models.SiteInspection, error) {
	current, err := s.Inspections.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load inspection %s: %w", name, err)
	}

	if patch.InspectionStatus != "" {
		if err := current.CheckTransition(patch.InspectionStatus, patch.Confirmed, timeutil.Now()); err != nil {
			metrics.InspectionTransitionsTotal.WithLabelValues(patch.InspectionStatus.String(), "rejected").Inc()
			return nil, err
		}
	} else if current.Locked() {
		return nil, models.ErrInspectionLocked
	}

	if err := s.Inspections.Update(ctx, name, patch); err != nil {
		return nil, err
	}

	if patch.InspectionStatus != "" {
		metrics.InspectionTransitionsTotal.WithLabelValues(patch.InspectionStatus.String(), "applied").Inc()

		if cascade, ok := models.CascadeFor(patch.InspectionStatus); ok {
			leadRef := patch.Lead
			if leadRef == "" {
				leadRef = current.Lead
			}
			if err := s.UpdateLeadStatus(ctx, leadRef, cascade.LeadStatus); err != nil {
				metrics.LeadCascadesTotal.WithLabelValues(cascade.LeadStatus, "failed").Inc()
				log.Printf("[Cascade] inspection %s updated but lead %s -> %s failed: %v",
					name, leadRef, cascade.LeadStatus, err)
			} else {
				metrics.LeadCascadesTotal.WithLabelValues(cascade.LeadStatus, "applied").Inc()
			}
		}
	}

	refreshed, err := s.Inspections.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("inspection %s updated but refresh failed: %w", name, err)
	}

	s.broadcast("inspection", refreshed.Name, refreshed.InspectionStatus.String())
	return refreshed, nil
}

// UpdateLeadStatus is the thin lead write used by the cascade rules and
// exposed for explicit calls. Errors propagate; callers decide whether to
// swallow them.
func (s *InspectionService) UpdateLeadStatus(ctx context.Context, leadRef, status string) error {
	if leadRef == "" {
		return errors.New("lead reference is required")
	}
	if err := s.Leads.UpdateStatus(ctx, leadRef, status); err != nil {
		return err
	}
	cache.InvalidateLead(ctx, leadRef)
	s.broadcast("lead", leadRef, status)
	return nil
}
