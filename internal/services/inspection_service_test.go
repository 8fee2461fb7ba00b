package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"field-backend/internal/models"
	"field-backend/internal/timeutil"
)

type fakeTodoStore struct {
	todos     map[string]*models.Todo
	order     []string
	seq       int
	updateErr map[string]error
}

func newFakeTodoStore(todos ...*models.Todo) *fakeTodoStore {
	s := &fakeTodoStore{todos: map[string]*models.Todo{}, updateErr: map[string]error{}}
	for _, t := range todos {
		s.todos[t.Name] = t
		s.order = append(s.order, t.Name)
	}
	return s
}

func (s *fakeTodoStore) Create(_ context.Context, todo *models.Todo) error {
	s.seq++
	todo.Name = fmt.Sprintf("TD-%06d", s.seq)
	s.todos[todo.Name] = todo
	s.order = append(s.order, todo.Name)
	return nil
}

func (s *fakeTodoStore) ListByAllocatedTo(_ context.Context, email string) ([]*models.Todo, error) {
	var out []*models.Todo
	for _, name := range s.order {
		if s.todos[name].AllocatedTo == email {
			out = append(out, s.todos[name])
		}
	}
	return out, nil
}

func (s *fakeTodoStore) GetByName(_ context.Context, name string) (*models.Todo, error) {
	t, ok := s.todos[name]
	if !ok {
		return nil, fmt.Errorf("todo %s not found", name)
	}
	return t, nil
}

func (s *fakeTodoStore) UpdateStatus(_ context.Context, name string, status models.TodoStatus) error {
	if err := s.updateErr[name]; err != nil {
		return err
	}
	t, ok := s.todos[name]
	if !ok {
		return fmt.Errorf("todo %s not found", name)
	}
	t.Status = status
	return nil
}

type leadStatusCall struct {
	name, status string
}

type fakeLeadStore struct {
	leads       map[string]*models.Lead
	failGet     map[string]bool
	updateErr   error
	statusCalls []leadStatusCall
}

func newFakeLeadStore(leads ...*models.Lead) *fakeLeadStore {
	s := &fakeLeadStore{leads: map[string]*models.Lead{}, failGet: map[string]bool{}}
	for _, l := range leads {
		s.leads[l.Name] = l
	}
	return s
}

func (s *fakeLeadStore) GetByName(_ context.Context, name string) (*models.Lead, error) {
	if s.failGet[name] {
		return nil, errors.New("lead fetch failed")
	}
	l, ok := s.leads[name]
	if !ok {
		return nil, fmt.Errorf("lead %s not found", name)
	}
	return l, nil
}

func (s *fakeLeadStore) UpdateStatus(_ context.Context, name, status string) error {
	s.statusCalls = append(s.statusCalls, leadStatusCall{name, status})
	if s.updateErr != nil {
		return s.updateErr
	}
	if l, ok := s.leads[name]; ok {
		l.Status = status
	}
	return nil
}

type fakeInspectionStore struct {
	records   map[string]*models.SiteInspection
	order     []string
	seq       int
	createErr error
	updateErr error
}

func newFakeInspectionStore(records ...*models.SiteInspection) *fakeInspectionStore {
	s := &fakeInspectionStore{records: map[string]*models.SiteInspection{}}
	for _, r := range records {
		s.records[r.Name] = r
		s.order = append(s.order, r.Name)
	}
	return s
}

func (s *fakeInspectionStore) Create(_ context.Context, i *models.SiteInspection) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.seq++
	i.Name = fmt.Sprintf("SI-%06d", s.seq)
	s.records[i.Name] = i
	s.order = append(s.order, i.Name)
	return nil
}

func (s *fakeInspectionStore) GetByName(_ context.Context, name string) (*models.SiteInspection, error) {
	r, ok := s.records[name]
	if !ok {
		return nil, fmt.Errorf("inspection %s not found", name)
	}
	clone := *r
	return &clone, nil
}

func (s *fakeInspectionStore) ListByField(_ context.Context, field, value string) ([]*models.SiteInspection, error) {
	var out []*models.SiteInspection
	for _, name := range s.order {
		r := s.records[name]
		var got string
		switch field {
		case "owner":
			got = r.Owner
		case "lead":
			got = r.Lead
		case "inspection_status":
			got = string(r.InspectionStatus)
		default:
			return nil, fmt.Errorf("unsupported filter field %q", field)
		}
		if got == value {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeInspectionStore) Update(_ context.Context, name string, patch *models.InspectionPatch) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	r, ok := s.records[name]
	if !ok {
		return fmt.Errorf("inspection %s not found", name)
	}
	if patch.Lead != "" {
		r.Lead = patch.Lead
	}
	if patch.InspectionStatus != "" {
		r.InspectionStatus = patch.InspectionStatus
	}
	if patch.InspectionNotes != "" {
		r.InspectionNotes = patch.InspectionNotes
	}
	if patch.DocStatus != nil {
		r.DocStatus = *patch.DocStatus
	}
	return nil
}

func today() time.Time {
	return timeutil.StartOfDay(timeutil.Now())
}

func TestFetchTodos(t *testing.T) {
	ctx := context.Background()

	t.Run("lead-referenced todos get a snapshot", func(t *testing.T) {
		todos := newFakeTodoStore(
			&models.Todo{Name: "TD-000001", Status: models.TodoStatusOpen, ReferenceType: "Lead",
				ReferenceName: "LEAD-1", AllocatedTo: "sara@example.com"},
		)
		leads := newFakeLeadStore(&models.Lead{Name: "LEAD-1", LeadName: "Marina Villas", Status: "Lead"})
		svc := NewInspectionService(todos, leads, newFakeInspectionStore())

		got, err := svc.FetchTodos(ctx, "sara@example.com")
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.NotNil(t, got[0].InquiryData)
		assert.Equal(t, "Marina Villas", got[0].InquiryData.LeadName)
	})

	t.Run("non-lead references are never hydrated", func(t *testing.T) {
		todos := newFakeTodoStore(
			&models.Todo{Name: "TD-000002", Status: models.TodoStatusOpen, ReferenceType: "Task",
				ReferenceName: "TASK-9", AllocatedTo: "sara@example.com"},
		)
		svc := NewInspectionService(todos, newFakeLeadStore(), newFakeInspectionStore())

		got, err := svc.FetchTodos(ctx, "sara@example.com")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Nil(t, got[0].InquiryData)
	})

	t.Run("one failed hydration keeps the todo and the rest of the list", func(t *testing.T) {
		todos := newFakeTodoStore(
			&models.Todo{Name: "TD-000003", Status: models.TodoStatusOpen, ReferenceType: "Lead",
				ReferenceName: "LEAD-BAD", AllocatedTo: "sara@example.com"},
			&models.Todo{Name: "TD-000004", Status: models.TodoStatusOpen, ReferenceType: "Lead",
				ReferenceName: "LEAD-2", AllocatedTo: "sara@example.com"},
		)
		leads := newFakeLeadStore(&models.Lead{Name: "LEAD-2", LeadName: "Palm Office", Status: "Lead"})
		leads.failGet["LEAD-BAD"] = true
		svc := NewInspectionService(todos, leads, newFakeInspectionStore())

		got, err := svc.FetchTodos(ctx, "sara@example.com")
		require.NoError(t, err)
		require.Len(t, got, 2, "hydration failure must not change list length")
		assert.Nil(t, got[0].InquiryData)
		require.NotNil(t, got[1].InquiryData)
		assert.Equal(t, "Palm Office", got[1].InquiryData.LeadName)
	})
}

func TestCreateTodo(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an open todo with defaults", func(t *testing.T) {
		todos := newFakeTodoStore()
		svc := NewInspectionService(todos, newFakeLeadStore(), newFakeInspectionStore())

		got, err := svc.CreateTodo(ctx, &models.CreateTodoRequest{
			ReferenceType: "Lead",
			ReferenceName: "LEAD-1",
			AllocatedTo:   "sara@example.com",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, got.Name)
		assert.Equal(t, models.TodoStatusOpen, got.Status)
		assert.Equal(t, models.TodoPriorityMedium, got.Priority)
		assert.True(t, timeutil.SameDate(got.Date, timeutil.Now()))

		listed, err := svc.FetchTodos(ctx, "sara@example.com")
		require.NoError(t, err)
		require.Len(t, listed, 1)
	})

	t.Run("honors explicit date and priority", func(t *testing.T) {
		todos := newFakeTodoStore()
		svc := NewInspectionService(todos, newFakeLeadStore(), newFakeInspectionStore())

		got, err := svc.CreateTodo(ctx, &models.CreateTodoRequest{
			Priority:    models.TodoPriorityHigh,
			Date:        "2026-09-15",
			AllocatedTo: "sara@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, models.TodoPriorityHigh, got.Priority)
		assert.Equal(t, "2026-09-15", got.Date.Format(timeutil.DateLayout))
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		svc := NewInspectionService(newFakeTodoStore(), newFakeLeadStore(), newFakeInspectionStore())

		_, err := svc.CreateTodo(ctx, &models.CreateTodoRequest{ReferenceName: "LEAD-1", AllocatedTo: "sara@example.com"})
		assert.Error(t, err)

		_, err = svc.CreateTodo(ctx, &models.CreateTodoRequest{AllocatedTo: ""})
		assert.Error(t, err)

		_, err = svc.CreateTodo(ctx, &models.CreateTodoRequest{Priority: "Urgent", AllocatedTo: "sara@example.com"})
		assert.Error(t, err)

		_, err = svc.CreateTodo(ctx, &models.CreateTodoRequest{Date: "15/09/2026", AllocatedTo: "sara@example.com"})
		assert.Error(t, err)
	})
}

func TestUpdateTodoStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown status", func(t *testing.T) {
		todos := newFakeTodoStore(&models.Todo{Name: "TD-000001", Status: models.TodoStatusOpen})
		svc := NewInspectionService(todos, newFakeLeadStore(), newFakeInspectionStore())
		assert.Error(t, svc.UpdateTodoStatus(ctx, "TD-000001", models.TodoStatus("Done")))
	})

	t.Run("persists valid status", func(t *testing.T) {
		todos := newFakeTodoStore(&models.Todo{Name: "TD-000001", Status: models.TodoStatusOpen})
		svc := NewInspectionService(todos, newFakeLeadStore(), newFakeInspectionStore())
		require.NoError(t, svc.UpdateTodoStatus(ctx, "TD-000001", models.TodoStatusClosed))
		assert.Equal(t, models.TodoStatusClosed, todos.todos["TD-000001"].Status)
	})

	t.Run("write failure propagates", func(t *testing.T) {
		todos := newFakeTodoStore(&models.Todo{Name: "TD-000001", Status: models.TodoStatusOpen})
		todos.updateErr["TD-000001"] = errors.New("connection reset")
		svc := NewInspectionService(todos, newFakeLeadStore(), newFakeInspectionStore())
		assert.Error(t, svc.UpdateTodoStatus(ctx, "TD-000001", models.TodoStatusClosed))
	})

	t.Run("cancelling resets the referenced lead", func(t *testing.T) {
		todos := newFakeTodoStore(&models.Todo{Name: "TD-000001", Status: models.TodoStatusOpen,
			ReferenceType: "Lead", ReferenceName: "LEAD-1"})
		leads := newFakeLeadStore(&models.Lead{Name: "LEAD-1", Status: models.LeadStatusQuotation})
		svc := NewInspectionService(todos, leads, newFakeInspectionStore())

		require.NoError(t, svc.UpdateTodoStatus(ctx, "TD-000001", models.TodoStatusCancelled))
		assert.Equal(t, models.TodoStatusCancelled, todos.todos["TD-000001"].Status)
		require.Len(t, leads.statusCalls, 1)
		assert.Equal(t, leadStatusCall{"LEAD-1", models.LeadStatusLead}, leads.statusCalls[0])
	})

	t.Run("cancelling a non-lead todo touches no lead", func(t *testing.T) {
		todos := newFakeTodoStore(&models.Todo{Name: "TD-000001", Status: models.TodoStatusOpen,
			ReferenceType: "Task", ReferenceName: "TASK-1"})
		leads := newFakeLeadStore()
		svc := NewInspectionService(todos, leads, newFakeInspectionStore())

		require.NoError(t, svc.UpdateTodoStatus(ctx, "TD-000001", models.TodoStatusCancelled))
		assert.Empty(t, leads.statusCalls)
	})

	t.Run("closing never cascades", func(t *testing.T) {
		todos := newFakeTodoStore(&models.Todo{Name: "TD-000001", Status: models.TodoStatusOpen,
			ReferenceType: "Lead", ReferenceName: "LEAD-1"})
		leads := newFakeLeadStore(&models.Lead{Name: "LEAD-1", Status: models.LeadStatusQuotation})
		svc := NewInspectionService(todos, leads, newFakeInspectionStore())

		require.NoError(t, svc.UpdateTodoStatus(ctx, "TD-000001", models.TodoStatusClosed))
		assert.Empty(t, leads.statusCalls)
	})

	t.Run("cascade failure does not fail the cancellation", func(t *testing.T) {
		todos := newFakeTodoStore(&models.Todo{Name: "TD-000001", Status: models.TodoStatusOpen,
			ReferenceType: "Lead", ReferenceName: "LEAD-1"})
		leads := newFakeLeadStore(&models.Lead{Name: "LEAD-1", Status: models.LeadStatusQuotation})
		leads.updateErr = errors.New("connection reset")
		svc := NewInspectionService(todos, leads, newFakeInspectionStore())

		require.NoError(t, svc.UpdateTodoStatus(ctx, "TD-000001", models.TodoStatusCancelled))
		assert.Equal(t, models.TodoStatusCancelled, todos.todos["TD-000001"].Status)
	})
}

func TestCreateInspection(t *testing.T) {
	ctx := context.Background()
	dateStr := today().Format(timeutil.DateLayout)

	t.Run("creates and closes the originating todo", func(t *testing.T) {
		todos := newFakeTodoStore(&models.Todo{Name: "T1", Status: models.TodoStatusOpen,
			ReferenceType: "Lead", ReferenceName: "LEAD-1", AllocatedTo: "sara@example.com"})
		inspections := newFakeInspectionStore()
		svc := NewInspectionService(todos, newFakeLeadStore(), inspections)

		got, err := svc.CreateInspection(ctx, &models.CreateInspectionRequest{
			Lead:           "LEAD-1",
			InspectionDate: dateStr,
			TodoID:         "T1",
		}, "sara@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, got.Name)
		assert.Equal(t, models.InspectionStatusScheduled, got.InspectionStatus)
		assert.Equal(t, models.TodoStatusClosed, todos.todos["T1"].Status)

		listed, err := svc.FetchTodos(ctx, "sara@example.com")
		require.NoError(t, err)
		assert.Equal(t, models.TodoStatusClosed, listed[0].Status)
	})

	t.Run("todo close failure does not fail the creation", func(t *testing.T) {
		todos := newFakeTodoStore(&models.Todo{Name: "T2", Status: models.TodoStatusOpen})
		todos.updateErr["T2"] = errors.New("connection reset")
		svc := NewInspectionService(todos, newFakeLeadStore(), newFakeInspectionStore())

		got, err := svc.CreateInspection(ctx, &models.CreateInspectionRequest{
			Lead:           "LEAD-1",
			InspectionDate: dateStr,
			TodoID:         "T2",
		}, "sara@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, got.Name)
		assert.Equal(t, models.TodoStatusOpen, todos.todos["T2"].Status)
	})

	t.Run("validation happens before any write", func(t *testing.T) {
		inspections := newFakeInspectionStore()
		svc := NewInspectionService(newFakeTodoStore(), newFakeLeadStore(), inspections)

		_, err := svc.CreateInspection(ctx, &models.CreateInspectionRequest{InspectionDate: dateStr}, "x")
		assert.Error(t, err)
		_, err = svc.CreateInspection(ctx, &models.CreateInspectionRequest{Lead: "LEAD-1"}, "x")
		assert.Error(t, err)
		_, err = svc.CreateInspection(ctx, &models.CreateInspectionRequest{Lead: "LEAD-1", InspectionDate: "10/03/2026"}, "x")
		assert.Error(t, err)
		assert.Empty(t, inspections.records)
	})
}

func TestUpdateInspectionByID(t *testing.T) {
	ctx := context.Background()

	newStore := func(status models.InspectionStatus, docstatus int, date time.Time) (*fakeInspectionStore, *fakeLeadStore) {
		inspections := newFakeInspectionStore(&models.SiteInspection{
			Name:             "I1",
			Lead:             "LEAD-1",
			InspectionStatus: status,
			InspectionDate:   date,
			DocStatus:        docstatus,
		})
		leads := newFakeLeadStore(&models.Lead{Name: "LEAD-1", Status: "Lead"},
			&models.Lead{Name: "LEAD-OTHER", Status: "Lead"})
		return inspections, leads
	}

	t.Run("completion cascades the lead to Quotation exactly once", func(t *testing.T) {
		inspections, leads := newStore(models.InspectionStatusInProgress, 0, today())
		svc := NewInspectionService(newFakeTodoStore(), leads, inspections)

		got, err := svc.UpdateInspectionByID(ctx, "I1", &models.InspectionPatch{
			InspectionStatus: models.InspectionStatusCompleted,
			Confirmed:        true,
		})
		require.NoError(t, err)
		assert.Equal(t, models.InspectionStatusCompleted, got.InspectionStatus)
		require.Len(t, leads.statusCalls, 1)
		assert.Equal(t, leadStatusCall{"LEAD-1", models.LeadStatusQuotation}, leads.statusCalls[0])
	})

	t.Run("patch lead wins over the stored reference", func(t *testing.T) {
		inspections, leads := newStore(models.InspectionStatusInProgress, 0, today())
		svc := NewInspectionService(newFakeTodoStore(), leads, inspections)

		_, err := svc.UpdateInspectionByID(ctx, "I1", &models.InspectionPatch{
			Lead:             "LEAD-OTHER",
			InspectionStatus: models.InspectionStatusCompleted,
			Confirmed:        true,
		})
		require.NoError(t, err)
		require.Len(t, leads.statusCalls, 1)
		assert.Equal(t, "LEAD-OTHER", leads.statusCalls[0].name)
	})

	t.Run("cancellation cascades the lead back to Lead and refreshes", func(t *testing.T) {
		inspections, leads := newStore(models.InspectionStatusScheduled, 0, today())
		svc := NewInspectionService(newFakeTodoStore(), leads, inspections)

		got, err := svc.UpdateInspectionByID(ctx, "I1", &models.InspectionPatch{
			InspectionStatus: models.InspectionStatusCancelled,
		})
		require.NoError(t, err)
		assert.Equal(t, models.InspectionStatusCancelled, got.InspectionStatus)
		require.Len(t, leads.statusCalls, 1)
		assert.Equal(t, leadStatusCall{"LEAD-1", models.LeadStatusLead}, leads.statusCalls[0])
	})

	t.Run("cascade failure does not fail the primary write", func(t *testing.T) {
		inspections, leads := newStore(models.InspectionStatusInProgress, 0, today())
		leads.updateErr = errors.New("lead service down")
		svc := NewInspectionService(newFakeTodoStore(), leads, inspections)

		got, err := svc.UpdateInspectionByID(ctx, "I1", &models.InspectionPatch{
			InspectionStatus: models.InspectionStatusCompleted,
			Confirmed:        true,
		})
		require.NoError(t, err)
		assert.Equal(t, models.InspectionStatusCompleted, got.InspectionStatus)
	})

	t.Run("blocked on submitted record", func(t *testing.T) {
		inspections, leads := newStore(models.InspectionStatusScheduled, 1, today())
		svc := NewInspectionService(newFakeTodoStore(), leads, inspections)

		_, err := svc.UpdateInspectionByID(ctx, "I1", &models.InspectionPatch{
			InspectionStatus: models.InspectionStatusInProgress,
		})
		assert.ErrorIs(t, err, models.ErrInspectionLocked)
		assert.Equal(t, models.InspectionStatusScheduled, inspections.records["I1"].InspectionStatus)
		assert.Empty(t, leads.statusCalls)
	})

	t.Run("blocked on terminal status", func(t *testing.T) {
		inspections, leads := newStore(models.InspectionStatusCompleted, 0, today())
		svc := NewInspectionService(newFakeTodoStore(), leads, inspections)

		_, err := svc.UpdateInspectionByID(ctx, "I1", &models.InspectionPatch{
			InspectionStatus: models.InspectionStatusInProgress,
		})
		assert.ErrorIs(t, err, models.ErrInspectionTerminal)
	})

	t.Run("lapsed schedule cannot be started", func(t *testing.T) {
		inspections, leads := newStore(models.InspectionStatusScheduled, 0, today().AddDate(0, 0, -2))
		svc := NewInspectionService(newFakeTodoStore(), leads, inspections)

		_, err := svc.UpdateInspectionByID(ctx, "I1", &models.InspectionPatch{
			InspectionStatus: models.InspectionStatusInProgress,
		})
		assert.ErrorIs(t, err, models.ErrScheduleLapsed)
		assert.Equal(t, models.InspectionStatusScheduled, inspections.records["I1"].InspectionStatus)
	})

	t.Run("completion without confirmation is rejected", func(t *testing.T) {
		inspections, leads := newStore(models.InspectionStatusInProgress, 0, today())
		svc := NewInspectionService(newFakeTodoStore(), leads, inspections)

		_, err := svc.UpdateInspectionByID(ctx, "I1", &models.InspectionPatch{
			InspectionStatus: models.InspectionStatusCompleted,
		})
		assert.ErrorIs(t, err, models.ErrCompletionUnconfirmed)
		assert.Empty(t, leads.statusCalls)
	})

	t.Run("non-status edits on a locked record are rejected", func(t *testing.T) {
		inspections, leads := newStore(models.InspectionStatusCompleted, 0, today())
		svc := NewInspectionService(newFakeTodoStore(), leads, inspections)

		_, err := svc.UpdateInspectionByID(ctx, "I1", &models.InspectionPatch{InspectionNotes: "late edit"})
		assert.ErrorIs(t, err, models.ErrInspectionLocked)
	})

	t.Run("non-status edits carry no cascade", func(t *testing.T) {
		inspections, leads := newStore(models.InspectionStatusScheduled, 0, today())
		svc := NewInspectionService(newFakeTodoStore(), leads, inspections)

		got, err := svc.UpdateInspectionByID(ctx, "I1", &models.InspectionPatch{InspectionNotes: "access via rear gate"})
		require.NoError(t, err)
		assert.Equal(t, "access via rear gate", got.InspectionNotes)
		assert.Empty(t, leads.statusCalls)
	})
}

func TestFetchFirstInspectionByField(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the first match in store order", func(t *testing.T) {
		inspections := newFakeInspectionStore(
			&models.SiteInspection{Name: "I1", Lead: "LEAD-1", Owner: "sara@example.com", InspectionStatus: models.InspectionStatusScheduled},
			&models.SiteInspection{Name: "I2", Lead: "LEAD-1", Owner: "sara@example.com", InspectionStatus: models.InspectionStatusPending},
		)
		svc := NewInspectionService(newFakeTodoStore(), newFakeLeadStore(), inspections)

		got, err := svc.FetchFirstInspectionByField(ctx, "lead", "LEAD-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "I1", got.Name)
	})

	t.Run("no match yields nil without error", func(t *testing.T) {
		svc := NewInspectionService(newFakeTodoStore(), newFakeLeadStore(), newFakeInspectionStore())

		got, err := svc.FetchFirstInspectionByField(ctx, "lead", "LEAD-404")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
