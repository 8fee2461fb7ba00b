package models

import "time"

type TodoStatus string

const (
	TodoStatusOpen      TodoStatus = "Open"
	TodoStatusClosed    TodoStatus = "Closed"
	TodoStatusCancelled TodoStatus = "Cancelled"
)

func (s TodoStatus) String() string {
	return string(s)
}

func (s TodoStatus) IsValid() bool {
	switch s {
	case TodoStatusOpen, TodoStatusClosed, TodoStatusCancelled:
		return true
	}
	return false
}

type TodoPriority string

const (
	TodoPriorityLow    TodoPriority = "Low"
	TodoPriorityMedium TodoPriority = "Medium"
	TodoPriorityHigh   TodoPriority = "High"
)

func (p TodoPriority) IsValid() bool {
	switch p {
	case TodoPriorityLow, TodoPriorityMedium, TodoPriorityHigh:
		return true
	}
	return false
}

// Todo is a work assignment linking an allocated user to a reference
// entity (typically a Lead) requiring inspection action. Todos are
// created by the sales workflow and only transition status here.
type Todo struct {
	Name          string       `json:"name"`
	Status        TodoStatus   `json:"status"`
	Priority      TodoPriority `json:"priority"`
	Date          time.Time    `json:"date"`
	Description   string       `json:"description"`
	ReferenceType string       `json:"reference_type"`
	ReferenceName string       `json:"reference_name"`
	AllocatedTo   string       `json:"allocated_to"`
	// InquiryData is a denormalized snapshot of the referenced Lead,
	// attached during hydration. Nil when the reference is not a Lead
	// or when the lead fetch failed; the todo itself is always kept.
	InquiryData *Lead     `json:"inquiry_data,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateTodoRequest struct {
	Priority      TodoPriority `json:"priority"`
	Date          string       `json:"date"`
	Description   string       `json:"description"`
	ReferenceType string       `json:"reference_type"`
	ReferenceName string       `json:"reference_name"`
	AllocatedTo   string       `json:"allocated_to"`
}

type UpdateTodoStatusRequest struct {
	Status TodoStatus `json:"status"`
}
