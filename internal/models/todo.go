package models

import (
	"time"

	"gorm.io/gorm"
)

type TodoStatus string

const (
	TodoStatusTodo       TodoStatus = "todo"
	TodoStatusInProgress TodoStatus = "in_progress"
	TodoStatusDone       TodoStatus = "done"
)

type TodoPriority string

const (
	TodoPriorityLow    TodoPriority = "low"
	TodoPriorityMedium TodoPriority = "medium"
	TodoPriorityHigh   TodoPriority = "high"
)

func ValidTodoStatus(s TodoStatus) bool {
	switch s {
	case TodoStatusTodo, TodoStatusInProgress, TodoStatusDone:
		return true
	}
	return false
}

func ValidTodoPriority(p TodoPriority) bool {
	switch p {
	case TodoPriorityLow, TodoPriorityMedium, TodoPriorityHigh:
		return true
	}
	return false
}

type Todo struct {
	gorm.Model

	Title          string     `gorm:"not null"`
	Description    string
	Status         TodoStatus `gorm:"not null;default:todo"`
	Priority       TodoPriority
	DueDate        *time.Time
	FinishedAt     *time.Time
	AuthorID       uint `gorm:"not null;index"`
	AssignedUserID *uint
	ProjectID      uint `gorm:"not null;index"`

	// Relationships
	Author   User    `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Assignee *User   `gorm:"foreignKey:AssignedUserID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Project  Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// SetStatus moves the todo to the given status and keeps FinishedAt in sync:
// it is non-null exactly while the todo is done.
func (t *Todo) SetStatus(status TodoStatus) {
	if t.Status == status {
		return
	}

	t.Status = status

	if status == TodoStatusDone {
		now := time.Now()
		t.FinishedAt = &now
	} else {
		t.FinishedAt = nil
	}
}
