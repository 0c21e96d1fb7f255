package model

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	ProjectID   uint           `gorm:"not null;index" json:"projectId"`
	PhaseID     *uint          `gorm:"index" json:"phaseId,omitempty"`
	Name        string         `gorm:"type:varchar(128);not null" json:"name"`
	Description *string        `gorm:"type:varchar(1024)" json:"description,omitempty"`
	Status      TaskStatus     `gorm:"type:varchar(32);not null;default:todo" json:"status"`
	DueDate     *time.Time     `gorm:"type:timestamptz" json:"dueDate,omitempty"`
	AssigneeID  *uint          `gorm:"index" json:"assigneeId,omitempty"`

	ChecklistItems []ChecklistItem `json:"checklistItems,omitempty"`
}

type ChecklistItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	TaskID    uint           `gorm:"not null;index" json:"taskId"`
	Title     string         `gorm:"type:varchar(256);not null" json:"title"`
	Done      bool           `gorm:"not null;default:false" json:"done"`
	Position  int            `gorm:"not null;default:0" json:"position"`
}
