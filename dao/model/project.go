package model

import (
	"time"

	"gorm.io/gorm"
)

type Project struct {
	gorm.Model
	Name        string     `gorm:"type:varchar(128);not null"`
	Description *string    `gorm:"type:varchar(512)"`
	StartDate   *time.Time `gorm:"type:timestamptz"`
	EndDate     *time.Time `gorm:"type:timestamptz"`
	CreatedBy   uint       `gorm:"not null"`

	Members []ProjectMember
	Phases  []Phase
	Tasks   []Task
}

// ProjectMember links a user to a project with a project-scoped role.
// Every project must keep at least one admin member at all times.
// Rows are hard-deleted: a soft-deleted row would keep occupying the
// composite unique index and block re-adding a removed member.
type ProjectMember struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_project_user" json:"projectId"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_project_user" json:"userId"`
	Role      Role      `gorm:"type:varchar(32);not null" json:"role"`
}

type Phase struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	ProjectID uint           `gorm:"not null;index" json:"projectId"`
	Name      string         `gorm:"type:varchar(128);not null" json:"name"`
	Position  int            `gorm:"not null;default:0" json:"position"`
	Notes     *string        `gorm:"type:varchar(512)" json:"notes,omitempty"`

	Tasks []Task `gorm:"foreignKey:PhaseID" json:"tasks,omitempty"`
}
