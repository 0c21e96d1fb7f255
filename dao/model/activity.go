package model

import "time"

// Activity is an append-only audit record written after every
// successful mutation. No code path updates or deletes rows of this
// table; it deliberately does not embed gorm.Model.
type Activity struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	ProjectID uint      `gorm:"not null;index" json:"projectId"`
	TaskID    *uint     `json:"taskId,omitempty"`
	Action    string    `gorm:"type:varchar(32);not null" json:"action"`  // create, update, delete, ...
	Subject   string    `gorm:"type:varchar(32);not null" json:"subject"` // project, task, file, ...
	Details   string    `gorm:"type:varchar(512);not null" json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}

type Comment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ProjectID uint      `gorm:"not null;index" json:"projectId"`
	TaskID    *uint     `gorm:"index" json:"taskId,omitempty"`
	UserID    uint      `gorm:"not null" json:"userId"`
	Content   string    `gorm:"type:varchar(2048);not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
