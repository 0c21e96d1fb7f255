package model

import (
	"time"

	"gorm.io/gorm"
)

// File is the metadata record of an uploaded attachment. Path points
// into the upload directory; the record is the source of truth and
// physical cleanup is best effort.
type File struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	ProjectID  uint           `gorm:"not null;index" json:"projectId"`
	TaskID     *uint          `gorm:"index" json:"taskId,omitempty"`
	Name       string         `gorm:"type:varchar(256);not null" json:"name"` // original client-side name
	Path       string         `gorm:"type:varchar(512);not null" json:"path"` // stored location on disk
	MimeType   string         `gorm:"type:varchar(128)" json:"mimeType"`
	Size       int64          `gorm:"not null" json:"size"`
	UploadedBy uint           `gorm:"not null" json:"uploadedBy"`
}
