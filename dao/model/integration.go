package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// IntegrationCredentials is the free-form credential set of a channel,
// stored as a JSON column. Which keys are required depends on the
// integration type and is checked by the verification endpoint.
type IntegrationCredentials map[string]string

// Integration is an admin-configured external notification channel.
// At most one record may exist per Type; this is enforced on create
// and on update. Rows are hard-deleted so a removed type can be
// configured again without tripping the unique index.
type Integration struct {
	ID           uint `gorm:"primarykey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Type         IntegrationType                            `gorm:"uniqueIndex;type:varchar(32);not null"`
	Name         string                                     `gorm:"type:varchar(128);not null"`
	Enabled      bool                                       `gorm:"not null;default:false"`
	Credentials  datatypes.JSONType[IntegrationCredentials] `gorm:"not null"`
	ConfiguredBy uint                                       `gorm:"not null"`
}

// Setting is the single row of application-wide settings.
type Setting struct {
	gorm.Model
	AppName  string `gorm:"type:varchar(128);not null;default:Planlane"`
	LogoPath string `gorm:"type:varchar(512)"`
	Language string `gorm:"type:varchar(16);not null;default:en"`
}
