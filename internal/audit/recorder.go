// Package audit appends the immutable activity trail. One record per
// successful mutation; records are never edited or deleted.
package audit

import (
	"context"

	"gorm.io/gorm"

	"github.com/planlane/planlane/dao/model"
	"github.com/planlane/planlane/pkg/logutils"
)

type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record appends one activity. The primary mutation has already
// committed by the time this runs, so a failure here is logged and
// swallowed rather than surfaced to the client.
func (r *Recorder) Record(ctx context.Context, userID, projectID uint, taskID *uint, action, subject, details string) {
	activity := model.Activity{
		UserID:    userID,
		ProjectID: projectID,
		TaskID:    taskID,
		Action:    action,
		Subject:   subject,
		Details:   details,
	}
	if err := r.db.WithContext(ctx).Create(&activity).Error; err != nil {
		logutils.Log.WithFields(logutils.Fields{
			"projectId": projectID,
			"action":    action,
			"subject":   subject,
		}).Warn("record activity failed: ", err)
	}
}

// Action verbs and subject nouns used by the handlers.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionUpload = "upload"
)

const (
	SubjectProject   = "project"
	SubjectMember    = "member"
	SubjectPhase     = "phase"
	SubjectTask      = "task"
	SubjectChecklist = "checklist_item"
	SubjectFile      = "file"
	SubjectComment   = "comment"
)
