package chatbot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/planlane/planlane/dao/model"
	"github.com/planlane/planlane/pkg/logutils"
	"github.com/planlane/planlane/pkg/notify"
)

// Scheduler runs the periodic due-task reminder. Each tick collects
// tasks due within the next 24 hours and pushes a digest through every
// enabled integration channel.
type Scheduler struct {
	db    *gorm.DB
	wa    *WhatsAppSender
	email *notify.EmailSender
	cron  *cron.Cron
}

func NewScheduler(db *gorm.DB, wa *WhatsAppSender, email *notify.EmailSender) *Scheduler {
	return &Scheduler{
		db:    db,
		wa:    wa,
		email: email,
		cron:  cron.New(cron.WithLocation(time.Local)),
	}
}

// Setup registers the reminder job and starts the cron loop.
func (s *Scheduler) Setup(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.remindDueTasks); err != nil {
		return err
	}
	s.cron.Start()
	logutils.Log.Info("reminder scheduler started, spec: ", spec)
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) remindDueTasks() {
	ctx := context.Background()

	var tasks []model.Task
	now := time.Now()
	err := s.db.WithContext(ctx).
		Where("due_date IS NOT NULL AND due_date BETWEEN ? AND ?", now, now.Add(24*time.Hour)).
		Where("status <> ?", model.TaskStatusDone).
		Order("due_date").
		Find(&tasks).Error
	if err != nil {
		logutils.Log.Error("reminder: list due tasks: ", err)
		return
	}
	if len(tasks) == 0 {
		return
	}

	digest := BuildDigest(tasks)

	var integrations []model.Integration
	if err := s.db.WithContext(ctx).Where("enabled = ?", true).Find(&integrations).Error; err != nil {
		logutils.Log.Error("reminder: list integrations: ", err)
		return
	}

	for i := range integrations {
		integration := &integrations[i]
		creds := integration.Credentials.Data()
		var sendErr error
		switch integration.Type {
		case model.IntegrationWhatsApp:
			sendErr = s.wa.Send(creds, digest)
		case model.IntegrationEmail:
			sendErr = s.email.Send(creds["recipient"], "Tasks due soon", digest)
		default:
			continue
		}
		if sendErr != nil {
			logutils.Log.Warnf("reminder: send via %s failed: %v", integration.Type, sendErr)
		}
	}
}

// BuildDigest renders the reminder body, one line per task.
func BuildDigest(tasks []model.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d task(s) due within 24 hours:\n", len(tasks))
	for i := range tasks {
		task := &tasks[i]
		fmt.Fprintf(&b, "- %s (due %s)\n", task.Name, task.DueDate.Format("2006-01-02 15:04"))
	}
	return b.String()
}
