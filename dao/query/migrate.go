package query

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/planlane/planlane/dao/model"
	"github.com/planlane/planlane/pkg/logutils"
)

// Migrate brings the schema up to date. New schema changes get their
// own migration entry; the initial entry stays frozen.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250801-initial-schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&model.User{},
					&model.Project{},
					&model.ProjectMember{},
					&model.Phase{},
					&model.Task{},
					&model.ChecklistItem{},
					&model.File{},
					&model.Activity{},
					&model.Comment{},
					&model.Integration{},
					&model.Setting{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					&model.Setting{},
					&model.Integration{},
					&model.Comment{},
					&model.Activity{},
					&model.File{},
					&model.ChecklistItem{},
					&model.Task{},
					&model.Phase{},
					&model.ProjectMember{},
					&model.Project{},
					&model.User{},
				)
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return err
	}
	logutils.Log.Info("database migration success")
	return nil
}
