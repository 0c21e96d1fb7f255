package authz

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/planlane/planlane/dao/model"
)

// GormStore reads membership state through gorm. NewService(NewStore(db))
// serves handlers; NewStore(tx) binds the last-admin guard to a
// transaction.
type GormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Membership(ctx context.Context, projectID, userID uint) (*model.ProjectMember, error) {
	var member model.ProjectMember
	err := s.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *GormStore) AdminCount(ctx context.Context, projectID, excludeUserID uint) (int64, error) {
	var count int64
	query := s.db.WithContext(ctx).Model(&model.ProjectMember{}).
		Where("project_id = ? AND role = ?", projectID, model.RoleAdmin)
	if excludeUserID != 0 {
		query = query.Where("user_id <> ?", excludeUserID)
	}
	err := query.Count(&count).Error
	return count, err
}
