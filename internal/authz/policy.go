// Package authz is the single authorization policy for project-scoped
// resources. Handlers resolve the owning project of whatever they are
// touching and ask one question here instead of repeating membership
// lookups inline.
package authz

import (
	"context"
	"errors"

	"github.com/planlane/planlane/dao/model"
	"github.com/planlane/planlane/internal/util"
)

var (
	// ErrNotMember denies a caller who is not on the project's
	// membership list. Maps to 403.
	ErrNotMember = errors.New("not a member of this project")

	// ErrRoleRequired denies a member whose project role is not in
	// the allowed set. Maps to 403.
	ErrRoleRequired = errors.New("insufficient project role")

	// ErrLastAdmin rejects a mutation that would leave a project
	// without any admin member. Maps to 400 (conflict).
	ErrLastAdmin = errors.New("project must keep at least one admin member")
)

// MembershipStore reads current membership state. The gorm
// implementation lives in store.go; tests substitute a map-backed
// fake.
type MembershipStore interface {
	// Membership returns the caller's membership in the project, or
	// (nil, nil) when there is none.
	Membership(ctx context.Context, projectID, userID uint) (*model.ProjectMember, error)

	// AdminCount counts admin members of the project, ignoring
	// excludeUserID (pass 0 to count all).
	AdminCount(ctx context.Context, projectID, excludeUserID uint) (int64, error)
}

type Service struct {
	store MembershipStore
}

func NewService(store MembershipStore) *Service {
	return &Service{store: store}
}

// CanView allows platform admins and any project member.
func (s *Service) CanView(ctx context.Context, actor util.JWTMessage, projectID uint) error {
	if actor.IsAdmin() {
		return nil
	}
	member, err := s.store.Membership(ctx, projectID, actor.UserID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotMember
	}
	return nil
}

// RequireRole allows platform admins and members whose project role is
// in the allowed set.
func (s *Service) RequireRole(ctx context.Context, actor util.JWTMessage, projectID uint, roles ...model.Role) error {
	if actor.IsAdmin() {
		return nil
	}
	member, err := s.store.Membership(ctx, projectID, actor.UserID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotMember
	}
	for _, role := range roles {
		if member.Role == role {
			return nil
		}
	}
	return ErrRoleRequired
}

// CanManage is RequireRole with the manage set (project admins and
// managers): phase/task/member mutations.
func (s *Service) CanManage(ctx context.Context, actor util.JWTMessage, projectID uint) error {
	return s.RequireRole(ctx, actor, projectID, model.RoleAdmin, model.RoleManager)
}

// CanModerate gates file and comment deletion: platform admin, project
// admin/manager, or the original uploader/author regardless of role.
func (s *Service) CanModerate(ctx context.Context, actor util.JWTMessage, projectID, ownerID uint) error {
	if actor.UserID == ownerID {
		// Owner must still be able to see the project at all.
		return s.CanView(ctx, actor, projectID)
	}
	return s.CanManage(ctx, actor, projectID)
}

// EnsureOtherAdmin fails with ErrLastAdmin unless the project has an
// admin member other than excludeUserID. Call it on a store bound to
// the same transaction as the removal or demotion it protects.
func EnsureOtherAdmin(ctx context.Context, store MembershipStore, projectID, excludeUserID uint) error {
	count, err := store.AdminCount(ctx, projectID, excludeUserID)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrLastAdmin
	}
	return nil
}

// Denied reports whether err is a policy denial rather than an
// infrastructure failure.
func Denied(err error) bool {
	return errors.Is(err, ErrNotMember) || errors.Is(err, ErrRoleRequired)
}
