package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/planlane/planlane/dao/model"
	"github.com/planlane/planlane/internal/audit"
	"github.com/planlane/planlane/internal/authz"
	"github.com/planlane/planlane/internal/resputil"
	"github.com/planlane/planlane/internal/util"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewMemberMgr)
}

type MemberMgr struct {
	name     string
	db       *gorm.DB
	authz    *authz.Service
	recorder *audit.Recorder
}

func NewMemberMgr(conf *RegisterConfig) Manager {
	return &MemberMgr{
		name:     "members",
		db:       conf.DB,
		authz:    conf.Authz,
		recorder: conf.Recorder,
	}
}

func (mgr *MemberMgr) GetName() string { return mgr.name }

func (mgr *MemberMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *MemberMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/projects/:id/members", mgr.ListMembers)
	g.POST("/projects/:id/members", mgr.AddMember)
	g.DELETE("/projects/:id/members/:userId", mgr.RemoveMember)
	g.PUT("/projects/:id/members/:userId/role", mgr.UpdateMemberRole)
}

func (mgr *MemberMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	MemberUserReq struct {
		ProjectID uint `uri:"id" binding:"required"`
		UserID    uint `uri:"userId" binding:"required"`
	}

	AddMemberReq struct {
		UserID uint       `json:"userId" binding:"required"`
		Role   model.Role `json:"role" binding:"required"`
	}

	UpdateMemberRoleReq struct {
		Role model.Role `json:"role" binding:"required"`
	}

	MemberResp struct {
		UserID   uint       `json:"userId"`
		Username string     `json:"username"`
		Name     string     `json:"name"`
		Role     model.Role `json:"role"`
	}
)

// ListMembers godoc
// @Summary List a project's members
// @Tags Member
// @Produce json
// @Security Session
// @Param id path uint true "project id"
// @Success 200 {object} []MemberResp "members"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "project not found"
// @Router /api/projects/{id}/members [get]
func (mgr *MemberMgr) ListMembers(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	project, ok := getOrNotFound[model.Project](c, mgr.db, uriReq.ID, "project")
	if !ok {
		return
	}
	if err := mgr.authz.CanView(c, util.GetToken(c), project.ID); err != nil {
		denyResponse(c, err)
		return
	}

	var resp []MemberResp
	err := mgr.db.WithContext(c).Model(&model.ProjectMember{}).
		Select("project_members.user_id", "users.username", "users.name", "project_members.role").
		Joins("JOIN users ON users.id = project_members.user_id").
		Where("project_members.project_id = ?", project.ID).
		Order("project_members.id").
		Scan(&resp).Error
	if err != nil {
		resputil.Error(c, err)
		return
	}
	resputil.Success(c, resp)
}

// AddMember godoc
// @Summary Add a user to a project
// @Tags Member
// @Accept json
// @Produce json
// @Security Session
// @Param id path uint true "project id"
// @Param data body AddMemberReq true "user and role"
// @Success 201 {object} MemberResp "added member"
// @Failure 400 {object} resputil.ErrorBody "unknown role or already a member"
// @Failure 403 {object} resputil.ErrorBody "manager role required"
// @Failure 404 {object} resputil.ErrorBody "project or user not found"
// @Router /api/projects/{id}/members [post]
func (mgr *MemberMgr) AddMember(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	var req AddMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BindError(c, err)
		return
	}
	if !req.Role.Valid() {
		resputil.BadRequest(c, "unknown role", resputil.ValidationErrorDetail{
			Field: "role", Message: "must be admin, manager or member",
		})
		return
	}

	project, ok := getOrNotFound[model.Project](c, mgr.db, uriReq.ID, "project")
	if !ok {
		return
	}
	user, ok := getOrNotFound[model.User](c, mgr.db, req.UserID, "user")
	if !ok {
		return
	}
	token := util.GetToken(c)
	if err := mgr.authz.CanManage(c, token, project.ID); err != nil {
		denyResponse(c, err)
		return
	}

	member := model.ProjectMember{
		ProjectID: project.ID,
		UserID:    user.ID,
		Role:      req.Role,
	}
	if err := mgr.db.WithContext(c).Create(&member).Error; err != nil {
		if isUniqueViolation(err) {
			resputil.Conflict(c, "user is already a member of this project")
			return
		}
		resputil.Error(c, err)
		return
	}

	mgr.recorder.Record(c, token.UserID, project.ID, nil,
		audit.ActionCreate, audit.SubjectMember, user.Username)
	resputil.Created(c, MemberResp{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     member.Role,
	})
}

// RemoveMember godoc
// @Summary Remove a user from a project
// @Description Removing the last admin member is rejected; the admin count is re-checked inside the same transaction as the delete
// @Tags Member
// @Produce json
// @Security Session
// @Param id path uint true "project id"
// @Param userId path uint true "user id"
// @Success 200 {object} any "removed"
// @Failure 400 {object} resputil.ErrorBody "last admin"
// @Failure 403 {object} resputil.ErrorBody "manager role required"
// @Failure 404 {object} resputil.ErrorBody "project or membership not found"
// @Router /api/projects/{id}/members/{userId} [delete]
func (mgr *MemberMgr) RemoveMember(c *gin.Context) {
	var uriReq MemberUserReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	project, ok := getOrNotFound[model.Project](c, mgr.db, uriReq.ProjectID, "project")
	if !ok {
		return
	}
	user, ok := getOrNotFound[model.User](c, mgr.db, uriReq.UserID, "user")
	if !ok {
		return
	}
	token := util.GetToken(c)
	if err := mgr.authz.CanManage(c, token, project.ID); err != nil {
		denyResponse(c, err)
		return
	}

	err := mgr.db.WithContext(c).Transaction(func(tx *gorm.DB) error {
		var member model.ProjectMember
		err := tx.Where("project_id = ? AND user_id = ?", project.ID, user.ID).First(&member).Error
		if err != nil {
			return err
		}
		if member.Role == model.RoleAdmin {
			if err := authz.EnsureOtherAdmin(c, authz.NewStore(tx), project.ID, user.ID); err != nil {
				return err
			}
		}
		return tx.Delete(&member).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.NotFound(c, "membership not found")
			return
		}
		denyResponse(c, err)
		return
	}

	mgr.recorder.Record(c, token.UserID, project.ID, nil,
		audit.ActionDelete, audit.SubjectMember, user.Username)
	resputil.Success(c, gin.H{"message": "member removed"})
}

// UpdateMemberRole godoc
// @Summary Change a member's project role
// @Description Demoting the sole remaining admin is rejected; the admin count is re-checked inside the same transaction as the update
// @Tags Member
// @Accept json
// @Produce json
// @Security Session
// @Param id path uint true "project id"
// @Param userId path uint true "user id"
// @Param data body UpdateMemberRoleReq true "new role"
// @Success 200 {object} MemberResp "updated member"
// @Failure 400 {object} resputil.ErrorBody "unknown role or last admin"
// @Failure 403 {object} resputil.ErrorBody "manager role required"
// @Failure 404 {object} resputil.ErrorBody "project or membership not found"
// @Router /api/projects/{id}/members/{userId}/role [put]
func (mgr *MemberMgr) UpdateMemberRole(c *gin.Context) {
	var uriReq MemberUserReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	var req UpdateMemberRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BindError(c, err)
		return
	}
	if !req.Role.Valid() {
		resputil.BadRequest(c, "unknown role", resputil.ValidationErrorDetail{
			Field: "role", Message: "must be admin, manager or member",
		})
		return
	}

	project, ok := getOrNotFound[model.Project](c, mgr.db, uriReq.ProjectID, "project")
	if !ok {
		return
	}
	user, ok := getOrNotFound[model.User](c, mgr.db, uriReq.UserID, "user")
	if !ok {
		return
	}
	token := util.GetToken(c)
	if err := mgr.authz.CanManage(c, token, project.ID); err != nil {
		denyResponse(c, err)
		return
	}

	err := mgr.db.WithContext(c).Transaction(func(tx *gorm.DB) error {
		var member model.ProjectMember
		err := tx.Where("project_id = ? AND user_id = ?", project.ID, user.ID).First(&member).Error
		if err != nil {
			return err
		}
		if member.Role == model.RoleAdmin && req.Role != model.RoleAdmin {
			if err := authz.EnsureOtherAdmin(c, authz.NewStore(tx), project.ID, user.ID); err != nil {
				return err
			}
		}
		member.Role = req.Role
		return tx.Save(&member).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.NotFound(c, "membership not found")
			return
		}
		denyResponse(c, err)
		return
	}

	mgr.recorder.Record(c, token.UserID, project.ID, nil,
		audit.ActionUpdate, audit.SubjectMember, user.Username)
	resputil.Success(c, MemberResp{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     req.Role,
	})
}
