package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/planlane/planlane/dao/model"
	"github.com/planlane/planlane/internal/authz"
	"github.com/planlane/planlane/internal/resputil"
	"github.com/planlane/planlane/internal/util"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewActivityMgr)
}

type ActivityMgr struct {
	name  string
	db    *gorm.DB
	authz *authz.Service
}

func NewActivityMgr(conf *RegisterConfig) Manager {
	return &ActivityMgr{
		name:  "activities",
		db:    conf.DB,
		authz: conf.Authz,
	}
}

func (mgr *ActivityMgr) GetName() string { return mgr.name }

func (mgr *ActivityMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ActivityMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/activities", mgr.ListActivities)
	g.GET("/projects/:id/activities", mgr.ListProjectActivities)
}

func (mgr *ActivityMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ActivityListQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

func (q *ActivityListQuery) applyTo(db *gorm.DB) *gorm.DB {
	db = db.Order("activities.id DESC")
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	return db
}

// ListActivities godoc
// @Summary List recent activity across visible projects
// @Description Platform admins see everything; other users see activity of projects they belong to
// @Tags Activity
// @Produce json
// @Security Session
// @Param limit query int false "cap on returned records"
// @Success 200 {object} []model.Activity "activity records, newest first"
// @Router /api/activities [get]
func (mgr *ActivityMgr) ListActivities(c *gin.Context) {
	var q ActivityListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		resputil.BindError(c, err)
		return
	}

	token := util.GetToken(c)
	db := mgr.db.WithContext(c).Model(&model.Activity{})
	if !token.IsAdmin() {
		db = db.Joins("JOIN project_members pm ON pm.project_id = activities.project_id").
			Where("pm.user_id = ?", token.UserID)
	}

	var activities []model.Activity
	if err := q.applyTo(db).Find(&activities).Error; err != nil {
		resputil.Error(c, err)
		return
	}
	resputil.Success(c, activities)
}

// ListProjectActivities godoc
// @Summary List a project's activity log
// @Tags Activity
// @Produce json
// @Security Session
// @Param id path uint true "project id"
// @Param limit query int false "cap on returned records"
// @Success 200 {object} []model.Activity "activity records, newest first"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "project not found"
// @Router /api/projects/{id}/activities [get]
func (mgr *ActivityMgr) ListProjectActivities(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	var q ActivityListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
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

	var activities []model.Activity
	db := mgr.db.WithContext(c).Model(&model.Activity{}).Where("activities.project_id = ?", project.ID)
	if err := q.applyTo(db).Find(&activities).Error; err != nil {
		resputil.Error(c, err)
		return
	}
	resputil.Success(c, activities)
}
