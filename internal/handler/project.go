package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/planlane/planlane/dao/model"
	"github.com/planlane/planlane/internal/audit"
	"github.com/planlane/planlane/internal/authz"
	"github.com/planlane/planlane/internal/resputil"
	"github.com/planlane/planlane/internal/util"
	"github.com/planlane/planlane/pkg/filestore"
	"github.com/planlane/planlane/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewProjectMgr)
}

type ProjectMgr struct {
	name     string
	db       *gorm.DB
	authz    *authz.Service
	recorder *audit.Recorder
	files    *filestore.Store
}

func NewProjectMgr(conf *RegisterConfig) Manager {
	return &ProjectMgr{
		name:     "projects",
		db:       conf.DB,
		authz:    conf.Authz,
		recorder: conf.Recorder,
		files:    conf.Files,
	}
}

func (mgr *ProjectMgr) GetName() string { return mgr.name }

func (mgr *ProjectMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ProjectMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/projects", mgr.ListProjects)
	g.POST("/projects", mgr.CreateProject)
	g.GET("/projects/:id", mgr.GetProject)
	g.PUT("/projects/:id", mgr.UpdateProject)
	g.DELETE("/projects/:id", mgr.DeleteProject)
}

func (mgr *ProjectMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	ProjectCreateOrUpdateReq struct {
		Name        string  `json:"name" binding:"required,max=128"`
		Description *string `json:"description"`
		StartDate   *string `json:"startDate"` // RFC 3339
		EndDate     *string `json:"endDate"`   // RFC 3339
	}

	ProjectResp struct {
		ID          uint       `json:"id"`
		Name        string     `json:"name"`
		Description *string    `json:"description,omitempty"`
		StartDate   *time.Time `json:"startDate,omitempty"`
		EndDate     *time.Time `json:"endDate,omitempty"`
		CreatedBy   uint       `json:"createdBy"`
		CreatedAt   time.Time  `json:"createdAt"`
	}
)

func projectResp(p *model.Project) ProjectResp {
	return ProjectResp{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
	}
}

// parseDate normalizes a date-like string field into a timestamp.
func parseDate(field, value string) (*time.Time, *resputil.ValidationErrorDetail) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, &resputil.ValidationErrorDetail{Field: field, Message: "must be an RFC 3339 timestamp"}
	}
	return &t, nil
}

// ListProjects godoc
// @Summary List projects visible to the caller
// @Description Platform admins see every project, other users only those they are members of
// @Tags Project
// @Produce json
// @Security Session
// @Success 200 {object} []ProjectResp "projects"
// @Failure 500 {object} resputil.ErrorBody "other errors"
// @Router /api/projects [get]
func (mgr *ProjectMgr) ListProjects(c *gin.Context) {
	token := util.GetToken(c)

	var projects []model.Project
	query := mgr.db.WithContext(c).Order("id DESC")
	if !token.IsAdmin() {
		query = query.
			Joins("JOIN project_members ON project_members.project_id = projects.id").
			Where("project_members.user_id = ?", token.UserID)
	}
	if err := query.Find(&projects).Error; err != nil {
		resputil.Error(c, err)
		return
	}

	resps := make([]ProjectResp, len(projects))
	for i := range projects {
		resps[i] = projectResp(&projects[i])
	}
	resputil.Success(c, resps)
}

// CreateProject godoc
// @Summary Create a project
// @Description The creator becomes the project's first admin member
// @Tags Project
// @Accept json
// @Produce json
// @Security Session
// @Param data body ProjectCreateOrUpdateReq true "project"
// @Success 201 {object} ProjectResp "created project"
// @Failure 400 {object} resputil.ErrorBody "request parameter error"
// @Router /api/projects [post]
func (mgr *ProjectMgr) CreateProject(c *gin.Context) {
	token := util.GetToken(c)

	var req ProjectCreateOrUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BindError(c, err)
		return
	}

	project := model.Project{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   token.UserID,
	}
	if req.StartDate != nil {
		t, detail := parseDate("startDate", *req.StartDate)
		if detail != nil {
			resputil.BadRequest(c, "invalid request", *detail)
			return
		}
		project.StartDate = t
	}
	if req.EndDate != nil {
		t, detail := parseDate("endDate", *req.EndDate)
		if detail != nil {
			resputil.BadRequest(c, "invalid request", *detail)
			return
		}
		project.EndDate = t
	}

	err := mgr.db.WithContext(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		member := model.ProjectMember{
			ProjectID: project.ID,
			UserID:    token.UserID,
			Role:      model.RoleAdmin,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		resputil.Error(c, err)
		return
	}

	mgr.recorder.Record(c, token.UserID, project.ID, nil,
		audit.ActionCreate, audit.SubjectProject, project.Name)
	resputil.Created(c, projectResp(&project))
}

// GetProject godoc
// @Summary Get one project
// @Tags Project
// @Produce json
// @Security Session
// @Param id path uint true "project id"
// @Success 200 {object} ProjectResp "project"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "project not found"
// @Router /api/projects/{id} [get]
func (mgr *ProjectMgr) GetProject(c *gin.Context) {
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
	resputil.Success(c, projectResp(project))
}

// UpdateProject godoc
// @Summary Update a project
// @Tags Project
// @Accept json
// @Produce json
// @Security Session
// @Param id path uint true "project id"
// @Param data body ProjectCreateOrUpdateReq true "fields to update"
// @Success 200 {object} ProjectResp "updated project"
// @Failure 403 {object} resputil.ErrorBody "manager role required"
// @Failure 404 {object} resputil.ErrorBody "project not found"
// @Router /api/projects/{id} [put]
func (mgr *ProjectMgr) UpdateProject(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	var req ProjectCreateOrUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BindError(c, err)
		return
	}

	project, ok := getOrNotFound[model.Project](c, mgr.db, uriReq.ID, "project")
	if !ok {
		return
	}
	token := util.GetToken(c)
	if err := mgr.authz.CanManage(c, token, project.ID); err != nil {
		denyResponse(c, err)
		return
	}

	project.Name = req.Name
	project.Description = req.Description
	if req.StartDate != nil {
		t, detail := parseDate("startDate", *req.StartDate)
		if detail != nil {
			resputil.BadRequest(c, "invalid request", *detail)
			return
		}
		project.StartDate = t
	}
	if req.EndDate != nil {
		t, detail := parseDate("endDate", *req.EndDate)
		if detail != nil {
			resputil.BadRequest(c, "invalid request", *detail)
			return
		}
		project.EndDate = t
	}

	if err := mgr.db.WithContext(c).Save(project).Error; err != nil {
		resputil.Error(c, err)
		return
	}

	mgr.recorder.Record(c, token.UserID, project.ID, nil,
		audit.ActionUpdate, audit.SubjectProject, project.Name)
	resputil.Success(c, projectResp(project))
}

// DeleteProject godoc
// @Summary Delete a project and its contents
// @Description Removes members, phases, tasks, checklist items, comments and file records in one transaction; stored files are cleaned up best effort. Activities are kept as audit trail.
// @Tags Project
// @Produce json
// @Security Session
// @Param id path uint true "project id"
// @Success 200 {object} any "deleted project name"
// @Failure 403 {object} resputil.ErrorBody "project admin role required"
// @Failure 404 {object} resputil.ErrorBody "project not found"
// @Router /api/projects/{id} [delete]
func (mgr *ProjectMgr) DeleteProject(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}

	project, ok := getOrNotFound[model.Project](c, mgr.db, uriReq.ID, "project")
	if !ok {
		return
	}
	token := util.GetToken(c)
	if err := mgr.authz.RequireRole(c, token, project.ID, model.RoleAdmin); err != nil {
		denyResponse(c, err)
		return
	}

	var files []model.File
	if err := mgr.db.WithContext(c).Where("project_id = ?", project.ID).Find(&files).Error; err != nil {
		resputil.Error(c, err)
		return
	}

	err := mgr.db.WithContext(c).Transaction(func(tx *gorm.DB) error {
		pid := project.ID
		if err := tx.Where("project_id = ?", pid).Delete(&model.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)",
			tx.Model(&model.Task{}).Select("id").Where("project_id = ?", pid),
		).Delete(&model.ChecklistItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", pid).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", pid).Delete(&model.Phase{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", pid).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", pid).Delete(&model.File{}).Error; err != nil {
			return err
		}
		return tx.Delete(project).Error
	})
	if err != nil {
		resputil.Error(c, err)
		return
	}

	for i := range files {
		mgr.files.TryRemove(files[i].Path)
	}

	logutils.Log.Infof("project deleted: %s", project.Name)
	mgr.recorder.Record(c, token.UserID, project.ID, nil,
		audit.ActionDelete, audit.SubjectProject, project.Name)
	resputil.Success(c, gin.H{"name": project.Name})
}
