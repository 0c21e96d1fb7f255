package handler

import (
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
	Registers = append(Registers, NewPhaseMgr)
}

type PhaseMgr struct {
	name     string
	db       *gorm.DB
	authz    *authz.Service
	recorder *audit.Recorder
}

func NewPhaseMgr(conf *RegisterConfig) Manager {
	return &PhaseMgr{
		name:     "phases",
		db:       conf.DB,
		authz:    conf.Authz,
		recorder: conf.Recorder,
	}
}

func (mgr *PhaseMgr) GetName() string { return mgr.name }

func (mgr *PhaseMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *PhaseMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/projects/:id/phases", mgr.ListPhases)
	g.POST("/projects/:id/phases", mgr.CreatePhase)
	g.PUT("/phases/:id", mgr.UpdatePhase)
	g.DELETE("/phases/:id", mgr.DeletePhase)
}

func (mgr *PhaseMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type PhaseCreateOrUpdateReq struct {
	Name     string  `json:"name" binding:"required,max=128"`
	Position *int    `json:"position"`
	Notes    *string `json:"notes"`
}

// ListPhases godoc
// @Summary List the phases of a project
// @Tags Phase
// @Produce json
// @Security Session
// @Param id path uint true "project id"
// @Success 200 {object} []model.Phase "phases"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "project not found"
// @Router /api/projects/{id}/phases [get]
func (mgr *PhaseMgr) ListPhases(c *gin.Context) {
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

	var phases []model.Phase
	err := mgr.db.WithContext(c).
		Where("project_id = ?", project.ID).
		Order("position, id").
		Find(&phases).Error
	if err != nil {
		resputil.Error(c, err)
		return
	}
	resputil.Success(c, phases)
}

// CreatePhase godoc
// @Summary Create a phase
// @Tags Phase
// @Accept json
// @Produce json
// @Security Session
// @Param id path uint true "project id"
// @Param data body PhaseCreateOrUpdateReq true "phase"
// @Success 201 {object} model.Phase "created phase"
// @Failure 403 {object} resputil.ErrorBody "manager role required"
// @Failure 404 {object} resputil.ErrorBody "project not found"
// @Router /api/projects/{id}/phases [post]
func (mgr *PhaseMgr) CreatePhase(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	var req PhaseCreateOrUpdateReq
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

	phase := model.Phase{
		ProjectID: project.ID,
		Name:      req.Name,
		Notes:     req.Notes,
	}
	if req.Position != nil {
		phase.Position = *req.Position
	}
	if err := mgr.db.WithContext(c).Create(&phase).Error; err != nil {
		resputil.Error(c, err)
		return
	}

	mgr.recorder.Record(c, token.UserID, project.ID, nil,
		audit.ActionCreate, audit.SubjectPhase, phase.Name)
	resputil.Created(c, phase)
}

// UpdatePhase godoc
// @Summary Update a phase
// @Tags Phase
// @Accept json
// @Produce json
// @Security Session
// @Param id path uint true "phase id"
// @Param data body PhaseCreateOrUpdateReq true "fields to update"
// @Success 200 {object} model.Phase "updated phase"
// @Failure 403 {object} resputil.ErrorBody "manager role required"
// @Failure 404 {object} resputil.ErrorBody "phase not found"
// @Router /api/phases/{id} [put]
func (mgr *PhaseMgr) UpdatePhase(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	var req PhaseCreateOrUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BindError(c, err)
		return
	}

	phase, ok := getOrNotFound[model.Phase](c, mgr.db, uriReq.ID, "phase")
	if !ok {
		return
	}
	token := util.GetToken(c)
	if err := mgr.authz.CanManage(c, token, phase.ProjectID); err != nil {
		denyResponse(c, err)
		return
	}

	phase.Name = req.Name
	phase.Notes = req.Notes
	if req.Position != nil {
		phase.Position = *req.Position
	}
	if err := mgr.db.WithContext(c).Save(phase).Error; err != nil {
		resputil.Error(c, err)
		return
	}

	mgr.recorder.Record(c, token.UserID, phase.ProjectID, nil,
		audit.ActionUpdate, audit.SubjectPhase, phase.Name)
	resputil.Success(c, phase)
}

// DeletePhase godoc
// @Summary Delete a phase
// @Description Tasks of the phase are detached, not deleted
// @Tags Phase
// @Produce json
// @Security Session
// @Param id path uint true "phase id"
// @Success 200 {object} any "deleted"
// @Failure 403 {object} resputil.ErrorBody "manager role required"
// @Failure 404 {object} resputil.ErrorBody "phase not found"
// @Router /api/phases/{id} [delete]
func (mgr *PhaseMgr) DeletePhase(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}

	phase, ok := getOrNotFound[model.Phase](c, mgr.db, uriReq.ID, "phase")
	if !ok {
		return
	}
	token := util.GetToken(c)
	if err := mgr.authz.CanManage(c, token, phase.ProjectID); err != nil {
		denyResponse(c, err)
		return
	}

	err := mgr.db.WithContext(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).
			Where("phase_id = ?", phase.ID).
			Update("phase_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(phase).Error
	})
	if err != nil {
		resputil.Error(c, err)
		return
	}

	mgr.recorder.Record(c, token.UserID, phase.ProjectID, nil,
		audit.ActionDelete, audit.SubjectPhase, phase.Name)
	resputil.Success(c, gin.H{"message": "phase deleted"})
}
