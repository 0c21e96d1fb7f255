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
	Registers = append(Registers, NewChecklistMgr)
}

type ChecklistMgr struct {
	name     string
	db       *gorm.DB
	authz    *authz.Service
	recorder *audit.Recorder
}

func NewChecklistMgr(conf *RegisterConfig) Manager {
	return &ChecklistMgr{
		name:     "checklist",
		db:       conf.DB,
		authz:    conf.Authz,
		recorder: conf.Recorder,
	}
}

func (mgr *ChecklistMgr) GetName() string { return mgr.name }

func (mgr *ChecklistMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ChecklistMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/tasks/:id/checklist", mgr.ListItems)
	g.POST("/tasks/:id/checklist", mgr.CreateItem)
	g.PUT("/checklist/:id", mgr.UpdateItem)
	g.DELETE("/checklist/:id", mgr.DeleteItem)
}

func (mgr *ChecklistMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ChecklistItemReq struct {
	Title    string `json:"title" binding:"required,max=256"`
	Done     *bool  `json:"done"`
	Position *int   `json:"position"`
}

// resolveTask loads the item's task to find the owning project; a
// missing link is a not-found outcome before authorization runs.
func (mgr *ChecklistMgr) resolveTask(c *gin.Context, taskID uint) (*model.Task, bool) {
	return getOrNotFound[model.Task](c, mgr.db, taskID, "task")
}

// ListItems godoc
// @Summary List a task's checklist
// @Tags Checklist
// @Produce json
// @Security Session
// @Param id path uint true "task id"
// @Success 200 {object} []model.ChecklistItem "items"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "task not found"
// @Router /api/tasks/{id}/checklist [get]
func (mgr *ChecklistMgr) ListItems(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	task, ok := mgr.resolveTask(c, uriReq.ID)
	if !ok {
		return
	}
	if err := mgr.authz.CanView(c, util.GetToken(c), task.ProjectID); err != nil {
		denyResponse(c, err)
		return
	}

	var items []model.ChecklistItem
	err := mgr.db.WithContext(c).
		Where("task_id = ?", task.ID).
		Order("position, id").
		Find(&items).Error
	if err != nil {
		resputil.Error(c, err)
		return
	}
	resputil.Success(c, items)
}

// CreateItem godoc
// @Summary Add a checklist item to a task
// @Tags Checklist
// @Accept json
// @Produce json
// @Security Session
// @Param id path uint true "task id"
// @Param data body ChecklistItemReq true "item"
// @Success 201 {object} model.ChecklistItem "created item"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "task not found"
// @Router /api/tasks/{id}/checklist [post]
func (mgr *ChecklistMgr) CreateItem(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	var req ChecklistItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BindError(c, err)
		return
	}

	task, ok := mgr.resolveTask(c, uriReq.ID)
	if !ok {
		return
	}
	token := util.GetToken(c)
	if err := mgr.authz.CanView(c, token, task.ProjectID); err != nil {
		denyResponse(c, err)
		return
	}

	item := model.ChecklistItem{
		TaskID: task.ID,
		Title:  req.Title,
	}
	if req.Done != nil {
		item.Done = *req.Done
	}
	if req.Position != nil {
		item.Position = *req.Position
	}
	if err := mgr.db.WithContext(c).Create(&item).Error; err != nil {
		resputil.Error(c, err)
		return
	}

	mgr.recorder.Record(c, token.UserID, task.ProjectID, &task.ID,
		audit.ActionCreate, audit.SubjectChecklist, item.Title)
	resputil.Created(c, item)
}

// UpdateItem godoc
// @Summary Update a checklist item
// @Tags Checklist
// @Accept json
// @Produce json
// @Security Session
// @Param id path uint true "item id"
// @Param data body ChecklistItemReq true "fields to update"
// @Success 200 {object} model.ChecklistItem "updated item"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "item not found"
// @Router /api/checklist/{id} [put]
func (mgr *ChecklistMgr) UpdateItem(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	var req ChecklistItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BindError(c, err)
		return
	}

	item, ok := getOrNotFound[model.ChecklistItem](c, mgr.db, uriReq.ID, "checklist item")
	if !ok {
		return
	}
	task, ok := mgr.resolveTask(c, item.TaskID)
	if !ok {
		return
	}
	token := util.GetToken(c)
	if err := mgr.authz.CanView(c, token, task.ProjectID); err != nil {
		denyResponse(c, err)
		return
	}

	item.Title = req.Title
	if req.Done != nil {
		item.Done = *req.Done
	}
	if req.Position != nil {
		item.Position = *req.Position
	}
	if err := mgr.db.WithContext(c).Save(item).Error; err != nil {
		resputil.Error(c, err)
		return
	}

	mgr.recorder.Record(c, token.UserID, task.ProjectID, &task.ID,
		audit.ActionUpdate, audit.SubjectChecklist, item.Title)
	resputil.Success(c, item)
}

// DeleteItem godoc
// @Summary Delete a checklist item
// @Tags Checklist
// @Produce json
// @Security Session
// @Param id path uint true "item id"
// @Success 200 {object} any "deleted"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "item not found"
// @Router /api/checklist/{id} [delete]
func (mgr *ChecklistMgr) DeleteItem(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}

	item, ok := getOrNotFound[model.ChecklistItem](c, mgr.db, uriReq.ID, "checklist item")
	if !ok {
		return
	}
	task, ok := mgr.resolveTask(c, item.TaskID)
	if !ok {
		return
	}
	token := util.GetToken(c)
	if err := mgr.authz.CanView(c, token, task.ProjectID); err != nil {
		denyResponse(c, err)
		return
	}

	if err := mgr.db.WithContext(c).Delete(item).Error; err != nil {
		resputil.Error(c, err)
		return
	}

	mgr.recorder.Record(c, token.UserID, task.ProjectID, &task.ID,
		audit.ActionDelete, audit.SubjectChecklist, item.Title)
	resputil.Success(c, gin.H{"message": "checklist item deleted"})
}
