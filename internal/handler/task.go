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
	Registers = append(Registers, NewTaskMgr)
}

type TaskMgr struct {
	name     string
	db       *gorm.DB
	authz    *authz.Service
	recorder *audit.Recorder
}

func NewTaskMgr(conf *RegisterConfig) Manager {
	return &TaskMgr{
		name:     "tasks",
		db:       conf.DB,
		authz:    conf.Authz,
		recorder: conf.Recorder,
	}
}

func (mgr *TaskMgr) GetName() string { return mgr.name }

func (mgr *TaskMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *TaskMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/projects/:id/tasks", mgr.ListTasks)
	g.POST("/projects/:id/tasks", mgr.CreateTask)
	g.GET("/tasks/:id", mgr.GetTask)
	g.PUT("/tasks/:id", mgr.UpdateTask)
	g.DELETE("/tasks/:id", mgr.DeleteTask)
}

func (mgr *TaskMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type TaskCreateOrUpdateReq struct {
	Name        string           `json:"name" binding:"required,max=128"`
	Description *string          `json:"description"`
	PhaseID     *uint            `json:"phaseId"`
	Status      model.TaskStatus `json:"status"`
	DueDate     *string          `json:"dueDate"` // RFC 3339
	AssigneeID  *uint            `json:"assigneeId"`
}

// resolvePhase checks that the referenced phase exists and belongs to
// the task's project.
func (mgr *TaskMgr) resolvePhase(c *gin.Context, phaseID, projectID uint) bool {
	phase, ok := getOrNotFound[model.Phase](c, mgr.db, phaseID, "phase")
	if !ok {
		return false
	}
	if phase.ProjectID != projectID {
		resputil.BadRequest(c, "phase belongs to a different project", resputil.ValidationErrorDetail{
			Field: "phaseId", Message: "must reference a phase of the same project",
		})
		return false
	}
	return true
}

func (mgr *TaskMgr) applyTaskReq(c *gin.Context, task *model.Task, req *TaskCreateOrUpdateReq) bool {
	if req.PhaseID != nil && !mgr.resolvePhase(c, *req.PhaseID, task.ProjectID) {
		return false
	}
	task.Name = req.Name
	task.Description = req.Description
	task.PhaseID = req.PhaseID
	task.AssigneeID = req.AssigneeID
	if req.Status != "" {
		if !req.Status.Valid() {
			resputil.BadRequest(c, "unknown status", resputil.ValidationErrorDetail{
				Field: "status", Message: "must be todo, in_progress or done",
			})
			return false
		}
		task.Status = req.Status
	}
	if req.DueDate != nil {
		t, detail := parseDate("dueDate", *req.DueDate)
		if detail != nil {
			resputil.BadRequest(c, "invalid request", *detail)
			return false
		}
		task.DueDate = t
	}
	return true
}

// ListTasks godoc
// @Summary List the tasks of a project
// @Tags Task
// @Produce json
// @Security Session
// @Param id path uint true "project id"
// @Success 200 {object} []model.Task "tasks"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "project not found"
// @Router /api/projects/{id}/tasks [get]
func (mgr *TaskMgr) ListTasks(c *gin.Context) {
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

	var tasks []model.Task
	err := mgr.db.WithContext(c).
		Where("project_id = ?", project.ID).
		Order("id").
		Find(&tasks).Error
	if err != nil {
		resputil.Error(c, err)
		return
	}
	resputil.Success(c, tasks)
}

// CreateTask godoc
// @Summary Create a task
// @Tags Task
// @Accept json
// @Produce json
// @Security Session
// @Param id path uint true "project id"
// @Param data body TaskCreateOrUpdateReq true "task"
// @Success 201 {object} model.Task "created task"
// @Failure 403 {object} resputil.ErrorBody "manager role required"
// @Failure 404 {object} resputil.ErrorBody "project not found"
// @Router /api/projects/{id}/tasks [post]
func (mgr *TaskMgr) CreateTask(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	var req TaskCreateOrUpdateReq
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

	task := model.Task{
		ProjectID: project.ID,
		Status:    model.TaskStatusTodo,
	}
	if !mgr.applyTaskReq(c, &task, &req) {
		return
	}
	if err := mgr.db.WithContext(c).Create(&task).Error; err != nil {
		resputil.Error(c, err)
		return
	}

	mgr.recorder.Record(c, token.UserID, project.ID, &task.ID,
		audit.ActionCreate, audit.SubjectTask, task.Name)
	resputil.Created(c, task)
}

// GetTask godoc
// @Summary Get one task
// @Tags Task
// @Produce json
// @Security Session
// @Param id path uint true "task id"
// @Success 200 {object} model.Task "task"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "task not found"
// @Router /api/tasks/{id} [get]
func (mgr *TaskMgr) GetTask(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	task, ok := getOrNotFound[model.Task](c, mgr.db, uriReq.ID, "task")
	if !ok {
		return
	}
	if err := mgr.authz.CanView(c, util.GetToken(c), task.ProjectID); err != nil {
		denyResponse(c, err)
		return
	}
	resputil.Success(c, task)
}

// UpdateTask godoc
// @Summary Update a task
// @Description Any project member may update a task; deletion is restricted to managers
// @Tags Task
// @Accept json
// @Produce json
// @Security Session
// @Param id path uint true "task id"
// @Param data body TaskCreateOrUpdateReq true "fields to update"
// @Success 200 {object} model.Task "updated task"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "task not found"
// @Router /api/tasks/{id} [put]
func (mgr *TaskMgr) UpdateTask(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	var req TaskCreateOrUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BindError(c, err)
		return
	}

	task, ok := getOrNotFound[model.Task](c, mgr.db, uriReq.ID, "task")
	if !ok {
		return
	}
	token := util.GetToken(c)
	if err := mgr.authz.CanView(c, token, task.ProjectID); err != nil {
		denyResponse(c, err)
		return
	}

	if !mgr.applyTaskReq(c, task, &req) {
		return
	}
	if err := mgr.db.WithContext(c).Save(task).Error; err != nil {
		resputil.Error(c, err)
		return
	}

	mgr.recorder.Record(c, token.UserID, task.ProjectID, &task.ID,
		audit.ActionUpdate, audit.SubjectTask, task.Name)
	resputil.Success(c, task)
}

// DeleteTask godoc
// @Summary Delete a task and its checklist items
// @Tags Task
// @Produce json
// @Security Session
// @Param id path uint true "task id"
// @Success 200 {object} any "deleted"
// @Failure 403 {object} resputil.ErrorBody "manager role required"
// @Failure 404 {object} resputil.ErrorBody "task not found"
// @Router /api/tasks/{id} [delete]
func (mgr *TaskMgr) DeleteTask(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}

	task, ok := getOrNotFound[model.Task](c, mgr.db, uriReq.ID, "task")
	if !ok {
		return
	}
	token := util.GetToken(c)
	if err := mgr.authz.CanManage(c, token, task.ProjectID); err != nil {
		denyResponse(c, err)
		return
	}

	err := mgr.db.WithContext(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&model.ChecklistItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
	if err != nil {
		resputil.Error(c, err)
		return
	}

	mgr.recorder.Record(c, token.UserID, task.ProjectID, &task.ID,
		audit.ActionDelete, audit.SubjectTask, task.Name)
	resputil.Success(c, gin.H{"message": "task deleted"})
}
