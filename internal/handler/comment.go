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
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewCommentMgr)
}

type CommentMgr struct {
	name     string
	db       *gorm.DB
	authz    *authz.Service
	recorder *audit.Recorder
}

func NewCommentMgr(conf *RegisterConfig) Manager {
	return &CommentMgr{
		name:     "comments",
		db:       conf.DB,
		authz:    conf.Authz,
		recorder: conf.Recorder,
	}
}

func (mgr *CommentMgr) GetName() string { return mgr.name }

func (mgr *CommentMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *CommentMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/projects/:id/comments", mgr.ListProjectComments)
	g.POST("/projects/:id/comments", mgr.CreateProjectComment)
	g.GET("/tasks/:id/comments", mgr.ListTaskComments)
	g.POST("/tasks/:id/comments", mgr.CreateTaskComment)
	g.DELETE("/comments/:id", mgr.DeleteComment)
}

func (mgr *CommentMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	CommentCreateReq struct {
		Content string `json:"content" binding:"required,max=2048"`
	}

	CommentResp struct {
		ID        uint      `json:"id"`
		ProjectID uint      `json:"projectId"`
		TaskID    *uint     `json:"taskId,omitempty"`
		UserID    uint      `json:"userId"`
		Username  string    `json:"username"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"createdAt"`
	}
)

func (mgr *CommentMgr) listComments(c *gin.Context, where string, arg uint) {
	var resp []CommentResp
	err := mgr.db.WithContext(c).Model(&model.Comment{}).
		Select("comments.id", "comments.project_id", "comments.task_id",
			"comments.user_id", "users.username", "comments.content", "comments.created_at").
		Joins("JOIN users ON users.id = comments.user_id").
		Where(where, arg).
		Order("comments.id DESC").
		Scan(&resp).Error
	if err != nil {
		resputil.Error(c, err)
		return
	}
	resputil.Success(c, resp)
}

// ListProjectComments godoc
// @Summary List project-level comments
// @Tags Comment
// @Produce json
// @Security Session
// @Param id path uint true "project id"
// @Success 200 {object} []CommentResp "comments"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "project not found"
// @Router /api/projects/{id}/comments [get]
func (mgr *CommentMgr) ListProjectComments(c *gin.Context) {
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
	mgr.listComments(c, "comments.project_id = ? AND comments.task_id IS NULL", project.ID)
}

// ListTaskComments godoc
// @Summary List a task's comments
// @Tags Comment
// @Produce json
// @Security Session
// @Param id path uint true "task id"
// @Success 200 {object} []CommentResp "comments"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "task not found"
// @Router /api/tasks/{id}/comments [get]
func (mgr *CommentMgr) ListTaskComments(c *gin.Context) {
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
	mgr.listComments(c, "comments.task_id = ?", task.ID)
}

func (mgr *CommentMgr) createComment(c *gin.Context, projectID uint, taskID *uint) {
	var req CommentCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BindError(c, err)
		return
	}

	token := util.GetToken(c)
	comment := model.Comment{
		ProjectID: projectID,
		TaskID:    taskID,
		UserID:    token.UserID,
		Content:   req.Content,
	}
	if err := mgr.db.WithContext(c).Create(&comment).Error; err != nil {
		resputil.Error(c, err)
		return
	}

	mgr.recorder.Record(c, token.UserID, projectID, taskID,
		audit.ActionCreate, audit.SubjectComment, summarize(req.Content))
	resputil.Created(c, comment)
}

// summarize truncates a comment body for the activity detail line.
func summarize(content string) string {
	const limit = 80
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}

// CreateProjectComment godoc
// @Summary Comment on a project
// @Tags Comment
// @Accept json
// @Produce json
// @Security Session
// @Param id path uint true "project id"
// @Param data body CommentCreateReq true "comment"
// @Success 201 {object} model.Comment "created comment"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "project not found"
// @Router /api/projects/{id}/comments [post]
func (mgr *CommentMgr) CreateProjectComment(c *gin.Context) {
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
	mgr.createComment(c, project.ID, nil)
}

// CreateTaskComment godoc
// @Summary Comment on a task
// @Tags Comment
// @Accept json
// @Produce json
// @Security Session
// @Param id path uint true "task id"
// @Param data body CommentCreateReq true "comment"
// @Success 201 {object} model.Comment "created comment"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "task not found"
// @Router /api/tasks/{id}/comments [post]
func (mgr *CommentMgr) CreateTaskComment(c *gin.Context) {
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
	mgr.createComment(c, task.ProjectID, &task.ID)
}

// DeleteComment godoc
// @Summary Delete a comment
// @Description Allowed for platform admins, project admins/managers, or the author
// @Tags Comment
// @Produce json
// @Security Session
// @Param id path uint true "comment id"
// @Success 200 {object} any "deleted"
// @Failure 403 {object} resputil.ErrorBody "not permitted"
// @Failure 404 {object} resputil.ErrorBody "comment not found"
// @Router /api/comments/{id} [delete]
func (mgr *CommentMgr) DeleteComment(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	comment, ok := getOrNotFound[model.Comment](c, mgr.db, uriReq.ID, "comment")
	if !ok {
		return
	}
	token := util.GetToken(c)
	if err := mgr.authz.CanModerate(c, token, comment.ProjectID, comment.UserID); err != nil {
		denyResponse(c, err)
		return
	}

	if err := mgr.db.WithContext(c).Delete(comment).Error; err != nil {
		resputil.Error(c, err)
		return
	}

	mgr.recorder.Record(c, token.UserID, comment.ProjectID, comment.TaskID,
		audit.ActionDelete, audit.SubjectComment, summarize(comment.Content))
	resputil.Success(c, gin.H{"message": "comment deleted"})
}
