package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/planlane/planlane/dao/model"
	"github.com/planlane/planlane/internal/audit"
	"github.com/planlane/planlane/internal/authz"
	"github.com/planlane/planlane/internal/resputil"
	"github.com/planlane/planlane/internal/util"
	"github.com/planlane/planlane/pkg/filestore"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewFileMgr)
}

type FileMgr struct {
	name     string
	db       *gorm.DB
	authz    *authz.Service
	recorder *audit.Recorder
	files    *filestore.Store
}

func NewFileMgr(conf *RegisterConfig) Manager {
	return &FileMgr{
		name:     "files",
		db:       conf.DB,
		authz:    conf.Authz,
		recorder: conf.Recorder,
		files:    conf.Files,
	}
}

func (mgr *FileMgr) GetName() string { return mgr.name }

func (mgr *FileMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *FileMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/projects/:id/files", mgr.ListProjectFiles)
	g.POST("/projects/:id/files", mgr.UploadFile)
	g.GET("/tasks/:id/files", mgr.ListTaskFiles)
	g.GET("/files/:id/download", mgr.DownloadFile)
	g.DELETE("/files/:id", mgr.DeleteFile)
}

func (mgr *FileMgr) RegisterAdmin(_ *gin.RouterGroup) {}

// ListProjectFiles godoc
// @Summary List a project's attachments
// @Tags File
// @Produce json
// @Security Session
// @Param id path uint true "project id"
// @Success 200 {object} []model.File "files"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "project not found"
// @Router /api/projects/{id}/files [get]
func (mgr *FileMgr) ListProjectFiles(c *gin.Context) {
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

	var files []model.File
	if err := mgr.db.WithContext(c).Where("project_id = ?", project.ID).Order("id DESC").Find(&files).Error; err != nil {
		resputil.Error(c, err)
		return
	}
	resputil.Success(c, files)
}

// ListTaskFiles godoc
// @Summary List a task's attachments
// @Tags File
// @Produce json
// @Security Session
// @Param id path uint true "task id"
// @Success 200 {object} []model.File "files"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "task not found"
// @Router /api/tasks/{id}/files [get]
func (mgr *FileMgr) ListTaskFiles(c *gin.Context) {
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

	var files []model.File
	if err := mgr.db.WithContext(c).Where("task_id = ?", task.ID).Order("id DESC").Find(&files).Error; err != nil {
		resputil.Error(c, err)
		return
	}
	resputil.Success(c, files)
}

// UploadFile godoc
// @Summary Upload an attachment
// @Description Multipart upload; the optional taskId form field attaches the file to a task of the same project. If the metadata write fails the stored file is cleaned up best effort.
// @Tags File
// @Accept multipart/form-data
// @Produce json
// @Security Session
// @Param id path uint true "project id"
// @Param file formData file true "content"
// @Param taskId formData uint false "task id"
// @Success 201 {object} model.File "file record"
// @Failure 400 {object} resputil.ErrorBody "missing file part"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "project or task not found"
// @Router /api/projects/{id}/files [post]
func (mgr *FileMgr) UploadFile(c *gin.Context) {
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
	if err := mgr.authz.CanView(c, token, project.ID); err != nil {
		denyResponse(c, err)
		return
	}

	var taskID *uint
	if raw := c.PostForm("taskId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			resputil.BadRequest(c, "invalid request", resputil.ValidationErrorDetail{
				Field: "taskId", Message: "must be a numeric task id",
			})
			return
		}
		id := uint(parsed)
		task, ok := getOrNotFound[model.Task](c, mgr.db, id, "task")
		if !ok {
			return
		}
		if task.ProjectID != project.ID {
			resputil.BadRequest(c, "task belongs to a different project", resputil.ValidationErrorDetail{
				Field: "taskId", Message: "must reference a task of the same project",
			})
			return
		}
		taskID = &id
	}

	header, err := c.FormFile("file")
	if err != nil {
		resputil.BadRequest(c, "missing file part", resputil.ValidationErrorDetail{
			Field: "file", Message: "multipart file is required",
		})
		return
	}

	src, err := header.Open()
	if err != nil {
		resputil.Error(c, err)
		return
	}
	defer src.Close()

	path, err := mgr.files.Save(src, header.Filename)
	if err != nil {
		resputil.Error(c, err)
		return
	}

	file := model.File{
		ProjectID:  project.ID,
		TaskID:     taskID,
		Name:       header.Filename,
		Path:       path,
		MimeType:   header.Header.Get("Content-Type"),
		Size:       header.Size,
		UploadedBy: token.UserID,
	}
	if err := mgr.db.WithContext(c).Create(&file).Error; err != nil {
		mgr.files.TryRemove(path)
		resputil.Error(c, err)
		return
	}

	mgr.recorder.Record(c, token.UserID, project.ID, taskID,
		audit.ActionUpload, audit.SubjectFile, file.Name)
	resputil.Created(c, file)
}

// DownloadFile godoc
// @Summary Download an attachment under its original name
// @Tags File
// @Produce octet-stream
// @Security Session
// @Param id path uint true "file id"
// @Success 200 {file} binary "file content"
// @Failure 403 {object} resputil.ErrorBody "not a member"
// @Failure 404 {object} resputil.ErrorBody "file not found"
// @Router /api/files/{id}/download [get]
func (mgr *FileMgr) DownloadFile(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	file, ok := getOrNotFound[model.File](c, mgr.db, uriReq.ID, "file")
	if !ok {
		return
	}
	if err := mgr.authz.CanView(c, util.GetToken(c), file.ProjectID); err != nil {
		denyResponse(c, err)
		return
	}
	c.FileAttachment(file.Path, file.Name)
}

// DeleteFile godoc
// @Summary Delete an attachment
// @Description Allowed for platform admins, project admins/managers, or the original uploader. Removes the metadata record; the stored file is cleaned up best effort.
// @Tags File
// @Produce json
// @Security Session
// @Param id path uint true "file id"
// @Success 200 {object} any "deleted"
// @Failure 403 {object} resputil.ErrorBody "not permitted"
// @Failure 404 {object} resputil.ErrorBody "file not found"
// @Router /api/files/{id} [delete]
func (mgr *FileMgr) DeleteFile(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	file, ok := getOrNotFound[model.File](c, mgr.db, uriReq.ID, "file")
	if !ok {
		return
	}
	token := util.GetToken(c)
	if err := mgr.authz.CanModerate(c, token, file.ProjectID, file.UploadedBy); err != nil {
		denyResponse(c, err)
		return
	}

	if err := mgr.db.WithContext(c).Delete(file).Error; err != nil {
		resputil.Error(c, err)
		return
	}
	// The record is the source of truth; physical cleanup is best
	// effort and a leftover file only costs disk space.
	mgr.files.TryRemove(file.Path)

	mgr.recorder.Record(c, token.UserID, file.ProjectID, file.TaskID,
		audit.ActionDelete, audit.SubjectFile, file.Name)
	resputil.Success(c, gin.H{"message": "file deleted"})
}
