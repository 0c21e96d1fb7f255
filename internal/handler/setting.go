package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/planlane/planlane/dao/model"
	"github.com/planlane/planlane/internal/resputil"
	"github.com/planlane/planlane/pkg/filestore"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewSettingMgr)
}

type SettingMgr struct {
	name  string
	db    *gorm.DB
	files *filestore.Store
}

func NewSettingMgr(conf *RegisterConfig) Manager {
	return &SettingMgr{
		name:  "settings",
		db:    conf.DB,
		files: conf.Files,
	}
}

func (mgr *SettingMgr) GetName() string { return mgr.name }

func (mgr *SettingMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *SettingMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/settings", mgr.GetSettings)
	g.GET("/settings/logo", mgr.GetLogo)
}

func (mgr *SettingMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.PUT("/settings", mgr.UpdateSettings)
	g.POST("/settings/logo", mgr.UploadLogo)
}

type (
	SettingUpdateReq struct {
		AppName  *string `json:"appName" binding:"omitempty,min=1,max=128"`
		Language *string `json:"language" binding:"omitempty,bcp47_language_tag"`
	}

	SettingResp struct {
		AppName  string `json:"appName"`
		Language string `json:"language"`
		HasLogo  bool   `json:"hasLogo"`
	}
)

// current returns the singleton settings row, creating it with defaults
// on first access.
func (mgr *SettingMgr) current(c *gin.Context) (*model.Setting, error) {
	var setting model.Setting
	err := mgr.db.WithContext(c).Order("id").First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = model.Setting{AppName: "Planlane", Language: "en"}
		err = mgr.db.WithContext(c).Create(&setting).Error
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func settingResp(s *model.Setting) SettingResp {
	return SettingResp{
		AppName:  s.AppName,
		Language: s.Language,
		HasLogo:  s.LogoPath != "",
	}
}

// GetSettings godoc
// @Summary Read application settings
// @Tags Setting
// @Produce json
// @Security Session
// @Success 200 {object} SettingResp "settings"
// @Router /api/settings [get]
func (mgr *SettingMgr) GetSettings(c *gin.Context) {
	setting, err := mgr.current(c)
	if err != nil {
		resputil.Error(c, err)
		return
	}
	resputil.Success(c, settingResp(setting))
}

// UpdateSettings godoc
// @Summary Update application settings
// @Tags Setting
// @Accept json
// @Produce json
// @Security Session
// @Param data body SettingUpdateReq true "fields to change"
// @Success 200 {object} SettingResp "updated settings"
// @Router /api/settings [put]
func (mgr *SettingMgr) UpdateSettings(c *gin.Context) {
	var req SettingUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BindError(c, err)
		return
	}

	setting, err := mgr.current(c)
	if err != nil {
		resputil.Error(c, err)
		return
	}
	if req.AppName != nil {
		setting.AppName = *req.AppName
	}
	if req.Language != nil {
		setting.Language = *req.Language
	}
	if err := mgr.db.WithContext(c).Save(setting).Error; err != nil {
		resputil.Error(c, err)
		return
	}
	resputil.Success(c, settingResp(setting))
}

// GetLogo godoc
// @Summary Download the configured application logo
// @Tags Setting
// @Produce octet-stream
// @Security Session
// @Success 200 {file} binary "logo image"
// @Failure 404 {object} resputil.ErrorBody "no logo configured"
// @Router /api/settings/logo [get]
func (mgr *SettingMgr) GetLogo(c *gin.Context) {
	setting, err := mgr.current(c)
	if err != nil {
		resputil.Error(c, err)
		return
	}
	if setting.LogoPath == "" {
		resputil.NotFound(c, "logo not found")
		return
	}
	c.File(setting.LogoPath)
}

// UploadLogo godoc
// @Summary Replace the application logo
// @Tags Setting
// @Accept multipart/form-data
// @Produce json
// @Security Session
// @Param file formData file true "logo image"
// @Success 200 {object} SettingResp "updated settings"
// @Router /api/settings/logo [post]
func (mgr *SettingMgr) UploadLogo(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		resputil.BadRequest(c, "file field is required")
		return
	}
	src, err := header.Open()
	if err != nil {
		resputil.Error(c, err)
		return
	}
	defer src.Close()

	setting, err := mgr.current(c)
	if err != nil {
		resputil.Error(c, err)
		return
	}

	path, err := mgr.files.Save(src, header.Filename)
	if err != nil {
		resputil.Error(c, err)
		return
	}

	previous := setting.LogoPath
	setting.LogoPath = path
	if err := mgr.db.WithContext(c).Save(setting).Error; err != nil {
		mgr.files.TryRemove(path)
		resputil.Error(c, err)
		return
	}
	if previous != "" {
		mgr.files.TryRemove(previous)
	}
	resputil.Success(c, settingResp(setting))
}
