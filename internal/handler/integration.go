package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/planlane/planlane/dao/model"
	"github.com/planlane/planlane/internal/resputil"
	"github.com/planlane/planlane/internal/util"
	"github.com/planlane/planlane/pkg/chatbot"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewIntegrationMgr)
}

type IntegrationMgr struct {
	name string
	db   *gorm.DB
}

func NewIntegrationMgr(conf *RegisterConfig) Manager {
	return &IntegrationMgr{
		name: "integrations",
		db:   conf.DB,
	}
}

func (mgr *IntegrationMgr) GetName() string { return mgr.name }

func (mgr *IntegrationMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *IntegrationMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *IntegrationMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.GET("/integrations", mgr.ListIntegrations)
	g.POST("/integrations", mgr.CreateIntegration)
	g.PUT("/integrations/:id", mgr.UpdateIntegration)
	g.DELETE("/integrations/:id", mgr.DeleteIntegration)
	g.POST("/integrations/whatsapp/test", mgr.TestWhatsApp)
}

type (
	IntegrationCreateReq struct {
		Type        model.IntegrationType        `json:"type" binding:"required"`
		Name        string                       `json:"name" binding:"required,max=128"`
		Enabled     bool                         `json:"enabled"`
		Credentials model.IntegrationCredentials `json:"credentials" binding:"required"`
	}

	IntegrationUpdateReq struct {
		Type        *model.IntegrationType       `json:"type"`
		Name        *string                      `json:"name" binding:"omitempty,max=128"`
		Enabled     *bool                        `json:"enabled"`
		Credentials model.IntegrationCredentials `json:"credentials"`
	}

	// IntegrationResp exposes which credential keys are stored without
	// echoing their values.
	IntegrationResp struct {
		ID             uint                  `json:"id"`
		Type           model.IntegrationType `json:"type"`
		Name           string                `json:"name"`
		Enabled        bool                  `json:"enabled"`
		CredentialKeys []string              `json:"credentialKeys"`
		ConfiguredBy   uint                  `json:"configuredBy"`
		CreatedAt      time.Time             `json:"createdAt"`
	}
)

func integrationResp(i *model.Integration) IntegrationResp {
	return IntegrationResp{
		ID:             i.ID,
		Type:           i.Type,
		Name:           i.Name,
		Enabled:        i.Enabled,
		CredentialKeys: lo.Keys(i.Credentials.Data()),
		ConfiguredBy:   i.ConfiguredBy,
		CreatedAt:      i.CreatedAt,
	}
}

// typeTaken reports whether an integration of the given type already
// exists, ignoring the record identified by excludeID.
func (mgr *IntegrationMgr) typeTaken(c *gin.Context, t model.IntegrationType, excludeID uint) (bool, error) {
	var count int64
	err := mgr.db.WithContext(c).Model(&model.Integration{}).
		Where("type = ? AND id <> ?", t, excludeID).
		Count(&count).Error
	return count > 0, err
}

// ListIntegrations godoc
// @Summary List configured integrations
// @Tags Integration
// @Produce json
// @Security Session
// @Success 200 {object} []IntegrationResp "integrations"
// @Router /api/integrations [get]
func (mgr *IntegrationMgr) ListIntegrations(c *gin.Context) {
	var integrations []model.Integration
	if err := mgr.db.WithContext(c).Order("id").Find(&integrations).Error; err != nil {
		resputil.Error(c, err)
		return
	}
	resp := lo.Map(integrations, func(i model.Integration, _ int) IntegrationResp {
		return integrationResp(&i)
	})
	resputil.Success(c, resp)
}

// CreateIntegration godoc
// @Summary Configure a new integration
// @Description At most one integration may exist per type
// @Tags Integration
// @Accept json
// @Produce json
// @Security Session
// @Param data body IntegrationCreateReq true "integration"
// @Success 201 {object} IntegrationResp "created integration"
// @Failure 400 {object} resputil.ErrorBody "type already configured"
// @Router /api/integrations [post]
func (mgr *IntegrationMgr) CreateIntegration(c *gin.Context) {
	var req IntegrationCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BindError(c, err)
		return
	}
	if !req.Type.Valid() {
		resputil.BadRequest(c, "unknown integration type")
		return
	}
	taken, err := mgr.typeTaken(c, req.Type, 0)
	if err != nil {
		resputil.Error(c, err)
		return
	}
	if taken {
		resputil.Conflict(c, "integration type already configured")
		return
	}

	integration := model.Integration{
		Type:         req.Type,
		Name:         req.Name,
		Enabled:      req.Enabled,
		Credentials:  datatypes.NewJSONType(req.Credentials),
		ConfiguredBy: util.GetToken(c).UserID,
	}
	if err := mgr.db.WithContext(c).Create(&integration).Error; err != nil {
		if isUniqueViolation(err) {
			resputil.Conflict(c, "integration type already configured")
			return
		}
		resputil.Error(c, err)
		return
	}
	resputil.Created(c, integrationResp(&integration))
}

// UpdateIntegration godoc
// @Summary Update an integration
// @Description Retargeting the type onto an already-configured type is rejected
// @Tags Integration
// @Accept json
// @Produce json
// @Security Session
// @Param id path uint true "integration id"
// @Param data body IntegrationUpdateReq true "fields to change"
// @Success 200 {object} IntegrationResp "updated integration"
// @Failure 400 {object} resputil.ErrorBody "type already configured"
// @Failure 404 {object} resputil.ErrorBody "integration not found"
// @Router /api/integrations/{id} [put]
func (mgr *IntegrationMgr) UpdateIntegration(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	var req IntegrationUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BindError(c, err)
		return
	}

	integration, ok := getOrNotFound[model.Integration](c, mgr.db, uriReq.ID, "integration")
	if !ok {
		return
	}
	if req.Type != nil && *req.Type != integration.Type {
		if !req.Type.Valid() {
			resputil.BadRequest(c, "unknown integration type")
			return
		}
		taken, err := mgr.typeTaken(c, *req.Type, integration.ID)
		if err != nil {
			resputil.Error(c, err)
			return
		}
		if taken {
			resputil.Conflict(c, "integration type already configured")
			return
		}
		integration.Type = *req.Type
	}
	if req.Name != nil {
		integration.Name = *req.Name
	}
	if req.Enabled != nil {
		integration.Enabled = *req.Enabled
	}
	if req.Credentials != nil {
		integration.Credentials = datatypes.NewJSONType(req.Credentials)
	}

	if err := mgr.db.WithContext(c).Save(integration).Error; err != nil {
		if isUniqueViolation(err) {
			resputil.Conflict(c, "integration type already configured")
			return
		}
		resputil.Error(c, err)
		return
	}
	resputil.Success(c, integrationResp(integration))
}

// DeleteIntegration godoc
// @Summary Delete an integration
// @Tags Integration
// @Produce json
// @Security Session
// @Param id path uint true "integration id"
// @Success 200 {object} any "deleted"
// @Failure 404 {object} resputil.ErrorBody "integration not found"
// @Router /api/integrations/{id} [delete]
func (mgr *IntegrationMgr) DeleteIntegration(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	integration, ok := getOrNotFound[model.Integration](c, mgr.db, uriReq.ID, "integration")
	if !ok {
		return
	}
	if err := mgr.db.WithContext(c).Delete(integration).Error; err != nil {
		resputil.Error(c, err)
		return
	}
	resputil.Success(c, gin.H{"message": "integration deleted"})
}

// TestWhatsApp godoc
// @Summary Verify the stored WhatsApp credentials
// @Description Checks that the configured credential set carries every field the channel requires
// @Tags Integration
// @Produce json
// @Security Session
// @Success 200 {object} any "ok flag with an optional reason"
// @Failure 404 {object} resputil.ErrorBody "integration not found"
// @Router /api/integrations/whatsapp/test [post]
func (mgr *IntegrationMgr) TestWhatsApp(c *gin.Context) {
	var integration model.Integration
	err := mgr.db.WithContext(c).
		Where("type = ?", model.IntegrationWhatsApp).
		First(&integration).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		resputil.NotFound(c, "integration not found")
		return
	}
	if err != nil {
		resputil.Error(c, err)
		return
	}

	if err := chatbot.VerifyCredentials(integration.Type, integration.Credentials.Data()); err != nil {
		resputil.Success(c, gin.H{"ok": false, "reason": err.Error()})
		return
	}
	resputil.Success(c, gin.H{"ok": true})
}
