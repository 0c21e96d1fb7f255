package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planlane/planlane/dao/model"
)

func whatsappCreateReq() IntegrationCreateReq {
	return IntegrationCreateReq{
		Type:    model.IntegrationWhatsApp,
		Name:    "Gateway",
		Enabled: true,
		Credentials: model.IntegrationCredentials{
			"accessToken":   "super-secret-value",
			"phoneNumberId": "5550001111",
		},
	}
}

func TestDeletedIntegrationTypeCanBeReconfigured(t *testing.T) {
	tr := newTestRouter(t, NewIntegrationMgr)
	admin := tr.seedUser(t, "root", model.GlobalRoleAdmin)
	tr.as(identity(admin))

	w := tr.do(t, http.MethodPost, "/api/integrations", whatsappCreateReq())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created IntegrationResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// A second record of the same type is the real conflict.
	w = tr.do(t, http.MethodPost, "/api/integrations", whatsappCreateReq())
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already configured")

	w = tr.do(t, http.MethodDelete, fmt.Sprintf("/api/integrations/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Deleting must free the type for a fresh configuration.
	w = tr.do(t, http.MethodPost, "/api/integrations", whatsappCreateReq())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var count int64
	require.NoError(t, tr.db.Model(&model.Integration{}).
		Where("type = ?", model.IntegrationWhatsApp).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestIntegrationResponseHidesCredentialValues(t *testing.T) {
	tr := newTestRouter(t, NewIntegrationMgr)
	admin := tr.seedUser(t, "root", model.GlobalRoleAdmin)
	tr.as(identity(admin))

	w := tr.do(t, http.MethodPost, "/api/integrations", whatsappCreateReq())
	require.Equal(t, http.StatusCreated, w.Code)

	var created IntegrationResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.ElementsMatch(t, []string{"accessToken", "phoneNumberId"}, created.CredentialKeys)
	assert.NotContains(t, w.Body.String(), "super-secret-value")
	assert.NotContains(t, w.Body.String(), "5550001111")
}
