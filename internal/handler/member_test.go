package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"github.com/planlane/planlane/dao/model"
	"github.com/planlane/planlane/internal/audit"
	"github.com/planlane/planlane/internal/authz"
	"github.com/planlane/planlane/internal/util"
)

// testRouter mounts handlers over a throwaway sqlite database with the
// caller identity injected directly, so member and integration flows
// run end to end without minting a session cookie.
type testRouter struct {
	engine *gin.Engine
	db     *gorm.DB
	actor  util.JWTMessage
}

func newTestRouter(t *testing.T, registers ...Register) *testRouter {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        filepath.Join(t.TempDir(), "planlane_test.db"),
	}, &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Project{}, &model.ProjectMember{},
		&model.Phase{}, &model.Task{}, &model.ChecklistItem{},
		&model.File{}, &model.Activity{}, &model.Comment{},
		&model.Integration{}, &model.Setting{},
	))

	tr := &testRouter{engine: gin.New(), db: db}
	conf := &RegisterConfig{
		DB:       db,
		Authz:    authz.NewService(authz.NewStore(db)),
		Recorder: audit.NewRecorder(db),
	}
	api := tr.engine.Group("/api")
	api.Use(func(c *gin.Context) { util.SetJWTContext(c, tr.actor) })
	for _, register := range registers {
		mgr := register(conf)
		mgr.RegisterProtected(api)
		mgr.RegisterAdmin(api)
	}
	return tr
}

func (tr *testRouter) as(actor util.JWTMessage) {
	tr.actor = actor
}

func (tr *testRouter) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	tr.engine.ServeHTTP(w, req)
	return w
}

func (tr *testRouter) seedUser(t *testing.T, username string, role model.GlobalRole) *model.User {
	t.Helper()
	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "irrelevant",
		Name:     username,
		Role:     role,
	}
	require.NoError(t, tr.db.Create(user).Error)
	return user
}

func (tr *testRouter) seedProject(t *testing.T, owner *model.User) *model.Project {
	t.Helper()
	project := &model.Project{Name: "Launch", CreatedBy: owner.ID}
	require.NoError(t, tr.db.Create(project).Error)
	require.NoError(t, tr.db.Create(&model.ProjectMember{
		ProjectID: project.ID, UserID: owner.ID, Role: model.RoleAdmin,
	}).Error)
	return project
}

func (tr *testRouter) activityCount(t *testing.T, subject, action string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, tr.db.Model(&model.Activity{}).
		Where("subject = ? AND action = ?", subject, action).
		Count(&count).Error)
	return count
}

func identity(u *model.User) util.JWTMessage {
	return util.JWTMessage{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func memberPath(projectID, userID uint) string {
	return fmt.Sprintf("/api/projects/%d/members/%d", projectID, userID)
}

func TestRemovedMemberCanBeReAdded(t *testing.T) {
	tr := newTestRouter(t, NewMemberMgr)
	owner := tr.seedUser(t, "alice", model.GlobalRoleUser)
	guest := tr.seedUser(t, "bob", model.GlobalRoleUser)
	project := tr.seedProject(t, owner)
	tr.as(identity(owner))

	addPath := fmt.Sprintf("/api/projects/%d/members", project.ID)
	addBody := AddMemberReq{UserID: guest.ID, Role: model.RoleMember}

	w := tr.do(t, http.MethodPost, addPath, addBody)
	require.Equal(t, http.StatusCreated, w.Code)

	// A second add of the same active member is the real conflict.
	w = tr.do(t, http.MethodPost, addPath, addBody)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already a member")

	w = tr.do(t, http.MethodDelete, memberPath(project.ID, guest.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Removal must actually free the (project, user) slot.
	w = tr.do(t, http.MethodPost, addPath, addBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var members int64
	require.NoError(t, tr.db.Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", project.ID, guest.ID).
		Count(&members).Error)
	assert.EqualValues(t, 1, members)
}

func TestRemoveLastAdminRejected(t *testing.T) {
	tr := newTestRouter(t, NewMemberMgr)
	owner := tr.seedUser(t, "alice", model.GlobalRoleUser)
	project := tr.seedProject(t, owner)
	tr.as(identity(owner))

	w := tr.do(t, http.MethodDelete, memberPath(project.ID, owner.ID), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "admin")

	var members int64
	require.NoError(t, tr.db.Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", project.ID, owner.ID).
		Count(&members).Error)
	assert.EqualValues(t, 1, members, "rejected removal must leave the membership intact")
}

func TestDemoteLastAdminRejected(t *testing.T) {
	tr := newTestRouter(t, NewMemberMgr)
	owner := tr.seedUser(t, "alice", model.GlobalRoleUser)
	second := tr.seedUser(t, "bob", model.GlobalRoleUser)
	project := tr.seedProject(t, owner)
	tr.as(identity(owner))

	rolePath := memberPath(project.ID, owner.ID) + "/role"
	w := tr.do(t, http.MethodPut, rolePath, UpdateMemberRoleReq{Role: model.RoleMember})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "admin")

	// With a second admin on the project the demotion goes through.
	require.NoError(t, tr.db.Create(&model.ProjectMember{
		ProjectID: project.ID, UserID: second.ID, Role: model.RoleAdmin,
	}).Error)
	w = tr.do(t, http.MethodPut, rolePath, UpdateMemberRoleReq{Role: model.RoleMember})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var member model.ProjectMember
	require.NoError(t, tr.db.
		Where("project_id = ? AND user_id = ?", project.ID, owner.ID).
		First(&member).Error)
	assert.Equal(t, model.RoleMember, member.Role)
}

func TestMemberMutationsRecordOneActivityEach(t *testing.T) {
	tr := newTestRouter(t, NewMemberMgr)
	owner := tr.seedUser(t, "alice", model.GlobalRoleUser)
	guest := tr.seedUser(t, "bob", model.GlobalRoleUser)
	project := tr.seedProject(t, owner)
	tr.as(identity(owner))

	addPath := fmt.Sprintf("/api/projects/%d/members", project.ID)
	w := tr.do(t, http.MethodPost, addPath, AddMemberReq{UserID: guest.ID, Role: model.RoleMember})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.EqualValues(t, 1, tr.activityCount(t, audit.SubjectMember, audit.ActionCreate))

	w = tr.do(t, http.MethodPut, memberPath(project.ID, guest.ID)+"/role",
		UpdateMemberRoleReq{Role: model.RoleManager})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, tr.activityCount(t, audit.SubjectMember, audit.ActionUpdate))

	w = tr.do(t, http.MethodDelete, memberPath(project.ID, guest.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, tr.activityCount(t, audit.SubjectMember, audit.ActionDelete))

	// A rejected mutation must not leave a trace.
	w = tr.do(t, http.MethodDelete, memberPath(project.ID, owner.ID), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 1, tr.activityCount(t, audit.SubjectMember, audit.ActionDelete))
}
