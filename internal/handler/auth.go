package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/planlane/planlane/dao/model"
	"github.com/planlane/planlane/internal/resputil"
	"github.com/planlane/planlane/internal/util"
	"github.com/planlane/planlane/pkg/config"
	"github.com/planlane/planlane/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewAuthMgr)
}

type AuthMgr struct {
	name     string
	db       *gorm.DB
	tokenMgr *util.TokenManager
}

func NewAuthMgr(conf *RegisterConfig) Manager {
	return &AuthMgr{
		name:     "auth",
		db:       conf.DB,
		tokenMgr: util.GetTokenMgr(),
	}
}

func (mgr *AuthMgr) GetName() string { return mgr.name }

func (mgr *AuthMgr) RegisterPublic(g *gin.RouterGroup) {
	g.POST("/auth/login", mgr.Login)
	g.POST("/auth/logout", mgr.Logout)
}

func (mgr *AuthMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/auth/me", mgr.Me)
}

func (mgr *AuthMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type LoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Authenticate and open a session
// @Description Verifies the credentials and sets the session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body LoginReq true "credentials"
// @Success 200 {object} model.UserView "authenticated user"
// @Failure 400 {object} resputil.ErrorBody "request parameter error"
// @Failure 401 {object} resputil.ErrorBody "invalid credentials"
// @Router /api/auth/login [post]
func (mgr *AuthMgr) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BindError(c, err)
		return
	}

	var user model.User
	err := mgr.db.WithContext(c).Where("username = ?", req.Username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.Unauthorized(c, "invalid credentials")
			return
		}
		resputil.Error(c, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		logutils.Log.WithFields(logutils.Fields{"username": req.Username}).Info("failed login attempt")
		resputil.Unauthorized(c, "invalid credentials")
		return
	}

	token, err := mgr.tokenMgr.CreateToken(&util.JWTMessage{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		resputil.Error(c, err)
		return
	}

	mgr.setSessionCookie(c, token, int(mgr.tokenMgr.SessionTTL().Seconds()))
	resputil.Success(c, user.View())
}

// Logout godoc
// @Summary Close the session
// @Tags Auth
// @Produce json
// @Success 200 {object} any "logged out"
// @Router /api/auth/logout [post]
func (mgr *AuthMgr) Logout(c *gin.Context) {
	mgr.setSessionCookie(c, "", -1)
	resputil.Success(c, gin.H{"message": "logged out"})
}

// Me godoc
// @Summary Current authenticated user
// @Tags Auth
// @Produce json
// @Security Session
// @Success 200 {object} model.UserView "current user"
// @Failure 401 {object} resputil.ErrorBody "not authenticated"
// @Router /api/auth/me [get]
func (mgr *AuthMgr) Me(c *gin.Context) {
	token := util.GetToken(c)

	user, ok := getOrNotFound[model.User](c, mgr.db, token.UserID, "user")
	if !ok {
		return
	}
	resputil.Success(c, user.View())
}

// setSessionCookie writes the session cookie. The Secure flag is only
// set outside debug mode so local HTTP development keeps working.
func (mgr *AuthMgr) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(util.SessionCookie, token, maxAge, "/",
		config.GetConfig().Host, !config.IsDebugMode(), true)
}
