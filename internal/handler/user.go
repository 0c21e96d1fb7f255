package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/planlane/planlane/dao/model"
	"github.com/planlane/planlane/internal/resputil"
	"github.com/planlane/planlane/internal/util"
	"github.com/planlane/planlane/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewUserMgr)
}

type UserMgr struct {
	name string
	db   *gorm.DB
}

func NewUserMgr(conf *RegisterConfig) Manager {
	return &UserMgr{
		name: "users",
		db:   conf.DB,
	}
}

func (mgr *UserMgr) GetName() string { return mgr.name }

func (mgr *UserMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *UserMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/users", mgr.ListUsers)
	g.GET("/users/:id", mgr.GetUser)
	g.PUT("/users/:id", mgr.UpdateUser)
}

func (mgr *UserMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("/users", mgr.CreateUser)
}

type CreateUserReq struct {
	Username string           `json:"username" binding:"required,min=3,max=32"`
	Email    string           `json:"email" binding:"required,email"`
	Password string           `json:"password" binding:"required,min=8"`
	Name     string           `json:"name"`
	Role     model.GlobalRole `json:"role"`
}

type UpdateUserReq struct {
	Email    *string           `json:"email" binding:"omitempty,email"`
	Password *string           `json:"password" binding:"omitempty,min=8"`
	Name     *string           `json:"name"`
	Role     *model.GlobalRole `json:"role"`
}

// ListUsers godoc
// @Summary List all users
// @Tags User
// @Produce json
// @Security Session
// @Success 200 {object} []model.UserView "users"
// @Failure 500 {object} resputil.ErrorBody "other errors"
// @Router /api/users [get]
func (mgr *UserMgr) ListUsers(c *gin.Context) {
	var users []model.User
	if err := mgr.db.WithContext(c).Order("id").Find(&users).Error; err != nil {
		resputil.Error(c, err)
		return
	}
	resputil.Success(c, lo.Map(users, func(u model.User, _ int) model.UserView {
		return u.View()
	}))
}

// GetUser godoc
// @Summary Get one user
// @Tags User
// @Produce json
// @Security Session
// @Param id path uint true "user id"
// @Success 200 {object} model.UserView "user"
// @Failure 404 {object} resputil.ErrorBody "user not found"
// @Router /api/users/{id} [get]
func (mgr *UserMgr) GetUser(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	user, ok := getOrNotFound[model.User](c, mgr.db, uriReq.ID, "user")
	if !ok {
		return
	}
	resputil.Success(c, user.View())
}

// CreateUser godoc
// @Summary Create a user
// @Description Platform admins create accounts; username and email must be unique
// @Tags User
// @Accept json
// @Produce json
// @Security Session
// @Param data body CreateUserReq true "new user"
// @Success 201 {object} model.UserView "created user"
// @Failure 400 {object} resputil.ErrorBody "validation or duplicate username/email"
// @Failure 403 {object} resputil.ErrorBody "administrator role required"
// @Router /api/users [post]
func (mgr *UserMgr) CreateUser(c *gin.Context) {
	var req CreateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BindError(c, err)
		return
	}

	role := req.Role
	if role == "" {
		role = model.GlobalRoleUser
	}
	if !role.Valid() {
		resputil.BadRequest(c, "unknown role", resputil.ValidationErrorDetail{
			Field: "role", Message: "must be admin or user",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		resputil.Error(c, err)
		return
	}

	user := model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hash),
		Name:     req.Name,
		Role:     role,
	}
	if err := mgr.db.WithContext(c).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			resputil.Conflict(c, "username or email already taken")
			return
		}
		resputil.Error(c, err)
		return
	}

	logutils.Log.Infof("user created: %s", user.Username)
	resputil.Created(c, user.View())
}

// UpdateUser godoc
// @Summary Update a user profile
// @Description Users update their own profile; only platform admins update others or change roles
// @Tags User
// @Accept json
// @Produce json
// @Security Session
// @Param id path uint true "user id"
// @Param data body UpdateUserReq true "fields to update"
// @Success 200 {object} model.UserView "updated user"
// @Failure 403 {object} resputil.ErrorBody "not permitted"
// @Failure 404 {object} resputil.ErrorBody "user not found"
// @Router /api/users/{id} [put]
func (mgr *UserMgr) UpdateUser(c *gin.Context) {
	var uriReq IDReq
	if err := c.ShouldBindUri(&uriReq); err != nil {
		resputil.BindError(c, err)
		return
	}
	var req UpdateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BindError(c, err)
		return
	}

	token := util.GetToken(c)
	if !token.IsAdmin() && token.UserID != uriReq.ID {
		resputil.Forbidden(c, "you may only update your own profile")
		return
	}
	// Non-admin callers never reach the role column.
	if !token.IsAdmin() {
		req.Role = nil
	}

	user, ok := getOrNotFound[model.User](c, mgr.db, uriReq.ID, "user")
	if !ok {
		return
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			resputil.BadRequest(c, "unknown role", resputil.ValidationErrorDetail{
				Field: "role", Message: "must be admin or user",
			})
			return
		}
		user.Role = *req.Role
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			resputil.Error(c, err)
			return
		}
		user.Password = string(hash)
	}

	if err := mgr.db.WithContext(c).Save(user).Error; err != nil {
		if isUniqueViolation(err) {
			resputil.Conflict(c, "email already taken")
			return
		}
		resputil.Error(c, err)
		return
	}
	resputil.Success(c, user.View())
}
