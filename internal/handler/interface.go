package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/planlane/planlane/internal/audit"
	"github.com/planlane/planlane/internal/authz"
	"github.com/planlane/planlane/pkg/filestore"
)

type Manager interface {
	GetName() string
	RegisterPublic(group *gin.RouterGroup)
	RegisterProtected(group *gin.RouterGroup)
	RegisterAdmin(group *gin.RouterGroup)
}

// RegisterConfig carries the dependencies handlers are built from, so
// they depend on injected collaborators instead of package singletons.
type RegisterConfig struct {
	DB       *gorm.DB
	Authz    *authz.Service
	Recorder *audit.Recorder
	Files    *filestore.Store
}

type Register func(conf *RegisterConfig) Manager

var Registers []Register
