package internal

import (
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/planlane/planlane/internal/audit"
	"github.com/planlane/planlane/internal/authz"
	"github.com/planlane/planlane/internal/handler"
	"github.com/planlane/planlane/internal/middleware"
	"github.com/planlane/planlane/pkg/chatbot"
	"github.com/planlane/planlane/pkg/filestore"
	"github.com/planlane/planlane/pkg/logutils"
)

const apiPrefix = "/api"

type Backend struct {
	R *gin.Engine
}

func Register(db *gorm.DB, files *filestore.Store) *Backend {
	s := new(Backend)
	s.R = gin.New()
	s.R.Use(gin.Logger(), gin.Recovery(), middleware.Metrics())

	// Health check for the ingress / container liveness endpoint.
	s.R.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "ok",
		})
	})

	s.registerService(db, files)

	return s
}

func (b *Backend) registerService(db *gorm.DB, files *filestore.Store) {
	// Enable CORS for http://localhost:XXXX in debug mode
	if gin.Mode() == gin.DebugMode {
		fe := os.Getenv("PLANLANE_FE_PORT")
		if fe != "" {
			url := "http://localhost:" + fe
			corsConf := cors.DefaultConfig()
			corsConf.AllowOrigins = []string{url}
			corsConf.AllowCredentials = true
			b.R.Use(cors.New(corsConf))
		}
	}

	conf := &handler.RegisterConfig{
		DB:       db,
		Authz:    authz.NewService(authz.NewStore(db)),
		Recorder: audit.NewRecorder(db),
		Files:    files,
	}

	publicRouter := b.R.Group(apiPrefix)

	protectedRouter := b.R.Group(apiPrefix)
	protectedRouter.Use(middleware.AuthProtected())

	// Admin routes share the /api prefix; only the middleware chain
	// differs. Gin keeps one tree per method, so a method+path pair
	// must be registered by exactly one of the three groups.
	adminRouter := b.R.Group(apiPrefix)
	adminRouter.Use(middleware.AuthProtected(), middleware.AuthAdmin())

	for _, register := range handler.Registers {
		mgr := register(conf)
		logutils.Log.Infof("register routes for %s", mgr.GetName())
		mgr.RegisterPublic(publicRouter)
		mgr.RegisterProtected(protectedRouter)
		mgr.RegisterAdmin(adminRouter)
	}

	chatbot.RegisterRoutes(protectedRouter.Group("/chatbot"))
}
