package helper

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"k8s.io/klog/v2"

	"github.com/planlane/planlane/dao/query"
	"github.com/planlane/planlane/pkg/config"
	"github.com/planlane/planlane/pkg/filestore"
)

// ConfigInitializer wires the process-level dependencies: backend
// config, database, migrations and the attachment store.
type ConfigInitializer struct {
	backendConfig *config.Config
}

func NewConfigInitializer() *ConfigInitializer {
	return &ConfigInitializer{
		backendConfig: config.GetConfig(),
	}
}

func (ci *ConfigInitializer) GetBackendConfig() *config.Config {
	return ci.backendConfig
}

// LoadDebugEnvironment overrides listen addresses from .debug.env when
// running in gin debug mode, so local instances never clash on ports.
func (ci *ConfigInitializer) LoadDebugEnvironment() error {
	if gin.Mode() != gin.DebugMode {
		return nil
	}

	err := godotenv.Load(".debug.env")
	if err != nil {
		return err
	}

	if be := os.Getenv("PLANLANE_BE_PORT"); be != "" {
		ci.backendConfig.ServerAddr = ":" + be
	}
	if ms := os.Getenv("PLANLANE_MS_PORT"); ms != "" {
		ci.backendConfig.MetricsAddr = ":" + ms
	}

	return nil
}

// InitializeDependencies opens the database, applies pending
// migrations and prepares the upload directory.
func (ci *ConfigInitializer) InitializeDependencies() (*Dependencies, error) {
	db := query.GetDB()
	if err := query.Migrate(db); err != nil {
		return nil, err
	}
	klog.Info("database migrations applied")

	files, err := filestore.NewStore(ci.backendConfig.Storage.UploadDir)
	if err != nil {
		return nil, err
	}

	return &Dependencies{DB: db, Files: files}, nil
}
