package main

import (
	"time"

	"k8s.io/klog/v2"

	"github.com/planlane/planlane/cmd/planlane/helper"
)

// @title						Planlane API
// @version					1.0.0
// @description				This is the API server for Planlane, a project management backend.
// @securityDefinitions.apikey	Session
// @in							cookie
// @name						planlane_session
func main() {
	// set global timezone
	time.Local = time.UTC

	configInit := helper.NewConfigInitializer()
	backendConfig := configInit.GetBackendConfig()

	if err := configInit.LoadDebugEnvironment(); err != nil {
		klog.Fatalf("Failed to load env: %s", err)
	}

	deps, err := configInit.InitializeDependencies()
	if err != nil {
		klog.Fatalf("Failed to initialize dependencies: %s\n", err)
	}

	serverRunner := helper.NewServerRunner(backendConfig)
	serverRunner.StartMetricsServer()
	serverRunner.StartScheduler(deps)
	serverRunner.StartServer(deps)
}
