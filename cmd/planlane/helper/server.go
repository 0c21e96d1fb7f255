package helper

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/planlane/planlane/internal"
	"github.com/planlane/planlane/pkg/chatbot"
	"github.com/planlane/planlane/pkg/config"
	"github.com/planlane/planlane/pkg/filestore"
	"github.com/planlane/planlane/pkg/notify"
)

// Dependencies is the set of process-wide collaborators the server is
// built from.
type Dependencies struct {
	DB    *gorm.DB
	Files *filestore.Store
}

// ServerRunner owns the HTTP server lifecycle: the API endpoint, the
// metrics endpoint and the reminder scheduler.
type ServerRunner struct {
	backendConfig *config.Config
	scheduler     *chatbot.Scheduler
}

func NewServerRunner(backendConfig *config.Config) *ServerRunner {
	return &ServerRunner{
		backendConfig: backendConfig,
	}
}

var (
	readHeaderTimeout = 10 * time.Second
	cancelTimeout     = 10 * time.Second
)

// StartMetricsServer serves /metrics on its own listener so the
// scrape endpoint is never exposed through the API ingress.
func (sr *ServerRunner) StartMetricsServer() {
	if sr.backendConfig.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              sr.backendConfig.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		klog.Info("starting metrics server on ", sr.backendConfig.MetricsAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			klog.Fatalf("metrics listen: %s\n", err)
		}
	}()
}

// StartScheduler starts the due-task reminder loop when enabled.
func (sr *ServerRunner) StartScheduler(deps *Dependencies) {
	if !sr.backendConfig.Chatbot.Enable {
		return
	}

	sr.scheduler = chatbot.NewScheduler(deps.DB, chatbot.NewWhatsAppSender(), notify.NewEmailSender())
	if err := sr.scheduler.Setup(sr.backendConfig.Chatbot.ReminderSpec); err != nil {
		klog.Fatalf("failed to start reminder scheduler: %s\n", err)
	}
}

// StartServer runs the API server and blocks until a shutdown signal.
func (sr *ServerRunner) StartServer(deps *Dependencies) {
	klog.Info("starting server")
	backend := internal.Register(deps.DB, deps.Files)

	// reference: https://gin-gonic.com/en/docs/examples/graceful-restart-or-stop
	srv := &http.Server{
		Addr:              sr.backendConfig.ServerAddr,
		Handler:           backend.R,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			klog.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 10 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	klog.Info("Shutdown Gin Server ...")

	if sr.scheduler != nil {
		sr.scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cancelTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		klog.Info("Gin Server Shutdown:", err)
	}
	klog.Info("Gin Server exiting")
}
