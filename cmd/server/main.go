package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/mafia/internal/app"
	"github.com/KirkDiggler/mafia/internal/config"
	"github.com/KirkDiggler/mafia/internal/handlers/web"
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

var (
	flagEnvFile    = flag.String("env", ".env", "Env file loaded before the environment")
	flagConfigFile = flag.String("config", "", "Optional config file (yaml, json or toml)")
	flagAddr       = flag.String("addr", "", "Address to listen on (overrides MAFIA_LISTEN_ADDR)")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	cfg, err := config.Load(&config.LoadInput{
		EnvFile:    *flagEnvFile,
		ConfigFile: *flagConfigFile,
	})
	if err != nil {
		klog.Fatalf("Failed to load config: %v", err)
	}
	if *flagAddr != "" {
		cfg.ListenAddr = *flagAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	services, err := app.New(ctx, cfg)
	if err != nil {
		klog.Fatalf("Failed to start services: %v", err)
	}
	defer services.Close()

	handler, err := web.New(&web.Config{
		GameService: services.Game,
		Scheduler:   services.Scheduler,
		Messaging:   services.Messaging,
		PublicURL:   cfg.PublicURL,
	})
	if err != nil {
		klog.Fatalf("Failed to create web handler: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler.Router(),
	}

	go func() {
		klog.Infof("Mafia server listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			klog.Errorf("Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	// stop room timers before draining connections
	services.Scheduler.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		klog.Errorf("Error shutting down server: %v", err)
	}

	klog.Info("Server has been shut down")
}
