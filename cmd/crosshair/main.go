package main

import (
	"log"
	"os"

	"crosshair/internal/config"
	"crosshair/internal/imageload"
	"crosshair/internal/lifecycle"
	"crosshair/internal/monitor"
	"crosshair/internal/reporter"
	"crosshair/pkg/backend"
)

var (
	version = "0.1.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		log.Printf("Invalid configuration: %v", err)
		return 1
	}

	log.Printf("crosshair %s (%s) starting on %s", version, commit, backend.DetectDisplayServer())

	// Window calls are bound to this goroutine from here on
	b, err := backend.New()
	if err != nil {
		log.Printf("Failed to open window backend: %v", err)
		return 1
	}
	defer b.Close()

	loader, err := imageload.Open()
	if err != nil {
		log.Printf("Failed to open codec session: %v", err)
		return 1
	}

	rep := reporter.New(cfg)
	ctrl := lifecycle.New(cfg, b, monitor.NewScreenEnumerator(), loader, rep)

	if err := ctrl.Start(); err != nil {
		log.Printf("Startup failed: %v", err)
		ctrl.Shutdown()
		return lifecycle.ExitCode(err)
	}

	return ctrl.Run()
}
