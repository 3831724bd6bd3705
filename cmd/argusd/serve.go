package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/argus-vision/argus/config"
	"github.com/argus-vision/argus/internal/analyzer"
	"github.com/argus-vision/argus/internal/detect"
	"github.com/argus-vision/argus/internal/engine"
	"github.com/argus-vision/argus/internal/storage/sqlite"
	"github.com/argus-vision/argus/internal/stream"
	"github.com/argus-vision/argus/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis loop and streaming server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	fmt.Println("================================================================================")
	fmt.Println("🚀 Argus Vision Analysis Server")
	fmt.Println("================================================================================")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfgPath != "" {
		log.Printf("✅ Configuration loaded from %s", cfgPath)
	} else {
		log.Printf("✅ Running with default configuration")
	}
	log.Printf("   Port: %s", cfg.Server.Port)
	log.Printf("   Module: %s", moduleLabel(cfg.Engine.Module))
	log.Printf("   Frame rate: %.1f fps", cfg.Engine.FrameRate)
	log.Printf("   Object model: %s", pathLabel(cfg.Backend.ObjectModelPath))
	log.Printf("   Face model: %s", pathLabel(cfg.Backend.FaceModelPath))

	if cfg.Engine.Module != "" && !analyzer.Module(cfg.Engine.Module).Valid() {
		return fmt.Errorf("unknown module %q", cfg.Engine.Module)
	}

	// Buffered tick logging
	var bufferedLog *logger.BufferedLogger
	if cfg.Logging.BufferedLogging {
		bufferedLog = logger.NewBufferedLogger(cfg.Logging.AutoFlush, cfg.Logging.SampleRate)
		defer bufferedLog.Stop()
		log.Printf("✅ Buffered logging enabled (sample_rate=%d, auto_flush=%v)",
			cfg.Logging.SampleRate, cfg.Logging.AutoFlush)
	}

	// Alert persistence (optional)
	var alerts *sqlite.AlertStore
	if cfg.Storage.AlertDBPath != "" {
		alerts, err = sqlite.Open(cfg.Storage.AlertDBPath)
		if err != nil {
			return fmt.Errorf("failed to open alert store: %w", err)
		}
		defer alerts.Close()
	} else {
		log.Println("   Alert persistence disabled (no alert_db_path)")
	}

	// Detection backends
	reg := buildRegistry(cfg)
	defer reg.Close()
	adapter := detect.NewAdapter(reg, detect.NewMockGenerator(cfg.Engine.MockSeed))

	// Frame source
	source, err := buildSource(cfg)
	if err != nil {
		return err
	}
	defer source.Close()

	eng := engine.New(engine.Config{
		Module:    analyzer.Module(cfg.Engine.Module),
		FrameRate: cfg.Engine.FrameRate,
	}, source, adapter, reg, bufferedLog)

	// Streaming surface
	hub := stream.NewHub()
	defer hub.Close()

	status := func() stream.Status {
		return stream.Status{
			Status:        "ok",
			Ready:         reg.IsModelReady(),
			Real:          reg.HasRealModels(),
			Ticks:         eng.Ticks(),
			FallbackCalls: adapter.FallbackCalls(),
			Subscribers:   hub.ClientCount(),
			Backends:      reg.Stats(),
		}
	}

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: stream.NewMux(hub, status, alerts),
	}

	errCh := make(chan error, 2)
	go func() {
		fmt.Printf("\n🌐 Streaming server listening on port %s\n", cfg.Server.Port)
		fmt.Println("   GET /ws      live tick results (WebSocket)")
		fmt.Println("   GET /healthz backend and loop status")
		fmt.Println("   GET /alerts  persisted alerts")
		fmt.Println("\n✅ Ready to accept connections!")
		fmt.Println("================================================================================")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go func() {
		err := eng.Run(ctx, func(result engine.TickResult) {
			hub.Broadcast(result)
			if alerts != nil {
				for _, res := range result.Results {
					if len(res.Alerts) > 0 {
						alerts.InsertBatch(string(res.Module), res.Alerts, result.Tick)
					}
				}
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	log.Println("🛑 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  HTTP shutdown: %v", err)
	}
	log.Printf("✅ Stopped after %d ticks", eng.Ticks())
	return nil
}

func buildSource(cfg *config.Config) (engine.FrameSource, error) {
	if cfg.Engine.FramesDir != "" {
		source, err := engine.NewDirectorySource(cfg.Engine.FramesDir, cfg.Engine.Pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to open frames directory: %w", err)
		}
		log.Printf("✅ Replaying %d frames from %s", source.Len(), cfg.Engine.FramesDir)
		return source, nil
	}
	log.Println("   No frames_dir configured, using blank frames")
	return engine.NewStaticSource(0, 0), nil
}

func moduleLabel(module string) string {
	if module == "" {
		return "all"
	}
	return module
}

func pathLabel(path string) string {
	if path == "" {
		return "(none, synthetic fallback)"
	}
	return path
}
