package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/argus-vision/argus/config"
	"github.com/argus-vision/argus/internal/detect"
	"github.com/argus-vision/argus/internal/registry"
)

// Version is the application version.
const Version = "0.1.0"

var cfgPath string

var rootCmd = &cobra.Command{
	Use:     "argusd",
	Short:   "Frame-by-frame video analysis and monitoring engine",
	Version: Version,
}

func main() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to YAML config (default: built-in defaults)")
}

// loadConfig reads the configured file or falls back to defaults.
func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildRegistry wires the ONNX loader from config. Model paths may be
// empty; the registry then converges to the synthetic-only state.
func buildRegistry(cfg *config.Config) *registry.Registry {
	loader := &detect.ONNXLoader{
		Runtime: detect.RuntimeConfig{
			LibraryPath:  cfg.Backend.LibraryPath,
			UseCUDA:      cfg.Backend.UseCUDA,
			CUDADeviceID: cfg.Backend.CUDADeviceID,
		},
		ObjectModelPath: cfg.Backend.ObjectModelPath,
		FaceModelPath:   cfg.Backend.FaceModelPath,
		InputWidth:      cfg.Backend.InputWidth,
		InputHeight:     cfg.Backend.InputHeight,
	}
	return registry.New(loader, registry.Config{
		MaxAttempts:  cfg.Backend.MaxLoadAttempts,
		RetryBackoff: time.Duration(cfg.Backend.RetryBackoffSecs) * time.Second,
		LoadTimeout:  time.Duration(cfg.Backend.LoadTimeoutSecs) * time.Second,
	})
}
