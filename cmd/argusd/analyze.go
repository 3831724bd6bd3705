package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/argus-vision/argus/internal/analyzer"
	"github.com/argus-vision/argus/internal/detect"
	"github.com/argus-vision/argus/internal/engine"
)

var analyzeModule string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [image]",
	Short: "Run one frame through the pipeline and print the result as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image := ""
		if len(args) == 1 {
			image = args[0]
		}
		return runAnalyze(cmd.Context(), image)
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeModule, "module", "m", "", "Module to run (default: all)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(ctx context.Context, image string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if image != "" {
		cfg.Engine.FramesDir = filepath.Dir(image)
		cfg.Engine.Pattern = filepath.Base(image)
	}
	if analyzeModule != "" {
		cfg.Engine.Module = analyzeModule
	}
	if cfg.Engine.Module != "" && !analyzer.Module(cfg.Engine.Module).Valid() {
		return fmt.Errorf("unknown module %q", cfg.Engine.Module)
	}

	reg := buildRegistry(cfg)
	defer reg.Close()

	// One-shot: load synchronously so a real backend gets used if configured.
	if err := reg.Initialize(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Backends degraded, using synthetic detections: %v\n", err)
	}

	adapter := detect.NewAdapter(reg, detect.NewMockGenerator(cfg.Engine.MockSeed))

	source, err := buildSource(cfg)
	if err != nil {
		return err
	}
	defer source.Close()

	eng := engine.New(engine.Config{
		Module: analyzer.Module(cfg.Engine.Module),
	}, source, adapter, reg, nil)

	result, err := eng.AnalyzeOnce(ctx)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
