package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"9000\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "9000" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Backend.MaxLoadAttempts != 3 {
		t.Errorf("max load attempts = %d, want 3", cfg.Backend.MaxLoadAttempts)
	}
	if cfg.Backend.InputWidth != 640 || cfg.Backend.InputHeight != 640 {
		t.Errorf("input dims = %dx%d, want 640x640", cfg.Backend.InputWidth, cfg.Backend.InputHeight)
	}
	if cfg.Engine.FrameRate != 15 {
		t.Errorf("frame rate = %v, want 15", cfg.Engine.FrameRate)
	}
	if cfg.Engine.Pattern != "*.png" {
		t.Errorf("pattern = %q", cfg.Engine.Pattern)
	}
}

func TestLoadResolvesModelPaths(t *testing.T) {
	path := writeConfig(t, `
models_root: /opt/argus/models
backend:
  object_model_path: yolov5s.onnx
  face_model_path: /abs/face.onnx
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Backend.ObjectModelPath != "/opt/argus/models/yolov5s.onnx" {
		t.Errorf("object model path = %q", cfg.Backend.ObjectModelPath)
	}
	if cfg.Backend.FaceModelPath != "/abs/face.onnx" {
		t.Errorf("absolute path rewritten: %q", cfg.Backend.FaceModelPath)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("malformed YAML accepted")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != "8090" {
		t.Errorf("default port = %q", cfg.Server.Port)
	}
	if cfg.Engine.Module != "" {
		t.Errorf("default module = %q, want empty (all modules)", cfg.Engine.Module)
	}
}
