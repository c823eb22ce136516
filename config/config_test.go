package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIDENCE_THRESHOLD", "")
	t.Setenv("MODEL_SEARCH_PATHS", "")
	t.Setenv("INFERENCE_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 0.25, cfg.ConfidenceThreshold)
	require.Equal(t, "onnxruntime", cfg.Backend)
	require.Equal(t, 640, cfg.InputSize)
	require.Nil(t, cfg.ModelSearchPaths)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CONFIDENCE_THRESHOLD", "0.4")
	t.Setenv("MODEL_SEARCH_PATHS", " a.onnx, ,b.onnx")
	t.Setenv("RETURN_ANNOTATED", "false")
	t.Setenv("WORKERS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 0.4, cfg.ConfidenceThreshold)
	require.Equal(t, []string{"a.onnx", "b.onnx"}, cfg.ModelSearchPaths)
	require.False(t, cfg.ReturnAnnotated)
	require.Equal(t, 1, cfg.Workers)
}

func TestLoad_InvalidThreshold(t *testing.T) {
	t.Setenv("CONFIDENCE_THRESHOLD", "1.5")

	_, err := Load()
	require.Error(t, err)
}
