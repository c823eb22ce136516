package container

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"derma-vision/config"
	"derma-vision/internal/domain/entity"
)

func TestNew_MissingModelFailsGracefully(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := &config.Config{
		Backend:             "onnxruntime",
		ModelSearchPaths:    []string{filepath.Join(t.TempDir(), "absent.onnx")},
		ConfidenceThreshold: 0.25,
		HistoryLimit:        5,
		Workers:             1,
	}

	c, err := New(cfg, logger, prometheus.NewRegistry())
	require.NoError(t, err)
	defer c.Close()

	result := c.AnalysisService.Analyze(context.Background(), entity.AnalysisRequest{
		Image:     []byte("photo bytes"),
		Threshold: c.DefaultThreshold,
	})
	require.False(t, result.Success)
	require.Contains(t, result.Error, "model not found")
}

func TestNew_UnknownBackend(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	_, err := New(&config.Config{Backend: "tensorflow"}, logger, prometheus.NewRegistry())
	require.Error(t, err)
}
