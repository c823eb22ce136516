package vision

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	BackendONNXRuntime = "onnxruntime"
	BackendOpenCV      = "opencv"

	DeviceAuto = "auto"
	DeviceCPU  = "cpu"
	DeviceCUDA = "cuda"
)

// EngineConfig общие настройки бэкендов
type EngineConfig struct {
	Backend      string
	Device       string // auto, cpu, cuda
	LibraryPath  string // путь к libonnxruntime
	InputSize    int
	IOUThreshold float64
	Threads      int // потоков на сессию onnxruntime, 0 по умолчанию
	PoolSize     int // сетей OpenCV в пуле
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.Backend == "" {
		c.Backend = BackendONNXRuntime
	}
	if c.Device == "" {
		c.Device = DeviceAuto
	}
	if c.InputSize <= 0 {
		c.InputSize = DefaultInputSize
	}
	if c.IOUThreshold <= 0 || c.IOUThreshold > 1 {
		c.IOUThreshold = DefaultIOUThreshold
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 1
	}
	return c
}

// NewEngineOpener выбирает бэкенд по конфигурации.
func NewEngineOpener(cfg EngineConfig, logger *logrus.Logger) (EngineOpener, error) {
	cfg = cfg.withDefaults()
	switch strings.ToLower(cfg.Backend) {
	case BackendONNXRuntime:
		return newONNXOpener(cfg, logger), nil
	case BackendOpenCV:
		return newDNNOpener(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown inference backend %q", cfg.Backend)
	}
}
