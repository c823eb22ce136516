//go:build !gocv
// +build !gocv

package vision

import (
	"errors"

	"github.com/sirupsen/logrus"

	"derma-vision/internal/domain/entity"
)

// newDNNOpener возвращает ошибку, если сборка без тега gocv.
func newDNNOpener(cfg EngineConfig, logger *logrus.Logger) EngineOpener {
	_ = cfg
	_ = logger
	return func(path string) (Engine, entity.ClassCatalog, error) {
		_ = path
		return nil, nil, errors.New("gocv build tag is not enabled")
	}
}
