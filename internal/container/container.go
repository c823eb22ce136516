package container

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"derma-vision/config"
	app "derma-vision/internal/application"
	"derma-vision/internal/domain/policy"
	"derma-vision/internal/infrastructure/describer"
	"derma-vision/internal/infrastructure/metrics"
	"derma-vision/internal/infrastructure/storage"
	"derma-vision/internal/infrastructure/vision"
)

type Container struct {
	UserService     *app.UserService
	AnalysisService *app.AnalysisService
	Models          *vision.ModelLoader

	DefaultThreshold float64
	ReturnAnnotated  bool
	HistoryLimit     int
	Workers          int
}

// New собирает сервисы приложения. Модель загружается лениво, при первом анализе.
func New(cfg *config.Config, logger *logrus.Logger, reg prometheus.Registerer) (*Container, error) {
	opener, err := vision.NewEngineOpener(vision.EngineConfig{
		Backend:      cfg.Backend,
		Device:       cfg.Device,
		LibraryPath:  cfg.ONNXRuntimeLib,
		InputSize:    cfg.InputSize,
		IOUThreshold: cfg.IOUThreshold,
		Threads:      cfg.InferenceThreads,
		PoolSize:     cfg.NetPoolSize,
	}, logger)
	if err != nil {
		return nil, err
	}

	loader := vision.NewModelLoader(cfg.ModelPath, cfg.ModelSearchPaths, opener, logger)

	userService := app.NewUserService(storage.NewMemoryUserRepository())
	analysisService := app.NewAnalysisService(app.AnalysisDeps{
		Preprocessor: vision.NewPreprocessor(logger),
		Detector:     vision.NewDetector(loader, logger),
		Annotator:    vision.NewAnnotator(),
		Policy:       policy.Default(),
		Describer:    describer.NewTemplateDescriber(),
		History:      storage.NewMemoryAnalysisRepository(cfg.HistoryLimit),
		Metrics:      metrics.NewRecorder(reg),
		Logger:       logger,
	})

	return &Container{
		UserService:      userService,
		AnalysisService:  analysisService,
		Models:           loader,
		DefaultThreshold: cfg.ConfidenceThreshold,
		ReturnAnnotated:  cfg.ReturnAnnotated,
		HistoryLimit:     cfg.HistoryLimit,
		Workers:          cfg.Workers,
	}, nil
}

// Close освобождает модель
func (c *Container) Close() error {
	return c.Models.Close()
}
