package vision

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"derma-vision/internal/domain/entity"
)

// Engine бэкенд инференса над загруженной моделью.
// Detect должен быть безопасен для одновременных вызовов.
type Engine interface {
	Detect(img image.Image, threshold float64) ([]RawDetection, error)
	Backend() string
	Device() string
	Close() error
}

// EngineOpener открывает модель по пути. Каталог классов возвращается, если модель его содержит.
type EngineOpener func(path string) (Engine, entity.ClassCatalog, error)

// LoadedModel загруженная модель, только для чтения
type LoadedModel struct {
	Path    string
	Catalog entity.ClassCatalog
	Engine  Engine
}

// DefaultModelCandidates пути, по которым ищется модель, если путь не задан.
func DefaultModelCandidates() []string {
	return []string{
		"models/yolov8s_50epochs.onnx",
		"models/yolov8n_custom.onnx",
		"backend/models/yolov8s_50epochs.onnx",
		"backend/models/yolov8n_custom.onnx",
		"../models/yolov8s_50epochs.onnx",
		"../models/yolov8n_custom.onnx",
	}
}

// ModelLoader находит и загружает модель. Загрузка выполняется один раз,
// даже при одновременном первом обращении; неудачную загрузку можно повторить.
type ModelLoader struct {
	path       string
	candidates []string
	open       EngineOpener
	log        *logrus.Entry

	mu    sync.Mutex
	model atomic.Pointer[LoadedModel]
}

// NewModelLoader создаёт загрузчик. Если path пустой, перебираются candidates.
func NewModelLoader(path string, candidates []string, open EngineOpener, logger *logrus.Logger) *ModelLoader {
	if len(candidates) == 0 {
		candidates = DefaultModelCandidates()
	}
	return &ModelLoader{
		path:       path,
		candidates: candidates,
		open:       open,
		log:        logger.WithField("component", "model_loader"),
	}
}

// Resolve возвращает путь к существующему файлу модели.
func (l *ModelLoader) Resolve(path string) (string, error) {
	if path != "" {
		if fileExists(path) {
			return path, nil
		}
		return "", fmt.Errorf("%w: %s", entity.ErrModelNotFound, path)
	}
	for _, candidate := range l.candidates {
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: searched %s", entity.ErrModelNotFound, strings.Join(l.candidates, ", "))
}

// Load загружает модель (заменяя ранее загруженную). Пустой path означает
// путь из конфигурации, а если и он пуст, перебор candidates.
func (l *ModelLoader) Load(path string) (*LoadedModel, error) {
	if path == "" {
		path = l.path
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(path)
}

// Get возвращает загруженную модель, при первом обращении загружает её.
func (l *ModelLoader) Get() (*LoadedModel, error) {
	if m := l.model.Load(); m != nil {
		return m, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if m := l.model.Load(); m != nil {
		return m, nil
	}
	return l.load(l.path)
}

// Loaded возвращает модель, если она уже загружена
func (l *ModelLoader) Loaded() *LoadedModel {
	return l.model.Load()
}

// Close освобождает движок
func (l *ModelLoader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	m := l.model.Swap(nil)
	if m == nil || m.Engine == nil {
		return nil
	}
	return m.Engine.Close()
}

func (l *ModelLoader) load(path string) (*LoadedModel, error) {
	resolved, err := l.Resolve(path)
	if err != nil {
		l.log.WithError(err).Error("Model file not found")
		return nil, err
	}

	l.log.WithField("path", resolved).Info("Loading model")
	engine, catalog, err := l.open(resolved)
	if err != nil {
		l.log.WithError(err).WithField("path", resolved).Error("Failed to load model")
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrModelUnavailable, resolved, err)
	}

	if sidecar, err := readSidecarCatalog(resolved); err != nil {
		l.log.WithError(err).Warn("Could not read model metadata file")
	} else if sidecar != nil {
		catalog = sidecar
	}
	if len(catalog) == 0 {
		l.log.Warn("Could not get class names from model, using defaults")
		catalog = entity.DefaultClassCatalog()
	}

	model := &LoadedModel{Path: resolved, Catalog: catalog, Engine: engine}
	if old := l.model.Swap(model); old != nil && old.Engine != nil {
		_ = old.Engine.Close()
	}

	l.log.WithFields(logrus.Fields{
		"path":    resolved,
		"backend": engine.Backend(),
		"device":  engine.Device(),
		"classes": len(catalog),
	}).Info("Model loaded successfully")
	return model, nil
}

// modelMetadata файл с описанием модели рядом с весами
type modelMetadata struct {
	Classes   []string `json:"classes"`
	ImageSize int      `json:"image_size"`
}

// readSidecarCatalog читает <model>.json или model_metadata.json из каталога модели.
// Если файла нет, возвращает nil без ошибки.
func readSidecarCatalog(modelPath string) (entity.ClassCatalog, error) {
	ext := filepath.Ext(modelPath)
	paths := []string{
		strings.TrimSuffix(modelPath, ext) + ".json",
		filepath.Join(filepath.Dir(modelPath), "model_metadata.json"),
	}
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var meta modelMetadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		if len(meta.Classes) == 0 {
			continue
		}
		catalog := make(entity.ClassCatalog, len(meta.Classes))
		for i, name := range meta.Classes {
			catalog[i] = name
		}
		return catalog, nil
	}
	return nil, nil
}

var namesEntry = regexp.MustCompile(`(\d+)\s*:\s*['"]([^'"]*)['"]`)

// parseNames разбирает метаданные names из экспорта ultralytics: {0: 'acne', 1: 'blackhead'}
func parseNames(raw string) entity.ClassCatalog {
	matches := namesEntry.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil
	}
	catalog := make(entity.ClassCatalog, len(matches))
	for _, m := range matches {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		catalog[id] = m[2]
	}
	return catalog
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
