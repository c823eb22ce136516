package vision

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"derma-vision/internal/domain/entity"
)

var ortMu sync.Mutex

// initONNXRuntime инициализирует окружение onnxruntime один раз на процесс.
func initONNXRuntime(libraryPath string) error {
	ortMu.Lock()
	defer ortMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}
	return nil
}

// onnxEngine инференс через onnxruntime. DynamicAdvancedSession принимает
// тензоры на каждый вызов, поэтому Run можно звать из нескольких горутин.
type onnxEngine struct {
	mu          sync.RWMutex
	session     *ort.DynamicAdvancedSession
	inputSize   int
	outputShape ort.Shape
	iou         float64
	device      string
}

func newONNXOpener(cfg EngineConfig, logger *logrus.Logger) EngineOpener {
	log := logger.WithField("component", "onnxruntime")
	return func(path string) (Engine, entity.ClassCatalog, error) {
		if err := initONNXRuntime(cfg.LibraryPath); err != nil {
			return nil, nil, err
		}

		inputs, outputs, err := ort.GetInputOutputInfo(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read model inputs: %w", err)
		}
		if len(inputs) != 1 || len(outputs) < 1 {
			return nil, nil, fmt.Errorf("unexpected model signature: %d inputs, %d outputs", len(inputs), len(outputs))
		}

		catalog := readONNXNames(path, log)

		inputSize := cfg.InputSize
		if dims := inputs[0].Dimensions; len(dims) == 4 && dims[2] > 0 {
			inputSize = int(dims[2])
		}
		numClasses := len(catalog)
		if numClasses == 0 {
			numClasses = entity.DefaultClassCatalog().Len()
		}
		outputShape := yoloOutputShape(outputs[0].Dimensions, numClasses, inputSize)

		session, device, err := newONNXSession(path, inputs[0].Name, outputs[0].Name, cfg, log)
		if err != nil {
			return nil, nil, err
		}

		return &onnxEngine{
			session:     session,
			inputSize:   inputSize,
			outputShape: outputShape,
			iou:         cfg.IOUThreshold,
			device:      device,
		}, catalog, nil
	}
}

// yoloOutputShape фиксирует форму выхода [1, 4+nc, N]. Динамический батч
// заменяется на 1, остальные динамические оси выводятся из числа классов и размера входа.
func yoloOutputShape(dims ort.Shape, numClasses, inputSize int) ort.Shape {
	if len(dims) != 3 || dims[1] <= 0 || dims[2] <= 0 {
		return ort.NewShape(1, int64(4+numClasses), int64(anchorCount(inputSize)))
	}
	return ort.NewShape(1, dims[1], dims[2])
}

// newONNXSession создаёт сессию на GPU, если он доступен, иначе на CPU.
func newONNXSession(path, input, output string, cfg EngineConfig, log *logrus.Entry) (*ort.DynamicAdvancedSession, string, error) {
	if cfg.Device != DeviceCPU {
		session, err := newCUDASession(path, input, output, cfg)
		if err == nil {
			return session, DeviceCUDA, nil
		}
		if cfg.Device == DeviceCUDA {
			return nil, "", fmt.Errorf("failed to create CUDA session: %w", err)
		}
		log.WithError(err).Info("CUDA is not available, using CPU")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()
	if cfg.Threads > 0 {
		if err := options.SetIntraOpNumThreads(cfg.Threads); err != nil {
			return nil, "", fmt.Errorf("failed to set thread count: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(path, []string{input}, []string{output}, options)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create ONNX session: %w", err)
	}
	return session, DeviceCPU, nil
}

func newCUDASession(path, input, output string, cfg EngineConfig) (*ort.DynamicAdvancedSession, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, err
	}
	defer options.Destroy()

	cudaOptions, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return nil, err
	}
	defer cudaOptions.Destroy()
	if err := cudaOptions.Update(map[string]string{"device_id": "0"}); err != nil {
		return nil, err
	}
	if err := options.AppendExecutionProviderCUDA(cudaOptions); err != nil {
		return nil, err
	}
	if cfg.Threads > 0 {
		if err := options.SetIntraOpNumThreads(cfg.Threads); err != nil {
			return nil, err
		}
	}
	return ort.NewDynamicAdvancedSession(path, []string{input}, []string{output}, options)
}

// readONNXNames достаёт каталог классов из метаданных модели, nil если их нет.
func readONNXNames(path string, log *logrus.Entry) entity.ClassCatalog {
	meta, err := ort.GetModelMetadata(path)
	if err != nil {
		log.WithError(err).Debug("Model metadata is not available")
		return nil
	}
	defer meta.Destroy()

	raw, ok, err := meta.LookupCustomMetadataMap("names")
	if err != nil || !ok {
		return nil
	}
	return parseNames(raw)
}

var errSessionClosed = errors.New("session already closed")

// Detect держит RLock на время инференса, Close ждёт его завершения.
func (e *onnxEngine) Detect(img image.Image, threshold float64) ([]RawDetection, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.session == nil {
		return nil, errSessionClosed
	}

	size := int64(e.inputSize)
	input, err := ort.NewTensor(ort.NewShape(1, 3, size, size), imageToTensor(img, e.inputSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](e.outputShape)
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer output.Destroy()

	if err := e.session.Run([]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output}); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	b := img.Bounds()
	out := yoloOutput{
		data:      output.GetData(),
		channels:  int(e.outputShape[1]),
		anchors:   int(e.outputShape[2]),
		inputSize: e.inputSize,
	}
	return out.decode(b.Dx(), b.Dy(), threshold, e.iou), nil
}

func (e *onnxEngine) Backend() string { return BackendONNXRuntime }

func (e *onnxEngine) Device() string { return e.device }

func (e *onnxEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return errSessionClosed
	}
	err := e.session.Destroy()
	e.session = nil
	return err
}
