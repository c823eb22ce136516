//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"derma-vision/internal/domain/entity"
)

// dnnEngine инференс через OpenCV DNN. gocv.Net не потокобезопасен,
// поэтому сети лежат в пуле и выдаются вызовам по одной.
type dnnEngine struct {
	pool      chan gocv.Net
	nets      []gocv.Net
	inputSize int
	iou       float64
	device    string
}

func newDNNOpener(cfg EngineConfig, logger *logrus.Logger) EngineOpener {
	log := logger.WithField("component", "opencv_dnn")
	return func(path string) (Engine, entity.ClassCatalog, error) {
		e := &dnnEngine{
			pool:      make(chan gocv.Net, cfg.PoolSize),
			inputSize: cfg.InputSize,
			iou:       cfg.IOUThreshold,
			device:    DeviceCPU,
		}
		if cfg.Device == DeviceCUDA {
			e.device = DeviceCUDA
		}

		for i := 0; i < cfg.PoolSize; i++ {
			net := gocv.ReadNetFromONNX(path)
			if net.Empty() {
				_ = e.Close()
				return nil, nil, errors.New("failed to load network")
			}
			if e.device == DeviceCUDA {
				net.SetPreferableBackend(gocv.NetBackendCUDA)
				net.SetPreferableTarget(gocv.NetTargetCUDA)
			} else {
				net.SetPreferableBackend(gocv.NetBackendDefault)
				net.SetPreferableTarget(gocv.NetTargetCPU)
			}
			e.nets = append(e.nets, net)
			e.pool <- net
		}

		log.WithFields(logrus.Fields{"pool": cfg.PoolSize, "device": e.device}).Info("Detection network initialized successfully")
		return e, nil, nil
	}
}

func (e *dnnEngine) Detect(img image.Image, threshold float64) ([]RawDetection, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.New("empty image")
	}

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(e.inputSize, e.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	net := <-e.pool
	defer func() { e.pool <- net }()

	net.SetInput(blob, "")
	output := net.Forward("")
	defer output.Close()

	sizes := output.Size()
	if len(sizes) != 3 {
		return nil, fmt.Errorf("unexpected output shape %v", sizes)
	}
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read output: %w", err)
	}

	out := yoloOutput{
		data:      data,
		channels:  sizes[1],
		anchors:   sizes[2],
		inputSize: e.inputSize,
	}
	return out.decode(mat.Cols(), mat.Rows(), threshold, e.iou), nil
}

func (e *dnnEngine) Backend() string { return BackendOpenCV }

func (e *dnnEngine) Device() string { return e.device }

func (e *dnnEngine) Close() error {
	for _, net := range e.nets {
		net.Close()
	}
	e.nets = nil
	return nil
}
