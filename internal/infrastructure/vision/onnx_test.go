package vision

import (
	"testing"

	"github.com/stretchr/testify/require"
	ort "github.com/yalue/onnxruntime_go"
)

func TestYOLOOutputShape(t *testing.T) {
	cases := map[string]struct {
		dims ort.Shape
		want ort.Shape
	}{
		"static":          {dims: ort.NewShape(1, 14, 8400), want: ort.NewShape(1, 14, 8400)},
		"dynamic batch":   {dims: ort.NewShape(-1, 14, 8400), want: ort.NewShape(1, 14, 8400)},
		"dynamic anchors": {dims: ort.NewShape(-1, 14, -1), want: ort.NewShape(1, 14, 8400)},
		"wrong rank":      {dims: ort.NewShape(1, 8400), want: ort.NewShape(1, 14, 8400)},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, yoloOutputShape(tc.dims, 10, 640))
		})
	}
}

func TestONNXEngine_Identity(t *testing.T) {
	var e Engine = &onnxEngine{device: DeviceCPU}
	require.Equal(t, BackendONNXRuntime, e.Backend())
	require.Equal(t, DeviceCPU, e.Device())
	require.Error(t, e.Close())
}

func TestONNXEngine_DetectAfterClose(t *testing.T) {
	e := &onnxEngine{inputSize: 32, device: DeviceCPU}

	_, err := e.Detect(colorfulImage(8, 8), 0.25)
	require.ErrorIs(t, err, errSessionClosed)
	require.ErrorIs(t, e.Close(), errSessionClosed)
}
