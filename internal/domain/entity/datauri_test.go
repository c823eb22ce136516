package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataURI_RoundTrip(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0x00, 0x10, 0xFF, 0xD9}

	uri := EncodeDataURI(payload, "image/jpeg")
	require.Equal(t, "data:image/jpeg;base64,/9gAEP/Z", uri)

	data, mimeType, err := DecodeDataURI(uri)
	require.NoError(t, err)
	require.Equal(t, payload, data)
	require.Equal(t, "image/jpeg", mimeType)
}

func TestDecodeDataURI_Errors(t *testing.T) {
	cases := map[string]string{
		"no scheme":   "image/jpeg;base64,AAAA",
		"no payload":  "data:image/jpeg;base64",
		"not base64":  "data:text/plain,hello",
		"bad payload": "data:image/jpeg;base64,@@@",
	}
	for name, uri := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeDataURI(uri)
			require.Error(t, err)
		})
	}
}
