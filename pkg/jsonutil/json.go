// Package jsonutil centralizes JSON (de)serialization behind sonic so the
// rest of the tree never imports encoding/json or bytedance/sonic directly.
package jsonutil

import (
	"io"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/decoder"
)

var api = sonic.ConfigStd

func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

func MarshalString(v any) (string, error) {
	b, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// NewDecoder wraps a streaming JSON body (a single non-streamed provider
// response, not an SSE stream) the way callers would encoding/json.NewDecoder.
func NewDecoder(r io.Reader) *decoder.StreamDecoder {
	return decoder.NewStreamDecoder(r)
}
