package httpclient

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/torosent/variantbench/internal/config"
)

// BodySource produces a fresh request body for every attempt.
type BodySource interface {
	NewReader() (io.ReadCloser, error)
	ContentLength() (int64, bool)
}

func NewBodySource(cfg *config.Config) (BodySource, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	payloadFile := strings.TrimSpace(cfg.PayloadFile)
	if cfg.Payload != "" && payloadFile != "" {
		return nil, errors.New("payload and payload file cannot both be provided")
	}

	if cfg.Payload != "" {
		return &inlineBodySource{data: []byte(cfg.Payload)}, nil
	}

	if payloadFile != "" {
		info, err := os.Stat(payloadFile)
		if err != nil {
			return nil, fmt.Errorf("payload file: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("payload file %q is a directory", payloadFile)
		}
		return &fileBodySource{path: payloadFile, size: info.Size()}, nil
	}

	return emptyBodySource{}, nil
}

type inlineBodySource struct {
	data []byte
}

func (s *inlineBodySource) NewReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func (s *inlineBodySource) ContentLength() (int64, bool) {
	return int64(len(s.data)), true
}

type fileBodySource struct {
	path string
	size int64
}

func (s *fileBodySource) NewReader() (io.ReadCloser, error) {
	return os.Open(s.path)
}

func (s *fileBodySource) ContentLength() (int64, bool) {
	return s.size, true
}

type emptyBodySource struct{}

func (emptyBodySource) NewReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func (emptyBodySource) ContentLength() (int64, bool) {
	return 0, true
}
