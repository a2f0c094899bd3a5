package codec

import (
	"fmt"
	"strings"
)

// #region backend
// Backend kinds accepted by Open.
const (
	BackendFallback = "fallback"
	BackendGRPC     = "grpc"
	BackendOpenAI   = "openai"
)

// BackendConfig describes one generation backend.
type BackendConfig struct {
	Kind     string
	GRPCAddr string
	OpenAI   OpenAIConfig
}

// Open builds the Generator for cfg. The returned close func is never nil.
func Open(cfg BackendConfig) (Generator, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", BackendFallback:
		return Fallback{}, noop, nil
	case BackendGRPC:
		c, err := NewCodecClient(cfg.GRPCAddr)
		if err != nil {
			return nil, noop, err
		}
		return c, c.Close, nil
	case BackendOpenAI:
		return NewOpenAIClient(cfg.OpenAI), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown generator backend %q", cfg.Kind)
	}
}

// #endregion backend
