package codec

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region methods
// Full method names on the local inference service. Payloads are
// google.protobuf.Struct on both sides.
const (
	generateMethod = "/triage.v1.InferenceService/Generate"
	healthMethod   = "/triage.v1.InferenceService/Health"
)

// #endregion methods

// #region client-struct
// CodecClient talks to the local inference service over gRPC.
type CodecClient struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor
// NewCodecClient connects to the inference gRPC server. The connection is
// established lazily on the first call.
func NewCodecClient(addr string) (*CodecClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &CodecClient{conn: conn, cc: conn}, nil
}

// NewCodecClientWithConn creates a CodecClient over an injected connection.
// Used for testing without a real gRPC server.
func NewCodecClientWithConn(cc grpc.ClientConnInterface) *CodecClient {
	return &CodecClient{cc: cc}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *CodecClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region generate
// Generate sends a prompt, and an optional image path, to the inference
// service.
func (c *CodecClient) Generate(ctx context.Context, req Request) (string, error) {
	payload := map[string]any{
		"prompt":           req.Prompt,
		"max_new_tokens":   req.MaxNewTokens,
		"max_time_seconds": req.MaxTime.Seconds(),
	}
	if req.ImagePath != "" {
		payload["image_path"] = req.ImagePath
	}
	in, err := structpb.NewStruct(payload)
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	out := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, generateMethod, in, out); err != nil {
		return "", fmt.Errorf("generate rpc: %w", err)
	}

	if v, ok := out.GetFields()["available"]; ok && !v.GetBoolValue() {
		return "", ErrUnavailable
	}
	return out.GetFields()["text"].GetStringValue(), nil
}

// #endregion generate

// #region health
// Health reports the model name the service has loaded.
func (c *CodecClient) Health(ctx context.Context) (string, error) {
	out := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, healthMethod, &structpb.Struct{}, out); err != nil {
		return "", fmt.Errorf("health rpc: %w", err)
	}
	return out.GetFields()["model"].GetStringValue(), nil
}

// #endregion health
