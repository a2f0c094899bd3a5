package codec

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// #region openai-config
// OpenAIConfig selects an OpenAI-compatible chat completion endpoint.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string // empty uses the public API
	Model       string
	System      string // optional system message
	Temperature float32
}

// #endregion openai-config

// #region openai-client
// OpenAIClient generates text through an OpenAI-compatible chat API. Images
// are sent as an image_url content part.
type OpenAIClient struct {
	client *openai.Client
	cfg    OpenAIConfig
}

// NewOpenAIClient builds a client for cfg. A blank model defaults to gpt-4o-mini.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		cfg:    cfg,
	}
}

// #endregion openai-client

// #region openai-generate
// Generate sends req as a single user turn and returns the first choice.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	imageURL := ""
	if req.ImagePath != "" {
		url, err := imageURLFor(req.ImagePath)
		if err != nil {
			log.Printf("[CODEC] image %s skipped: %v", req.ImagePath, err)
		} else {
			imageURL = url
		}
	}
	if imageURL != "" {
		user.MultiContent = []openai.ChatMessagePart{
			{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: imageURL, Detail: openai.ImageURLDetailAuto},
			},
			{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
		}
	} else {
		user.Content = req.Prompt
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if c.cfg.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: c.cfg.System})
	}
	messages = append(messages, user)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   req.MaxNewTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// #endregion openai-generate

// #region image
// imageURLFor passes http(s) URLs through and inlines local files as a
// base64 data URL.
func imageURLFor(path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("unsupported content type %s", mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// #endregion image
