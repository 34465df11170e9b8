package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator is the real image-generation variant.
type OpenAIGenerator struct {
	api *openai.Client
}

// NewOpenAIFromEnv returns a generator or nil when OPENAI_API_KEY is not set;
// callers fall back to the placeholder variant.
func NewOpenAIFromEnv() *OpenAIGenerator {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil
	}
	return &OpenAIGenerator{api: openai.NewClient(key)}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, width, height int) (*Image, error) {
	if g == nil {
		return nil, errors.New("openai not configured")
	}
	size := openai.CreateImageSize512x512
	if width >= 1024 || height >= 1024 {
		size = openai.CreateImageSize1024x1024
	}
	resp, err := g.api.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		N:              1,
		Size:           size,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("empty image response")
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, err
	}
	return &Image{Data: data, MIME: "image/png", Source: "OpenAI Images"}, nil
}
