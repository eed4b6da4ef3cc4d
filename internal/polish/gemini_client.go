package polish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiRequest is the provider-specific form of an LLMRequest.
type geminiRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int32
	Temperature float32
}

type geminiGenerateAPI interface {
	GenerateContent(ctx context.Context, req geminiRequest) (*genai.GenerateContentResponse, error)
}

// genaiModels configures a GenerativeModel per request on a shared client.
type genaiModels struct {
	client *genai.Client
}

func (g genaiModels) GenerateContent(ctx context.Context, req geminiRequest) (*genai.GenerateContentResponse, error) {
	model := g.client.GenerativeModel(req.Model)
	if req.Temperature > 0 {
		model.SetTemperature(req.Temperature)
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(req.MaxTokens)
	}
	if req.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}
	return model.GenerateContent(ctx, genai.Text(req.Prompt))
}

// GeminiClient implements LLMClient using Google's Gemini API.
type GeminiClient struct {
	api     geminiGenerateAPI
	closer  io.Closer
	modelID string
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, apiKey, modelID string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("polish: gemini api key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("polish: failed to create gemini client: %w", err)
	}

	c := newGeminiClient(genaiModels{client: client}, modelID)
	c.closer = client
	return c, nil
}

func newGeminiClient(api geminiGenerateAPI, modelID string) *GeminiClient {
	if strings.TrimSpace(modelID) == "" {
		modelID = defaultGeminiModel
	}
	return &GeminiClient{api: api, modelID: modelID}
}

// Complete implements LLMClient.
func (c *GeminiClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	modelID := c.modelID
	if strings.TrimSpace(req.Model) != "" {
		modelID = req.Model
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return LLMResponse{}, errors.New("polish: prompt is required")
	}

	resp, err := c.api.GenerateContent(ctx, geminiRequest{
		Model:       modelID,
		System:      strings.TrimSpace(strings.Join(req.System, "\n\n")),
		Prompt:      prompt,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return LLMResponse{}, fmt.Errorf("polish: gemini completion failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return LLMResponse{}, ErrEmptyCompletion
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return LLMResponse{}, ErrEmptyCompletion
	}

	result := LLMResponse{Text: strings.TrimSpace(text.String())}
	if resp.UsageMetadata != nil {
		result.Usage = TokenUsage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  resp.UsageMetadata.TotalTokenCount,
		}
	}
	return result, nil
}

// Close releases resources held by the Gemini client.
func (c *GeminiClient) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
