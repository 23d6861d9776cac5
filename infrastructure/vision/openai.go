// Package vision implements field extraction with generative vision models.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docubrain/docubrain/domain/service"
	"github.com/docubrain/docubrain/internal/config"
)

const promptTemplate = "Extract %s from the image as a string value without adding any other English text:"

// OpenAIExtractor extracts field values from images through an
// OpenAI-compatible chat completions endpoint.
type OpenAIExtractor struct {
	client *openai.Client
	model  string
}

var _ service.FieldExtractor = (*OpenAIExtractor)(nil)

// NewOpenAIExtractor creates an extractor from vision configuration.
func NewOpenAIExtractor(cfg config.VisionConfig) *OpenAIExtractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey())
	if cfg.BaseURL() != "" {
		clientCfg.BaseURL = cfg.BaseURL()
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout()}

	return &OpenAIExtractor{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model(),
	}
}

// ExtractField sends the image and a field-specific prompt to the model and
// returns the extracted text with its mean token log-probability.
func (e *OpenAIExtractor) ExtractField(ctx context.Context, image []byte, field string) (service.Extraction, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: fmt.Sprintf(promptTemplate, field),
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: dataURL(image),
						},
					},
				},
			},
		},
		LogProbs: true,
	})
	if err != nil {
		return service.Extraction{}, fmt.Errorf("vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return service.Extraction{}, fmt.Errorf("vision completion: empty response")
	}

	choice := resp.Choices[0]
	text := strings.TrimSpace(choice.Message.Content)

	if avg, ok := avgLogProb(choice.LogProbs); ok {
		return service.NewExtractionWithConfidence(text, avg), nil
	}
	return service.NewExtraction(text), nil
}

// avgLogProb computes the mean token log-probability of a completion.
func avgLogProb(lp *openai.LogProbs) (float64, bool) {
	if lp == nil || len(lp.Content) == 0 {
		return 0, false
	}
	var sum float64
	for _, token := range lp.Content {
		sum += token.LogProb
	}
	return sum / float64(len(lp.Content)), true
}

// dataURL encodes image bytes as a base64 data URL with a sniffed MIME type.
func dataURL(image []byte) string {
	mime := http.DetectContentType(image)
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(image))
}
