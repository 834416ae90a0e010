package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Fixed generation parameters. These match the tuning the product was
// validated with and are not configurable.
const (
	geminiTemperature     = 0.7
	geminiTopP            = 0.95
	geminiTopK            = 40
	geminiMaxOutputTokens = 2048
)

// Gemini completes conversations against the Google Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini completer for the given model.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Complete sends the conversation to Gemini. A leading system message becomes
// the system instruction; the remaining turns map to user/model contents.
func (g *Gemini) Complete(ctx context.Context, msgs []Message) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](geminiTemperature),
		TopP:            genai.Ptr[float32](geminiTopP),
		TopK:            genai.Ptr[float32](geminiTopK),
		MaxOutputTokens: geminiMaxOutputTokens,
		SafetySettings:  safetySettings(),
	}

	var contents []*genai.Content
	for i, msg := range msgs {
		switch msg.Role {
		case RoleSystem:
			if i == 0 {
				cfg.SystemInstruction = genai.NewContentFromText(msg.Content, genai.RoleUser)
				continue
			}
			// A system message past the first turn is treated as user input.
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(contents) == 0 {
		return "", fmt.Errorf("no hay mensajes para completar")
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generando respuesta con %s: %w", g.model, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("respuesta vacía del modelo %s", g.model)
	}
	return text, nil
}

// Model returns the configured model name.
func (g *Gemini) Model() string {
	return g.model
}

func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	settings := make([]*genai.SafetySetting, len(categories))
	for i, cat := range categories {
		settings[i] = &genai.SafetySetting{
			Category:  cat,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		}
	}
	return settings
}
