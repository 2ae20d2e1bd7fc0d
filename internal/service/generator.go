package service

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Task selects what a TextGenerator does with its input.
type Task string

const (
	TaskPolish    Task = "polish"
	TaskSummarize Task = "summarize"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// TextGenerator rewrites text. It may fail; callers keep their input on error.
type TextGenerator interface {
	Generate(ctx context.Context, task Task, text string) (string, error)
}

// GeminiGenerator implements TextGenerator with the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini-backed generator. It returns
// ErrGeneratorUnavailable when apiKey is empty.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrGeneratorUnavailable
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, task Task, text string) (string, error) {
	var cfg *genai.GenerateContentConfig
	if task == TaskPolish {
		cfg = &genai.GenerateContentConfig{
			ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
		}
	}

	prompt, err := buildPrompt(task, text)
	if err != nil {
		return "", err
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", task, err)
	}

	out := resp.Text()
	if out == "" && task == TaskPolish {
		return text, nil
	}
	return out, nil
}

func buildPrompt(task Task, text string) (string, error) {
	switch task {
	case TaskPolish:
		return `Anda adalah editor ahli untuk blog pribadi.
Tolong poles teks berikut agar lebih ringkas, menarik, dan memiliki alur yang lebih baik,
sambil mempertahankan suara asli penulis.
KEMBALIKAN HANYA TEKS YANG SUDAH DIPOLES DALAM BAHASA INDONESIA, tanpa penjelasan tambahan.

Teks untuk dipoles:
` + text, nil
	case TaskSummarize:
		return `Buatlah ringkasan singkat (excerpt) 1-2 kalimat yang menarik untuk posting blog berikut dalam BAHASA INDONESIA.
Jangan gunakan tanda kutip.

Konten posting:
` + text, nil
	default:
		return "", fmt.Errorf("unknown task %q", task)
	}
}
