package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/codeGROOVE-dev/sitefinder/pkg/config"
)

const maxPromptContent = 4000

// OpenAI classifies through an OpenAI-compatible chat completion endpoint,
// such as a local Ollama or vLLM server.
type OpenAI struct {
	client      *openai.Client
	logger      *slog.Logger
	model       string
	timeout     time.Duration
	temperature float32
}

// NewOpenAI creates a classifier from configuration. cfg.Endpoint is the
// API base URL, for example "http://ollama.lan:11434/v1".
func NewOpenAI(cfg config.Classifier, logger *slog.Logger) *OpenAI {
	if logger == nil {
		logger = slog.Default()
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	return &OpenAI{
		client:      openai.NewClientWithConfig(oc),
		logger:      logger,
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
	}
}

type aiCategory struct {
	Category      string   `json:"category"`
	Confidence    float64  `json:"confidence"`
	Subcategories []string `json:"subcategories_found"`
	Keywords      []string `json:"evidence_keywords"`
}

type aiResponse struct {
	Categories     []aiCategory `json:"all_applicable_categories"`
	BusinessFocus  string       `json:"business_focus"`
	MarketSegments []string     `json:"market_segments"`
	Confidence     float64      `json:"overall_confidence"`
}

// Classify implements Classifier.
func (o *OpenAI) Classify(ctx context.Context, text string, tax Taxonomy) (*Classification, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: o.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(text, tax)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassify, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrClassify)
	}

	raw := resp.Choices[0].Message.Content
	// Some local models wrap the object in prose or code fences.
	if i, j := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); i >= 0 && j > i {
		raw = raw[i : j+1]
	}
	var ar aiResponse
	if err := json.Unmarshal([]byte(raw), &ar); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrClassify, err)
	}

	out := &Classification{
		Source:         SourceAI,
		Categories:     make([]Category, 0, len(ar.Categories)),
		Confidence:     ar.Confidence,
		BusinessFocus:  ar.BusinessFocus,
		MarketSegments: ar.MarketSegments,
	}
	for _, c := range ar.Categories {
		if c.Category == "" {
			continue
		}
		out.Categories = append(out.Categories, Category{
			Name:          c.Category,
			Confidence:    c.Confidence,
			Subcategories: c.Subcategories,
			Keywords:      c.Keywords,
		})
	}
	if out.Confidence == 0 && len(out.Categories) > 0 {
		out.Confidence = out.Categories[0].Confidence
	}
	o.logger.DebugContext(ctx, "ai classification", "model", o.model, "categories", len(out.Categories), "confidence", out.Confidence)
	return out, nil
}

const systemPrompt = `Sei un analista che classifica aziende italiane per settore industriale.
Rispondi solo con un oggetto JSON valido.`

func userPrompt(text string, tax Taxonomy) string {
	var b strings.Builder
	b.WriteString("Identifica tutte le aree industriali in cui opera l'azienda secondo la tassonomia.\n\n")
	b.WriteString("CONTENUTO SITO WEB:\n")
	b.WriteString(truncateRunes(text, maxPromptContent))
	b.WriteString("\n\nTASSONOMIA:\n")
	for _, name := range tax.Categories() {
		subs := tax[name]
		if len(subs) > 4 {
			subs = subs[:4]
		}
		fmt.Fprintf(&b, "- %s: %s\n", name, strings.Join(subs, ", "))
	}
	b.WriteString(`
FORMATO:
{"all_applicable_categories":[{"category":"...","confidence":0.0,"subcategories_found":[],"evidence_keywords":[]}],
 "business_focus":"...","market_segments":[],"overall_confidence":0.0}`)
	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
