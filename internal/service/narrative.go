// internal/service/narrative.go
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

// NarrativeProvider writes a human-readable report for a flag.
type NarrativeProvider interface {
	Generate(ctx context.Context, flag *models.Flag) (string, error)
}

// Narrator caches provider output per flag version.
type Narrator struct {
	provider NarrativeProvider
	cache    *NarrativeCache
	logger   *zap.Logger
}

func NewNarrator(provider NarrativeProvider, cache *NarrativeCache, logger *zap.Logger) *Narrator {
	return &Narrator{provider: provider, cache: cache, logger: logger}
}

func (n *Narrator) Narrate(ctx context.Context, flag *models.Flag) (string, error) {
	if n.cache != nil {
		if text, err := n.cache.Get(ctx, flag.ID, flag.Version); err == nil {
			return text, nil
		}
	}
	text, err := n.provider.Generate(ctx, flag)
	if err != nil {
		return "", err
	}
	if n.cache != nil {
		_ = n.cache.Set(ctx, flag.ID, flag.Version, text)
	}
	return text, nil
}

// TemplateNarrative renders a deterministic markdown report.
type TemplateNarrative struct{}

func (TemplateNarrative) Generate(ctx context.Context, flag *models.Flag) (string, error) {
	_ = ctx
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", reportHeading(flag))
	b.WriteString("## Executive Summary\n")
	if flag.AISummary != "" {
		b.WriteString(flag.AISummary + "\n\n")
	} else {
		fmt.Fprintf(&b, "%s requires administrative review.\n\n", flag.Title)
	}

	b.WriteString("## Risk Assessment\n")
	fmt.Fprintf(&b, "- **Severity**: %s\n", flag.Severity)
	if flag.Risk != "" {
		fmt.Fprintf(&b, "- **Risk**: %s\n", flag.Risk)
	}
	if flag.Category != "" {
		fmt.Fprintf(&b, "- **Category**: %s\n", flag.Category)
	}
	fmt.Fprintf(&b, "- **Flagged on**: %s\n", flag.FlaggedOn)
	fmt.Fprintf(&b, "- **Status**: %s\n\n", flag.Status)

	b.WriteString("## Evidence\n")
	if len(flag.Evidence) == 0 {
		b.WriteString("- No specific evidence recorded\n")
	}
	for _, ev := range flag.Evidence {
		fmt.Fprintf(&b, "- **%s**: %s\n", ev.Type, ev.Message)
	}
	b.WriteString("\n")

	if flag.Product != nil {
		b.WriteString("## Product\n")
		fmt.Fprintf(&b, "- %s (%s), $%.2f\n\n", flag.Product.Title, flag.Product.Category, flag.Product.Price)
	}
	if flag.Seller != nil {
		b.WriteString("## Seller\n")
		fmt.Fprintf(&b, "- %s, rating %.1f, %d sales, account age %s\n\n",
			flag.Seller.Name, flag.Seller.Rating, flag.Seller.TotalSales, flag.Seller.AccountAge)
	}
	if len(flag.UserUpload) > 0 {
		b.WriteString("## User Upload\n")
		data, err := json.MarshalIndent(flag.UserUpload, "", "  ")
		if err == nil {
			b.WriteString("```json\n" + string(data) + "\n```\n\n")
		}
	}

	b.WriteString("## Recommendations\n")
	for i, step := range recommendedSteps(flag) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return b.String(), nil
}

func reportHeading(flag *models.Flag) string {
	lower := strings.ToLower(flag.Title + " " + flag.Category)
	switch {
	case strings.Contains(lower, "counterfeit") || strings.Contains(lower, "listing") || strings.Contains(lower, "verification"):
		return "Product Authenticity Report"
	case strings.Contains(lower, "review"):
		return "Review Integrity Report"
	default:
		return "Security Alert Report"
	}
}

func recommendedSteps(flag *models.Flag) []string {
	switch flag.Severity {
	case models.SeverityCritical:
		return []string{
			"Suspend the listing or account immediately",
			"Request verification documents from the seller",
			"Review related listings from the same seller",
		}
	case models.SeverityHigh:
		return []string{
			"Hide the content pending review",
			"Investigate the account history",
			"Warn or suspend based on findings",
		}
	default:
		return []string{
			"Review the evidence",
			"Dismiss if the signals are explained, otherwise warn",
		}
	}
}

const narrativeSystemPrompt = `You are a marketplace trust and safety assistant. Given a flag object, write a concise markdown report for human admins with these sections: Executive Summary, Why This Was Flagged, Evidence, User Upload, Recommendations, Next Steps, Risk Assessment.`

// LLMNarrative asks an OpenAI-compatible chat completion endpoint for the
// report, trying each model in order.
type LLMNarrative struct {
	url        string
	apiKey     string
	models     []string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewLLMNarrative(url, apiKey string, models []string, timeout time.Duration, logger *zap.Logger) *LLMNarrative {
	return &LLMNarrative{
		url:        url,
		apiKey:     apiKey,
		models:     models,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

var errUnauthorized = errors.New("narrative endpoint rejected the api key")

func (l *LLMNarrative) Generate(ctx context.Context, flag *models.Flag) (string, error) {
	if l.apiKey == "" {
		return "", errors.New("narrative api key not configured")
	}
	payload, err := json.MarshalIndent(flag, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode flag: %w", err)
	}

	var lastErr error
	for _, model := range l.models {
		text, err := l.complete(ctx, model, string(payload))
		if err == nil {
			return text, nil
		}
		lastErr = err
		if errors.Is(err, errUnauthorized) || ctx.Err() != nil {
			break
		}
		l.logger.Debug("narrative model failed, trying next",
			zap.String("model", model),
			zap.Error(err))
	}
	return "", fmt.Errorf("all narrative models failed: %w", lastErr)
}

func (l *LLMNarrative) complete(ctx context.Context, model, flagJSON string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: narrativeSystemPrompt},
			{Role: "user", Content: "Flag Data (JSON):\n" + flagJSON},
		},
		Temperature: 0.3,
		MaxTokens:   1200,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", errUnauthorized
	case resp.StatusCode >= http.StatusBadRequest:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", errors.New("empty completion")
	}
	return out.Choices[0].Message.Content, nil
}
