// Package ai provides the language-model enhancement backend. It wraps the
// Gemini API behind the same enhance.Backend interface the rule engine
// implements, so callers never know which one is active.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"

	"social-campaign-platform/internal/enhance"
	"social-campaign-platform/internal/logger"
	"social-campaign-platform/models"
)

type GeminiBackend struct {
	apiKey       string
	breaker      *gobreaker.CircuitBreaker
	rateLimiter  *rate.Limiter
	tokenCounter *TokenCounter
	client       *genai.Client
	tier         string
}

type TokenCounter struct {
	mu              sync.Mutex
	minuteTokens    int
	dailyTokens     int
	minuteRequests  int
	dailyRequests   int
	lastMinuteReset time.Time
	lastDayReset    time.Time
	limits          RateLimits
}

type RateLimits struct {
	RPM int // Requests per minute
	TPM int // Tokens per minute
	RPD int // Requests per day
}

func NewGeminiBackend(apiKey string, tier string) (*GeminiBackend, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	// Configure rate limits based on tier
	limits := getRateLimits(tier)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	// RPM limit with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(float64(limits.RPM)*0.9/60.0), limits.RPM/10)

	return &GeminiBackend{
		apiKey:       apiKey,
		breaker:      breaker,
		rateLimiter:  rateLimiter,
		tokenCounter: &TokenCounter{limits: limits},
		client:       client,
		tier:         tier,
	}, nil
}

func getRateLimits(tier string) RateLimits {
	switch tier {
	case "free":
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	case "tier1":
		return RateLimits{RPM: 1000, TPM: 1000000, RPD: 10000}
	case "tier2":
		return RateLimits{RPM: 2000, TPM: 4000000, RPD: 50000}
	default:
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	}
}

// rewriteResponse is the JSON shape the model is asked to answer with.
type rewriteResponse struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Hashtags    []string `json:"hashtags"`
}

// Enhance rewrites the draft according to the instruction. It satisfies
// enhance.Backend; cross-platform fanout is not supported by this backend
// and FanoutDrafts is always nil.
func (gb *GeminiBackend) Enhance(ctx context.Context, req enhance.Request) (enhance.Result, error) {
	tracer := otel.Tracer("gemini-backend")
	ctx, span := tracer.Start(ctx, "gemini.enhance_draft")
	defer span.End()

	result := enhance.Result{Draft: req.Draft.Clone(), AppliedRules: []string{}}

	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		return result, nil
	}

	prompt := buildRewritePrompt(req.Draft, instruction, string(req.Platform))

	// Estimate tokens BEFORE making request
	estimatedTokens := estimateTokens(prompt)
	span.SetAttributes(
		attribute.Int("gemini.estimated_tokens", estimatedTokens),
		attribute.String("gemini.platform", string(req.Platform)),
		attribute.String("gemini.model", "gemini-2.0-flash"),
	)

	if !gb.tokenCounter.CanConsume(estimatedTokens, 1) {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return enhance.Result{}, errors.New("rate limit exceeded: wait before retry")
	}

	if err := gb.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return enhance.Result{}, err
	}

	// Circuit breaker execution
	raw, err := gb.breaker.Execute(func() (interface{}, error) {
		model := gb.client.GenerativeModel("gemini-2.0-flash")
		model.SetTemperature(0.7)
		model.SetMaxOutputTokens(2048)

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			span.SetAttributes(attribute.Bool("gemini.error", true))
			return nil, err
		}

		gb.tokenCounter.RecordUsage(extractTokenUsage(resp), 1)
		return resp, nil
	})

	if err != nil {
		if err == gobreaker.ErrOpenState {
			// Service degraded: return the draft unchanged rather than
			// failing the whole request.
			span.SetAttributes(attribute.Bool("gemini.circuit_breaker_open", true))
			logger.Warn("Gemini circuit breaker open, returning draft unchanged")
			return result, nil
		}
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return enhance.Result{}, err
	}

	resp := raw.(*genai.GenerateContentResponse)
	rewritten, ok := parseRewrite(resp)
	if !ok {
		// The model answered but not in the expected shape; treat it as a
		// no-match outcome.
		span.SetAttributes(attribute.Bool("gemini.unparseable", true))
		return result, nil
	}

	if rewritten.Title != "" {
		result.Draft.Title = rewritten.Title
	}
	if rewritten.Description != "" {
		result.Draft.Description = rewritten.Description
	}
	for _, tag := range rewritten.Hashtags {
		if tag != "" && !result.Draft.HasHashtag(tag) {
			result.Draft.Hashtags = append(result.Draft.Hashtags, tag)
		}
	}

	result.AppliedRules = []string{"gemini"}
	span.SetAttributes(attribute.Bool("gemini.success", true))
	return result, nil
}

func (gb *GeminiBackend) Close() error {
	return gb.client.Close()
}

func buildRewritePrompt(draft models.Draft, instruction, platformName string) string {
	var b strings.Builder
	b.WriteString("You are a social media copywriter. Rewrite the following ")
	b.WriteString(platformName)
	b.WriteString(" post draft according to the instruction.\n\n")
	fmt.Fprintf(&b, "Instruction: %s\n\n", instruction)
	fmt.Fprintf(&b, "Title: %s\n", draft.Title)
	fmt.Fprintf(&b, "Description: %s\n", draft.Description)
	fmt.Fprintf(&b, "Hashtags: %s\n\n", strings.Join(draft.Hashtags, " "))
	b.WriteString("Respond with a single JSON object with keys \"title\", \"description\" and \"hashtags\" (array of strings) and nothing else.")
	return b.String()
}

func parseRewrite(resp *genai.GenerateContentResponse) (rewriteResponse, bool) {
	text := responseText(resp)

	// Models often wrap JSON in a code fence
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var out rewriteResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out); err != nil {
		return rewriteResponse{}, false
	}
	return out, true
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}

func (tc *TokenCounter) CanConsume(tokens, requests int) bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	now := time.Now()

	// Reset counters if time windows expired
	if now.Sub(tc.lastMinuteReset) >= time.Minute {
		tc.minuteTokens = 0
		tc.minuteRequests = 0
		tc.lastMinuteReset = now
	}

	if now.Sub(tc.lastDayReset) >= 24*time.Hour {
		tc.dailyTokens = 0
		tc.dailyRequests = 0
		tc.lastDayReset = now
	}

	if tc.minuteRequests+requests > tc.limits.RPM {
		return false
	}
	if tc.minuteTokens+tokens > tc.limits.TPM {
		return false
	}
	if tc.dailyRequests+requests > tc.limits.RPD {
		return false
	}

	return true
}

func (tc *TokenCounter) RecordUsage(tokens, requests int) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.minuteTokens += tokens
	tc.minuteRequests += requests
	tc.dailyTokens += tokens
	tc.dailyRequests += requests
}

// Rough estimation: 1 token is about 4 characters for Gemini.
func estimateTokens(prompt string) int {
	return len(prompt) / 4
}

// Extract token usage from Gemini response metadata, falling back to a
// character-based estimate.
func extractTokenUsage(resp *genai.GenerateContentResponse) int {
	if resp.UsageMetadata != nil {
		return int(resp.UsageMetadata.TotalTokenCount)
	}
	return len(responseText(resp)) / 4
}
