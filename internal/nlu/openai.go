package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.Classifier = (*OpenAIClient)(nil)
	_ domain.Responder  = (*OpenAIClient)(nil)
)

// ClientOption configures the OpenAIClient.
type ClientOption func(*OpenAIClient)

// WithTemperature overrides the sampling temperature used for answers.
func WithTemperature(t float32) ClientOption {
	return func(c *OpenAIClient) { c.temperature = t }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *OpenAIClient) { c.timeout = d }
}

// OpenAIClient classifies utterances and answers questions through any
// OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	log         *logger.Logger
}

// NewOpenAIClient creates a client. apiBase may be empty for the public
// OpenAI API.
func NewOpenAIClient(apiKey, apiBase, model string, log *logger.Logger, opts ...ClientOption) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if apiBase != "" {
		config.BaseURL = apiBase
	}
	c := &OpenAIClient{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: 0.7,
		timeout:     30 * time.Second,
		log:         log.Named("openai"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Classify asks the model for a JSON intent and decodes it into a command.
func (c *OpenAIClient) Classify(ctx context.Context, text string, state domain.SessionView) (domain.Command, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errEmptyUtterance
	}

	user := fmt.Sprintf("Current step %d of %d: %s\nThe cook said: %q",
		state.CurrentStep, state.TotalSteps, state.CurrentStepData.Instruction, text)

	raw, err := c.chat(ctx, promptClassify, user, 0.2, true)
	if err != nil {
		return nil, err
	}

	cmd, err := domain.ParseIntentJSON([]byte(cleanJSONResponse(raw)))
	if err != nil {
		c.log.Error("unusable intent %q: %v", truncate(raw, 120), err)
		return nil, fmt.Errorf("decoding intent: %w", err)
	}
	c.log.Debug("classified %q as %s", truncate(text, 60), cmd.Kind())
	return cmd, nil
}

// Answer replies to a cooking question using the recipe and session state.
func (c *OpenAIClient) Answer(ctx context.Context, question string, state domain.SessionView) (string, error) {
	recipeJSON, err := json.MarshalIndent(state.Recipe, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding recipe: %w", err)
	}

	timers := "None"
	if len(state.ActiveTimers) > 0 {
		parts := make([]string, 0, len(state.ActiveTimers))
		for _, t := range state.ActiveTimers {
			parts = append(parts, fmt.Sprintf("%s: %ds remaining (%s)", t.Label, t.SecondsRemaining, t.Status))
		}
		timers = strings.Join(parts, ", ")
	}

	user := fmt.Sprintf("RECIPE:\n%s\n\nCURRENT STATE:\n- Current step: %d of %d\n- Session paused: %t\n- Active timers: %s\n\nQUESTION: %s",
		recipeJSON, state.CurrentStep, state.TotalSteps, state.IsPaused, timers, question)

	return c.chat(ctx, promptAnswer, user, c.temperature, false)
}

func (c *OpenAIClient) chat(ctx context.Context, system, user string, temperature float32, jsonMode bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	c.log.Debug("chat request, model=%s, %d chars", c.model, len(user))
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI API")
	}

	content := resp.Choices[0].Message.Content
	c.log.Debug("chat reply: %s", truncate(content, 120))
	return content, nil
}

// cleanJSONResponse strips the markdown code fences models like to wrap
// JSON in.
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
