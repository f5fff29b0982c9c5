// Package ai generates meeting-derived text (social posts, summaries,
// follow-up emails) through the OpenAI chat completions API.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/postmeetinghq/postmeeting/internal/logging"
)

const model = openai.ChatModelGPT3_5Turbo

// SocialPost is the structured result of a detailed post generation.
type SocialPost struct {
	Content    string `json:"content"`
	Hashtags   string `json:"hashtags"`
	Disclaimer string `json:"disclaimer"`
	Platform   string `json:"platform"`
}

// Client wraps the OpenAI chat completions API.
type Client struct {
	api    openai.Client
	logger *slog.Logger
}

// NewClient builds an AI client for the given API key.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		api:    openai.NewClient(option.WithAPIKey(apiKey)),
		logger: logging.WithService(logger, "ai"),
	}
}

// complete issues one chat completion and returns the trimmed message text.
func (c *Client) complete(ctx context.Context, system, user string, maxTokens int64, temperature float64) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(maxTokens),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateSocialContent produces a single-string social post for a platform.
func (c *Client) GenerateSocialContent(ctx context.Context, transcript, title, platform string) (string, error) {
	content, err := c.complete(ctx, socialCreatorSystem, socialPrompt(transcript, title, platform), 500, 0.7)
	if err != nil {
		return "", err
	}
	c.logger.Info("generated social content",
		logging.Platform(platform),
		slog.Int("content_chars", len(content)))
	return content, nil
}

// GenerateSocialPostDetailed produces a structured post with hashtags split
// out. A non-empty customPrompt overrides the platform's default
// instructions.
func (c *Client) GenerateSocialPostDetailed(ctx context.Context, transcript, title, platform, customPrompt string) (SocialPost, error) {
	content, err := c.complete(ctx, socialCreatorSystem, detailedPostPrompt(transcript, title, platform, customPrompt), 600, 0.7)
	if err != nil {
		return SocialPost{Platform: platform}, err
	}
	post := parseSocialPost(content, platform)
	c.logger.Info("generated detailed social post",
		logging.Platform(platform),
		slog.Int("content_chars", len(post.Content)),
		slog.Bool("custom_prompt", customPrompt != ""))
	return post, nil
}

// GenerateMeetingSummary produces a 2-3 paragraph summary of a transcript.
func (c *Client) GenerateMeetingSummary(ctx context.Context, transcript string) (string, error) {
	return c.complete(ctx, meetingAssistantSystem, summaryPrompt(transcript), 300, 0.3)
}

// ExtractKeyInsights pulls 3-5 bulleted takeaways out of a transcript.
func (c *Client) ExtractKeyInsights(ctx context.Context, transcript string) ([]string, error) {
	content, err := c.complete(ctx, meetingAnalystSystem, insightsPrompt(transcript), 400, 0.3)
	if err != nil {
		return nil, err
	}
	return parseInsights(content), nil
}

// GenerateFollowUpEmail produces a follow-up email, naming the attendees
// when provided.
func (c *Client) GenerateFollowUpEmail(ctx context.Context, transcript, title string, attendees []string) (string, error) {
	content, err := c.complete(ctx, emailAssistantSystem, followUpEmailPrompt(transcript, title, attendees), 500, 0.3)
	if err != nil {
		return "", err
	}
	c.logger.Info("generated follow-up email",
		slog.Int("content_chars", len(content)),
		slog.Int("attendees", len(attendees)))
	return content, nil
}
