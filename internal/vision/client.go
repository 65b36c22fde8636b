package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/stylesense/stylesense-backend/pkg/config"
	"github.com/stylesense/stylesense-backend/pkg/errors"
	"github.com/stylesense/stylesense-backend/pkg/logger"
	"github.com/stylesense/stylesense-backend/pkg/metrics"
)

const analysisPromptBase = "Analyze the outfit in this image carefully and provide a comprehensive fashion analysis. "

const analysisPromptSchema = `
Return ONLY a valid JSON object (no markdown, no code blocks, no additional text) with this exact structure:

{
  "detected_outfit_items": [
    {
      "name": "item name",
      "category": "category (e.g., top, bottom, shoes, accessory, outerwear)",
      "color": "primary color",
      "description": "brief description"
    }
  ],
  "style_description": "overall style description (2-3 sentences)",
  "compliment": "A short, encouraging, 1-sentence verbal compliment or genuine feedback designed to be spoken aloud",
  "outfit_rating": {
    "score": 7.5,
    "reason": "detailed reason for the score"
  },
  "improvement_suggestions": [
    "specific suggestion 1",
    "specific suggestion 2",
    "specific suggestion 3"
  ],
  "cheaper_alternatives": [
    {
      "item": "expensive item name",
      "suggestion": "cheaper alternative suggestion",
      "estimated_price_range": "$XX-$XX"
    }
  ],
  "color_matching_recommendations": [
    "color pairing suggestion 1",
    "color pairing suggestion 2",
    "color pairing suggestion 3"
  ],
  "weather_suitability": {
    "is_suitable": true,
    "reason": "Create this ONLY if weather context is provided. Evaluate if outfit works for the weather.",
    "advice": "Advice if not suitable or tips for the weather."
  }
}

Be specific, professional, and helpful. The rating should be between 1-10. If weather context is not provided, you MUST set weather_suitability to null.`

// ChatMessage is one prior turn in a stylist conversation.
type ChatMessage struct {
	Role    string `json:"role" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// generator abstracts the model call so the client can be tested without a
// live API.
type generator interface {
	Generate(ctx context.Context, parts ...genai.Part) (string, error)
}

// Client talks to the Gemini vision model and coerces its free-text replies
// into structured analyses.
type Client struct {
	gen     generator
	raw     *genai.Client
	logger  *logger.Logger
	metrics *metrics.AnalysisMetrics
}

// Params carries the dependencies required to construct a Client.
type Params struct {
	Config  config.GeminiConfig
	Logger  *logger.Logger
	Metrics *metrics.AnalysisMetrics
}

// NewClient dials the Gemini API and wires up the configured model.
func NewClient(ctx context.Context, params Params) (*Client, error) {
	if params.Config.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	raw, err := genai.NewClient(ctx, option.WithAPIKey(params.Config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		gen:     &geminiGenerator{model: raw.GenerativeModel(params.Config.Model)},
		raw:     raw,
		logger:  params.Logger,
		metrics: params.Metrics,
	}, nil
}

// Close releases the underlying API connection.
func (c *Client) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// Analyze submits the image with its optional context clauses and returns a
// structured analysis. An unparseable reply degrades to the fixed fallback;
// only a failed model call is surfaced as an error.
func (c *Client) Analyze(ctx context.Context, imageData []byte, ext, occasion, weather string) (Result, error) {
	prompt := buildAnalysisPrompt(occasion, weather)

	start := time.Now()
	text, err := c.gen.Generate(ctx,
		genai.Text(prompt),
		genai.ImageData(normalizeImageFormat(ext), imageData),
	)
	c.metrics.ObserveModelCall("analyze", time.Since(start))
	if err != nil {
		return Result{}, errors.Wrap(errors.CodeDependency, err, "outfit analysis failed")
	}

	result, ok := decodeResult(stripFences(text))
	if !ok {
		c.logger.Warn(ctx, "model reply failed schema validation, using fallback analysis")
		c.metrics.IncFallbacks()
		result = FallbackResult()
	}
	c.metrics.IncAnalyses()
	return result, nil
}

// Chat answers a follow-up question about a previous analysis. Failures come
// back as a textual error reply, never as an error value.
func (c *Client) Chat(ctx context.Context, analysis Result, history []ChatMessage, message string) string {
	prompt := buildChatPrompt(analysis, history, message)

	start := time.Now()
	text, err := c.gen.Generate(ctx, genai.Text(prompt))
	c.metrics.ObserveModelCall("chat", time.Since(start))
	if err != nil {
		c.logger.Error(ctx, "stylist chat call failed", err)
		return fmt.Sprintf("Error: %s", err)
	}
	c.metrics.IncChats()
	return text
}

func buildAnalysisPrompt(occasion, weather string) string {
	var b strings.Builder
	b.WriteString(analysisPromptBase)
	if occasion != "" {
		fmt.Fprintf(&b, "The user intends to wear this outfit for: %s. Please specifically evaluate its suitability for this occasion in your style description, rating, and suggestions.", occasion)
	}
	b.WriteString(" ")
	if weather != "" {
		fmt.Fprintf(&b, "The user's local weather is: %s. Please specifically warn the user if the outfit is not practical for this weather (e.g. wearing sandals in rain, or heavy coat in heat) and suggest alternatives.", weather)
	}
	b.WriteString(analysisPromptSchema)
	return b.String()
}

func buildChatPrompt(analysis Result, history []ChatMessage, message string) string {
	names := make([]string, 0, len(analysis.DetectedOutfitItems))
	for _, item := range analysis.DetectedOutfitItems {
		names = append(names, item.Name)
	}

	var b strings.Builder
	b.WriteString("You are a professional, helpful, and friendly AI fashion stylist.\n")
	b.WriteString("You are discussing a specific outfit with a user. Use the analysis context below to answer their questions.\n\n")
	b.WriteString("Context - Outfit Analysis:\n")
	fmt.Fprintf(&b, "Style: %s\n", analysis.StyleDescription)
	fmt.Fprintf(&b, "Items: %s\n", strings.Join(names, ", "))
	fmt.Fprintf(&b, "Rating: %g/10\n\n", analysis.OutfitRating.Score)
	b.WriteString("Previous Conversation:\n")
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(msg.Role), msg.Content)
	}
	fmt.Fprintf(&b, "\nUser: %s\nAI Stylist:", message)
	return b.String()
}

// normalizeImageFormat maps a file extension onto the image format label the
// API expects.
func normalizeImageFormat(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return "jpeg"
	case "png":
		return "png"
	default:
		return "jpeg"
	}
}

type geminiGenerator struct {
	model *genai.GenerativeModel
}

func (g *geminiGenerator) Generate(ctx context.Context, parts ...genai.Part) (string, error) {
	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("model returned no candidates")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}
