package vision

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"

	"github.com/stylesense/stylesense-backend/pkg/errors"
	"github.com/stylesense/stylesense-backend/pkg/logger"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, parts ...genai.Part) (string, error) {
	for _, part := range parts {
		if text, ok := part.(genai.Text); ok {
			f.prompts = append(f.prompts, string(text))
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testClient(gen generator) *Client {
	return &Client{
		gen:    gen,
		logger: logger.New(logger.Options{Level: zerolog.Disabled}),
	}
}

func validReply(withWeather bool) string {
	weather := "null"
	if withWeather {
		weather = `{"is_suitable": false, "reason": "too cold", "advice": "add a coat"}`
	}
	return fmt.Sprintf(`{
		"detected_outfit_items": [{"name": "Denim Jacket", "category": "outerwear", "color": "blue", "description": "classic"}],
		"style_description": "Casual street style.",
		"compliment": "Looking sharp!",
		"outfit_rating": {"score": 8.5, "reason": "well coordinated"},
		"improvement_suggestions": ["add a belt"],
		"cheaper_alternatives": [],
		"color_matching_recommendations": ["white sneakers"],
		"weather_suitability": %s
	}`, weather)
}

func TestAnalyzeParsesFencedReply(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n" + validReply(false) + "\n```"}
	client := testClient(gen)

	result, err := client.Analyze(context.Background(), []byte{1}, "jpg", "", "")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if result.StyleDescription != "Casual street style." {
		t.Fatalf("unexpected style description: %q", result.StyleDescription)
	}
	if len(result.DetectedOutfitItems) != 1 || result.DetectedOutfitItems[0].Name != "Denim Jacket" {
		t.Fatalf("unexpected items: %+v", result.DetectedOutfitItems)
	}
	if result.WeatherSuitability != nil {
		t.Fatal("expected no weather section without weather context")
	}
}

func TestAnalyzeWeatherSectionPresentWhenSupplied(t *testing.T) {
	gen := &fakeGenerator{reply: validReply(true)}
	client := testClient(gen)

	result, err := client.Analyze(context.Background(), []byte{1}, "png", "", "20C, Rainy")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if result.WeatherSuitability == nil {
		t.Fatal("expected weather section when weather context was supplied")
	}
	if result.WeatherSuitability.Advice != "add a coat" {
		t.Fatalf("unexpected weather advice: %q", result.WeatherSuitability.Advice)
	}
}

func TestAnalyzeFallsBackOnGarbage(t *testing.T) {
	for name, reply := range map[string]string{
		"prose":        "I cannot analyze this image.",
		"truncated":    `{"detected_outfit_items": [`,
		"missing keys": `{"style_description": "nice"}`,
	} {
		t.Run(name, func(t *testing.T) {
			client := testClient(&fakeGenerator{reply: reply})

			result, err := client.Analyze(context.Background(), []byte{1}, "jpg", "", "")
			if err != nil {
				t.Fatalf("garbage reply must not error, got %v", err)
			}
			if !reflect.DeepEqual(result, FallbackResult()) {
				t.Fatalf("expected the fixed fallback, got %+v", result)
			}
		})
	}
}

func TestAnalyzePropagatesCallFailure(t *testing.T) {
	client := testClient(&fakeGenerator{err: fmt.Errorf("quota exceeded")})

	_, err := client.Analyze(context.Background(), []byte{1}, "jpg", "", "")
	if err == nil {
		t.Fatal("expected an error when the model call fails")
	}
	appErr := errors.As(err)
	if appErr == nil || appErr.Code() != errors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestAnalyzePromptIncludesContextClauses(t *testing.T) {
	gen := &fakeGenerator{reply: validReply(false)}
	client := testClient(gen)

	if _, err := client.Analyze(context.Background(), []byte{1}, "jpg", "a wedding", "30C, Sunny"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("expected one text part, got %d", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	if !strings.Contains(prompt, "wear this outfit for: a wedding") {
		t.Fatal("prompt missing occasion clause")
	}
	if !strings.Contains(prompt, "local weather is: 30C, Sunny") {
		t.Fatal("prompt missing weather clause")
	}
	if !strings.Contains(prompt, "weather_suitability to null") {
		t.Fatal("prompt missing null-weather instruction")
	}
}

func TestChatPromptFormatsHistory(t *testing.T) {
	gen := &fakeGenerator{reply: "Try silver accessories."}
	client := testClient(gen)

	analysis := Result{
		StyleDescription:    "Minimalist monochrome.",
		DetectedOutfitItems: []ClothingItem{{Name: "Black Blazer"}, {Name: "White Tee"}},
		OutfitRating:        OutfitRating{Score: 7},
	}
	history := []ChatMessage{
		{Role: "user", Content: "What shoes go with this?"},
		{Role: "assistant", Content: "White sneakers work well."},
	}

	reply := client.Chat(context.Background(), analysis, history, "And jewelry?")
	if reply != "Try silver accessories." {
		t.Fatalf("unexpected reply: %q", reply)
	}

	prompt := gen.prompts[0]
	for _, want := range []string{
		"Items: Black Blazer, White Tee",
		"Rating: 7/10",
		"USER: What shoes go with this?",
		"ASSISTANT: White sneakers work well.",
		"User: And jewelry?\nAI Stylist:",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("chat prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestChatReturnsTextualErrorOnFailure(t *testing.T) {
	client := testClient(&fakeGenerator{err: fmt.Errorf("connection reset")})

	reply := client.Chat(context.Background(), Result{}, nil, "hello")
	if reply != "Error: connection reset" {
		t.Fatalf("unexpected error reply: %q", reply)
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		`{"a":1}`:                 `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}
	for in, want := range cases {
		if got := stripFences(in); got != want {
			t.Fatalf("stripFences(%q) = %q, want %q", in, got, want)
		}
	}
}
