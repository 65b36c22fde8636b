package vision

import (
	"encoding/json"
	"strings"
)

// ClothingItem is one garment or accessory detected in the photo.
type ClothingItem struct {
	Name        string `json:"name" bson:"name"`
	Category    string `json:"category" bson:"category"`
	Color       string `json:"color" bson:"color"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// OutfitRating is the model's 1-10 score with its justification.
type OutfitRating struct {
	Score  float64 `json:"score" bson:"score"`
	Reason string  `json:"reason" bson:"reason"`
}

// CheaperAlternative suggests a budget replacement for a detected item.
type CheaperAlternative struct {
	Item                string `json:"item" bson:"item"`
	Suggestion          string `json:"suggestion" bson:"suggestion"`
	EstimatedPriceRange string `json:"estimated_price_range" bson:"estimated_price_range"`
}

// WeatherSuitability is only populated when the caller supplied weather
// context with the upload.
type WeatherSuitability struct {
	IsSuitable bool   `json:"is_suitable" bson:"is_suitable"`
	Reason     string `json:"reason" bson:"reason"`
	Advice     string `json:"advice,omitempty" bson:"advice,omitempty"`
}

// Result is the structured outfit analysis produced by the vision model.
type Result struct {
	DetectedOutfitItems          []ClothingItem       `json:"detected_outfit_items" bson:"detected_outfit_items"`
	StyleDescription             string               `json:"style_description" bson:"style_description"`
	Compliment                   string               `json:"compliment,omitempty" bson:"compliment,omitempty"`
	OutfitRating                 OutfitRating         `json:"outfit_rating" bson:"outfit_rating"`
	ImprovementSuggestions       []string             `json:"improvement_suggestions" bson:"improvement_suggestions"`
	CheaperAlternatives          []CheaperAlternative `json:"cheaper_alternatives" bson:"cheaper_alternatives"`
	ColorMatchingRecommendations []string             `json:"color_matching_recommendations" bson:"color_matching_recommendations"`
	WeatherSuitability           *WeatherSuitability  `json:"weather_suitability,omitempty" bson:"weather_suitability,omitempty"`
}

// resultPayload mirrors Result with pointer fields so decoding can tell a
// missing required key apart from a zero value.
type resultPayload struct {
	DetectedOutfitItems          *[]ClothingItem       `json:"detected_outfit_items"`
	StyleDescription             *string               `json:"style_description"`
	Compliment                   *string               `json:"compliment"`
	OutfitRating                 *OutfitRating         `json:"outfit_rating"`
	ImprovementSuggestions       *[]string             `json:"improvement_suggestions"`
	CheaperAlternatives          *[]CheaperAlternative `json:"cheaper_alternatives"`
	ColorMatchingRecommendations *[]string             `json:"color_matching_recommendations"`
	WeatherSuitability           *WeatherSuitability   `json:"weather_suitability"`
}

// decodeResult parses model output into a Result, reporting false when the
// text is not valid JSON or any required key is absent.
func decodeResult(text string) (Result, bool) {
	var payload resultPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return Result{}, false
	}
	if payload.DetectedOutfitItems == nil ||
		payload.StyleDescription == nil ||
		payload.OutfitRating == nil ||
		payload.ImprovementSuggestions == nil ||
		payload.CheaperAlternatives == nil ||
		payload.ColorMatchingRecommendations == nil {
		return Result{}, false
	}

	result := Result{
		DetectedOutfitItems:          *payload.DetectedOutfitItems,
		StyleDescription:             *payload.StyleDescription,
		OutfitRating:                 *payload.OutfitRating,
		ImprovementSuggestions:       *payload.ImprovementSuggestions,
		CheaperAlternatives:          *payload.CheaperAlternatives,
		ColorMatchingRecommendations: *payload.ColorMatchingRecommendations,
		WeatherSuitability:           payload.WeatherSuitability,
	}
	if payload.Compliment != nil {
		result.Compliment = *payload.Compliment
	}
	return result, true
}

// FallbackResult is the fixed analysis returned when the model reply cannot
// be parsed. It never carries a weather section.
func FallbackResult() Result {
	return Result{
		DetectedOutfitItems: []ClothingItem{
			{
				Name:        "Unable to detect",
				Category:    "unknown",
				Color:       "unknown",
				Description: "Analysis failed",
			},
		},
		StyleDescription: "Unable to analyze the outfit at this time. Please try again.",
		Compliment:       "We couldn't fully analyze the details, but thanks for uploading!",
		OutfitRating: OutfitRating{
			Score:  5.0,
			Reason: "Analysis could not be completed",
		},
		ImprovementSuggestions: []string{
			"Please upload a clear, well-lit photo of the outfit",
			"Ensure the entire outfit is visible in the image",
		},
		CheaperAlternatives: []CheaperAlternative{},
		ColorMatchingRecommendations: []string{
			"Upload a new image for color recommendations",
		},
	}
}

// stripFences removes the markdown code fence the model often wraps its JSON
// in despite being told not to.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	}
	if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	if strings.HasSuffix(text, "```") {
		text = text[:len(text)-len("```")]
	}
	return strings.TrimSpace(text)
}
