package models

// Media types accepted for analysis. Anything else is treated as JPEG, the way
// the mobile client submits camera captures.
const (
	MediaJPEG = "image/jpeg"
	MediaPNG  = "image/png"
	MediaWEBP = "image/webp"
	MediaGIF  = "image/gif"
)

// MaxImageBytes bounds the decoded image size (5 MiB).
const MaxImageBytes = 5 * 1024 * 1024

// ImagePayload is a user-submitted image: raw base64 content (no data-URI
// prefix) plus its declared media type. Immutable once parsed.
type ImagePayload struct {
	Data      string
	MediaType string
}

// ModerationReason identifies which category caused an image rejection.
type ModerationReason string

const (
	ReasonAdultContent ModerationReason = "adult_content"
	ReasonWeapons      ModerationReason = "weapons"
	ReasonSubstances   ModerationReason = "substances"
	ReasonOffensive    ModerationReason = "offensive"
)

// ModerationVerdict is the moderation gate's outcome. Reason is set only when
// Allowed is false.
type ModerationVerdict struct {
	Allowed bool
	Reason  ModerationReason
}

// IdentifiedIngredient is one (name, confidence) pair from the vision model.
// Confidence passes through as whatever label the model used; names are not
// deduplicated or normalized.
type IdentifiedIngredient struct {
	Name       string `json:"name"`
	Confidence string `json:"confidence"`
}

type Recipe struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	PrepTime     string   `json:"prepTime"`
}

// DailyRecipes is the breakfast/lunch/dinner trio from the daily generator.
type DailyRecipes struct {
	Breakfast Recipe `json:"breakfast"`
	Lunch     Recipe `json:"lunch"`
	Dinner    Recipe `json:"dinner"`
}

// AnalysisResult is the pipeline's full response. Demo is true only when the
// model stage was unconfigured and canned content was substituted; clients
// must always be told when recipes did not come from a live model call.
type AnalysisResult struct {
	Ingredients []IdentifiedIngredient `json:"ingredients"`
	Recipes     []Recipe               `json:"recipes"`
	Demo        bool                   `json:"demo"`
	DemoMessage string                 `json:"message,omitempty"`
}

// NutritionRecord holds the tracked macro nutrients for one ingredient.
// Nutrients missing upstream stay at zero.
type NutritionRecord struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}
