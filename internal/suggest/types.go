package suggest

import "example.com/macro-meal-planner/backend/internal/models"

// Источник рекомендаций в ответе.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
	SourceNone     = "none"
)

// MealSuggestion описывает одно предложенное блюдо.
type MealSuggestion struct {
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Ingredients  []string        `json:"ingredients,omitempty"`
	Instructions string          `json:"instructions,omitempty"`
	Macros       models.MacroSet `json:"macros"`
}

// RecommendationSet содержит рекомендации для слота вместе с остатком
// бюджета, под который они подбирались. Primary — основное предложение,
// Alternatives — запасные варианты; при исчерпанном бюджете Primary
// равен nil.
type RecommendationSet struct {
	Slot         models.MealSlot  `json:"slot"`
	Remaining    models.MacroSet  `json:"remaining"`
	Primary      *MealSuggestion  `json:"primary,omitempty"`
	Alternatives []MealSuggestion `json:"alternatives"`
	Source       string           `json:"source"`
	Message      string           `json:"message,omitempty"`
}

// fill раскладывает упорядоченный список предложений: первое становится
// основным, остальные — запасными.
func (s *RecommendationSet) fill(suggestions []MealSuggestion) {
	s.Primary = nil
	s.Alternatives = []MealSuggestion{}
	if len(suggestions) == 0 {
		return
	}

	primary := suggestions[0]
	s.Primary = &primary
	s.Alternatives = suggestions[1:]
}

// All возвращает все предложения набора в порядке приоритета.
func (s RecommendationSet) All() []MealSuggestion {
	if s.Primary == nil {
		return nil
	}
	return append([]MealSuggestion{*s.Primary}, s.Alternatives...)
}

// recommendationPayload — формат ответа провайдера.
type recommendationPayload struct {
	Suggestions []struct {
		Name         string   `json:"name"`
		Description  string   `json:"description"`
		Ingredients  []string `json:"ingredients"`
		Instructions string   `json:"instructions"`
		Calories     int      `json:"calories"`
		ProteinG     float64  `json:"protein_g"`
		CarbsG       float64  `json:"carbs_g"`
		FatG         float64  `json:"fat_g"`
	} `json:"suggestions"`
}
