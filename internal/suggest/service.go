package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"example.com/macro-meal-planner/backend/internal/budget"
	"example.com/macro-meal-planner/backend/internal/models"
	"example.com/macro-meal-planner/backend/internal/repository"
	"example.com/macro-meal-planner/backend/internal/swap"
)

const suggestionCount = 3

// ErrInsufficientBudget возвращается при перерасходе граммов в остатке:
// нулевое значение уже больше отрицательного остатка, поэтому ни ответ
// провайдера, ни локальный синтез проверку бюджета не пройдут.
var ErrInsufficientBudget = errors.New("remaining budget cannot fit any suggestion")

// Auditor журналирует запросы к провайдерам. Отказ журнала не должен
// ломать рекомендации, поэтому ошибки только логируются.
type Auditor interface {
	LogRequest(ctx context.Context, log repository.AIRequestLog) error
}

type Service struct {
	chain *Chain
	audit Auditor
}

// NewService создает сервис рекомендаций. audit может быть nil.
func NewService(chain *Chain, audit Auditor) *Service {
	return &Service{chain: chain, audit: audit}
}

type RecommendInput struct {
	UserID              uuid.UUID
	Slot                models.MealSlot
	Remaining           models.MacroSet
	DietaryRestrictions []string
}

// Recommend подбирает блюда под остаток бюджета слота. Ответ провайдера
// проверяется против остатка с нулевой терпимостью: предложения с
// превышением отбрасываются. Если провайдеры недоступны или весь ответ
// невалиден, набор синтезируется локально — пользователь всегда получает
// предложения, пока в бюджете есть место.
func (s *Service) Recommend(ctx context.Context, input RecommendInput) (RecommendationSet, error) {
	set := RecommendationSet{
		Slot:      input.Slot,
		Remaining: input.Remaining,
	}

	// Исчерпанный бюджет: провайдер не вызывается, предложений нет.
	if input.Remaining.Calories <= 0 {
		set.Source = SourceNone
		set.fill(nil)
		set.Message = "Бюджет слота исчерпан: новые блюда в него уже не помещаются."
		return set, nil
	}

	// Перерасход по граммам делает любого кандидата невалидным,
	// провайдер не вызывается.
	if err := checkOverdraft(input.Remaining); err != nil {
		return set, err
	}

	prompt, err := buildPrompt(input)
	if err != nil {
		return set, err
	}

	messages := []Message{
		{Role: "system", Content: "You are a nutrition assistant. Respond with JSON only, without extra text."},
		{Role: "user", Content: prompt},
	}

	result, err := s.chain.Chat(ctx, messages)
	if err != nil {
		if ctx.Err() != nil {
			return set, ctx.Err()
		}
		s.logRequest(ctx, input, prompt, "", "", "", false, true, err)
		return s.fallbackSet(set), nil
	}

	suggestions, parseErr := parseSuggestions(result.Content, input.Remaining)
	if parseErr != nil || len(suggestions) == 0 {
		if parseErr == nil {
			parseErr = errors.New("no suggestions fit the remaining budget")
		}
		s.logRequest(ctx, input, prompt, result.Provider, result.Model, result.Content, false, true, parseErr)
		return s.fallbackSet(set), nil
	}

	s.logRequest(ctx, input, prompt, result.Provider, result.Model, result.Content, true, false, nil)

	set.Source = SourceAI
	set.fill(suggestions)
	return set, nil
}

// checkOverdraft сообщает о перерасходе остатка с точными величинами
// по каждому макронутриенту.
func checkOverdraft(remaining models.MacroSet) error {
	overs := make([]string, 0, 3)
	if remaining.ProteinG < 0 {
		overs = append(overs, fmt.Sprintf("protein_g over by %.2f g", -remaining.ProteinG))
	}
	if remaining.CarbsG < 0 {
		overs = append(overs, fmt.Sprintf("carbs_g over by %.2f g", -remaining.CarbsG))
	}
	if remaining.FatG < 0 {
		overs = append(overs, fmt.Sprintf("fat_g over by %.2f g", -remaining.FatG))
	}
	if len(overs) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrInsufficientBudget, strings.Join(overs, ", "))
}

func (s *Service) fallbackSet(set RecommendationSet) RecommendationSet {
	set.Source = SourceFallback
	set.fill(Fallback(set.Remaining))
	return set
}

func (s *Service) logRequest(ctx context.Context, input RecommendInput, prompt, provider, model, raw string, success, fallback bool, cause error) {
	if s.audit == nil {
		return
	}

	var errMessage *string
	if cause != nil {
		text := cause.Error()
		errMessage = &text
	}

	log := repository.AIRequestLog{
		UserID:       input.UserID,
		Slot:         string(input.Slot),
		Provider:     provider,
		Model:        model,
		Prompt:       prompt,
		RawResponse:  raw,
		Fallback:     fallback,
		Success:      success,
		ErrorMessage: errMessage,
	}

	if err := s.audit.LogRequest(ctx, log); err != nil {
		slog.Warn("ai request audit failed", "error", err)
	}
}

type promptInput struct {
	Slot                string   `json:"slot"`
	RemainingCalories   int      `json:"remaining_calories"`
	RemainingProteinG   float64  `json:"remaining_protein_g"`
	RemainingCarbsG     float64  `json:"remaining_carbs_g"`
	RemainingFatG       float64  `json:"remaining_fat_g"`
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
}

func buildPrompt(input RecommendInput) (string, error) {
	payload, err := json.MarshalIndent(promptInput{
		Slot:                string(input.Slot),
		RemainingCalories:   input.Remaining.Calories,
		RemainingProteinG:   input.Remaining.ProteinG,
		RemainingCarbsG:     input.Remaining.CarbsG,
		RemainingFatG:       input.Remaining.FatG,
		DietaryRestrictions: input.DietaryRestrictions,
	}, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Suggest meals for one meal slot as JSON.

Requirements:
- Output JSON only, no code fences, no extra text.
- Use Russian (Cyrillic) for names and descriptions.
- Schema:
{
  "suggestions": [
    {"name": string, "description": string, "ingredients": [string], "instructions": string, "calories": integer, "protein_g": number, "carbs_g": number, "fat_g": number}
  ]
}
- Provide exactly %d suggestions, best fit first: the first one is the primary recommendation, the rest are alternatives.
- List the main ingredients and give one or two sentences of cooking instructions per suggestion.
- Every value is a hard ceiling: calories, protein_g, carbs_g and fat_g of each suggestion must not exceed the remaining values from the input. No exceptions.
- Respect every dietary restriction from the input.
- Keep names short (<= 60 chars).

Input:
%s`, suggestionCount, string(payload))

	return prompt, nil
}

// parseSuggestions разбирает ответ провайдера и оставляет только
// блюда, проходящие проверку бюджета. Ответы моделей бывают неряшливы:
// кодовые заборы срезаются, пропущенные калории досчитываются из
// граммов по 4/4/9.
func parseSuggestions(content string, remaining models.MacroSet) ([]MealSuggestion, error) {
	var payload recommendationPayload
	if err := parseJSON(content, &payload); err != nil {
		return nil, err
	}

	suggestions := make([]MealSuggestion, 0, len(payload.Suggestions))
	for _, raw := range payload.Suggestions {
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			continue
		}
		if raw.ProteinG < 0 || raw.CarbsG < 0 || raw.FatG < 0 || raw.Calories < 0 {
			continue
		}

		macros := models.MacroSet{
			Calories: raw.Calories,
			ProteinG: round2(raw.ProteinG),
			CarbsG:   round2(raw.CarbsG),
			FatG:     round2(raw.FatG),
		}
		if macros.Calories == 0 {
			macros.Calories = swap.Calories(macros)
		}

		if !budget.Validate(macros, remaining).OK {
			continue
		}

		suggestions = append(suggestions, MealSuggestion{
			Name:         name,
			Description:  strings.TrimSpace(raw.Description),
			Ingredients:  cleanIngredients(raw.Ingredients),
			Instructions: strings.TrimSpace(raw.Instructions),
			Macros:       macros,
		})
		if len(suggestions) == suggestionCount {
			break
		}
	}

	return suggestions, nil
}

func cleanIngredients(raw []string) []string {
	ingredients := make([]string, 0, len(raw))
	for _, item := range raw {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			ingredients = append(ingredients, trimmed)
		}
	}
	if len(ingredients) == 0 {
		return nil
	}
	return ingredients
}

func parseJSON(input string, target interface{}) error {
	payload := extractJSON(input)
	if payload == "" {
		return errors.New("ai response does not contain json")
	}

	return json.Unmarshal([]byte(payload), target)
}

func extractJSON(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimPrefix(strings.TrimSpace(trimmed), "json")
		trimmed = strings.TrimSpace(trimmed)
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}

	return trimmed[start : end+1]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
