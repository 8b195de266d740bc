package suggest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"example.com/macro-meal-planner/backend/internal/budget"
	"example.com/macro-meal-planner/backend/internal/models"
)

type mockClient struct {
	content string
	err     error
	calls   int
}

func (m *mockClient) Chat(_ context.Context, _ []Message) (string, []byte, error) {
	m.calls++
	if m.err != nil {
		return "", nil, m.err
	}
	return m.content, []byte(m.content), nil
}

func testRemaining() models.MacroSet {
	return models.MacroSet{Calories: 600, ProteinG: 45, CarbsG: 60, FatG: 20}
}

func serviceWith(clients ...*mockClient) *Service {
	providers := make([]Provider, 0, len(clients))
	for i, client := range clients {
		providers = append(providers, Provider{Name: "mock", Model: "mock-" + string(rune('a'+i)), Client: client})
	}
	return NewService(NewChain(providers...), nil)
}

// TestRecommendZeroBudget проверяет, что при исчерпанном бюджете
// провайдер не вызывается и предложений нет.
func TestRecommendZeroBudget(t *testing.T) {
	client := &mockClient{content: `{"suggestions":[]}`}
	svc := serviceWith(client)

	set, err := svc.Recommend(context.Background(), RecommendInput{
		Slot:      models.MealSlotLunch,
		Remaining: models.MacroSet{Calories: 0, ProteinG: 10, CarbsG: 10, FatG: 5},
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if client.calls != 0 {
		t.Errorf("provider calls = %d, want 0", client.calls)
	}
	if set.Source != SourceNone {
		t.Errorf("Source = %s, want %s", set.Source, SourceNone)
	}
	if set.Primary != nil || len(set.Alternatives) != 0 {
		t.Errorf("suggestions = %+v/%+v, want none", set.Primary, set.Alternatives)
	}
	if set.Message == "" {
		t.Error("Message is empty, want explanation")
	}
}

// TestRecommendOverdrawnMacro проверяет отказ при перерасходе граммов:
// даже нулевой кандидат превысит отрицательный остаток, поэтому ни
// провайдер, ни локальный синтез не годятся.
func TestRecommendOverdrawnMacro(t *testing.T) {
	client := &mockClient{err: errors.New("unreachable")}
	svc := serviceWith(client)

	_, err := svc.Recommend(context.Background(), RecommendInput{
		Slot:      models.MealSlotLunch,
		Remaining: models.MacroSet{Calories: 300, ProteinG: -5, CarbsG: 50, FatG: 10},
	})
	if !errors.Is(err, ErrInsufficientBudget) {
		t.Fatalf("Recommend() error = %v, want ErrInsufficientBudget", err)
	}

	if !strings.Contains(err.Error(), "protein_g over by 5.00 g") {
		t.Errorf("error message lacks the shortfall: %q", err)
	}
	if client.calls != 0 {
		t.Errorf("provider calls = %d, want 0", client.calls)
	}
}

// TestRecommendParsesProviderResponse проверяет успешный путь вместе
// со срезанием кодового забора.
func TestRecommendParsesProviderResponse(t *testing.T) {
	client := &mockClient{content: "```json\n" + `{
		"suggestions": [
			{"name": "Гречка с курицей", "description": "Основное блюдо", "ingredients": ["гречка", "куриное филе", " лук "], "instructions": "Отварите гречку, обжарьте курицу с луком.", "calories": 450, "protein_g": 35, "carbs_g": 50, "fat_g": 10},
			{"name": "Овощной салат", "calories": 120, "protein_g": 3, "carbs_g": 12, "fat_g": 7},
			{"name": "Йогурт", "calories": 90, "protein_g": 8, "carbs_g": 10, "fat_g": 2}
		]
	}` + "\n```"}
	svc := serviceWith(client)

	set, err := svc.Recommend(context.Background(), RecommendInput{
		Slot:      models.MealSlotDinner,
		Remaining: testRemaining(),
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if set.Source != SourceAI {
		t.Fatalf("Source = %s, want %s", set.Source, SourceAI)
	}
	if got := len(set.All()); got != 3 {
		t.Fatalf("len(All()) = %d, want 3", got)
	}
	if set.Primary.Name != "Гречка с курицей" {
		t.Errorf("Primary.Name = %s", set.Primary.Name)
	}
	if got := set.Primary.Ingredients; len(got) != 3 || got[2] != "лук" {
		t.Errorf("Primary.Ingredients = %v, want trimmed list of 3", got)
	}
	if set.Primary.Instructions == "" {
		t.Error("Primary.Instructions is empty")
	}
	if len(set.Alternatives) != 2 {
		t.Errorf("len(Alternatives) = %d, want 2", len(set.Alternatives))
	}
}

// TestRecommendDropsOverBudgetSuggestions проверяет отбрасывание блюд
// с превышением остатка.
func TestRecommendDropsOverBudgetSuggestions(t *testing.T) {
	client := &mockClient{content: `{
		"suggestions": [
			{"name": "Переедание", "calories": 900, "protein_g": 30, "carbs_g": 80, "fat_g": 40},
			{"name": "Скромный ужин", "calories": 300, "protein_g": 25, "carbs_g": 30, "fat_g": 8}
		]
	}`}
	svc := serviceWith(client)

	set, err := svc.Recommend(context.Background(), RecommendInput{
		Slot:      models.MealSlotDinner,
		Remaining: testRemaining(),
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if set.Source != SourceAI {
		t.Fatalf("Source = %s, want %s", set.Source, SourceAI)
	}
	if set.Primary == nil || set.Primary.Name != "Скромный ужин" || len(set.Alternatives) != 0 {
		t.Errorf("suggestions = %+v/%+v, want only the in-budget meal", set.Primary, set.Alternatives)
	}
}

// TestRecommendFallbackOnInvalidJSON проверяет локальный запасной
// набор при неразборчивом ответе провайдера.
func TestRecommendFallbackOnInvalidJSON(t *testing.T) {
	client := &mockClient{content: "тут нет никакого json"}
	svc := serviceWith(client)

	set, err := svc.Recommend(context.Background(), RecommendInput{
		Slot:      models.MealSlotBreakfast,
		Remaining: testRemaining(),
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if set.Source != SourceFallback {
		t.Fatalf("Source = %s, want %s", set.Source, SourceFallback)
	}
	if set.Primary == nil {
		t.Fatal("fallback produced no primary suggestion")
	}
	if len(set.Alternatives) == 0 {
		t.Fatal("fallback produced no alternatives")
	}
	if len(set.Primary.Ingredients) == 0 || set.Primary.Instructions == "" {
		t.Errorf("fallback suggestion lacks recipe fields: %+v", set.Primary)
	}
}

// TestRecommendChainOrder проверяет перебор провайдеров: первый падает,
// второй отвечает, до третьего дело не доходит.
func TestRecommendChainOrder(t *testing.T) {
	first := &mockClient{err: errors.New("rate limited")}
	second := &mockClient{content: `{"suggestions":[{"name":"Суп", "calories": 200, "protein_g": 10, "carbs_g": 20, "fat_g": 6}]}`}
	third := &mockClient{content: `{"suggestions":[]}`}
	svc := serviceWith(first, second, third)

	set, err := svc.Recommend(context.Background(), RecommendInput{
		Slot:      models.MealSlotLunch,
		Remaining: testRemaining(),
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if first.calls != 1 || second.calls != 1 || third.calls != 0 {
		t.Errorf("calls = %d/%d/%d, want 1/1/0", first.calls, second.calls, third.calls)
	}
	if set.Source != SourceAI {
		t.Errorf("Source = %s, want %s", set.Source, SourceAI)
	}
}

// TestRecommendFallbackWhenAllProvidersFail проверяет, что отказ всей
// цепочки не доходит до клиента как ошибка.
func TestRecommendFallbackWhenAllProvidersFail(t *testing.T) {
	first := &mockClient{err: errors.New("timeout")}
	second := &mockClient{err: errors.New("bad gateway")}
	svc := serviceWith(first, second)

	set, err := svc.Recommend(context.Background(), RecommendInput{
		Slot:      models.MealSlotSnack,
		Remaining: testRemaining(),
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if set.Source != SourceFallback {
		t.Fatalf("Source = %s, want %s", set.Source, SourceFallback)
	}
}

// TestFallbackStaysWithinBudget проверяет, что локальный набор проходит
// проверку бюджета при неотрицательном остатке.
func TestFallbackStaysWithinBudget(t *testing.T) {
	remaining := models.MacroSet{Calories: 517, ProteinG: 38.13, CarbsG: 47.29, FatG: 16.01}

	for _, suggestion := range Fallback(remaining) {
		result := budget.Validate(suggestion.Macros, remaining)
		if !result.OK {
			t.Errorf("%s exceeds budget: %v (macros %+v)", suggestion.Name, result.Violations, suggestion.Macros)
		}
	}
}

// TestExtractJSON проверяет вырезание JSON из шумного ответа.
func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", `Вот ответ: {"a":1}. Надеюсь, помог!`, `{"a":1}`},
		{"no json", "ответа нет", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.input); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
