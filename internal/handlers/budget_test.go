package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithQuery(t *testing.T, query string) echo.Context {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec)
}

// TestQueryDateValid проверяет разбор параметра date.
func TestQueryDateValid(t *testing.T) {
	c := contextWithQuery(t, "date=2026-08-28")

	date, err := queryDate(c)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if date.Format(dateLayout) != "2026-08-28" {
		t.Fatalf("unexpected date: %s", date.Format(dateLayout))
	}
}

// TestQueryDateDefaultsToToday проверяет значение по умолчанию.
func TestQueryDateDefaultsToToday(t *testing.T) {
	c := contextWithQuery(t, "")

	date, err := queryDate(c)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if date.Hour() != 0 || date.Minute() != 0 || date.Second() != 0 {
		t.Fatalf("expected midnight UTC, got %s", date)
	}
}

// TestQueryDateInvalid проверяет ошибку при неверном формате.
func TestQueryDateInvalid(t *testing.T) {
	c := contextWithQuery(t, "date=28.08.2026")

	if _, err := queryDate(c); err == nil {
		t.Fatal("expected error for invalid date format")
	}
}
