// Package suggest генерирует рекомендации блюд под остаток бюджета
// слота. Источник рекомендаций ненадежен: провайдеры перебираются по
// цепочке, а при отказе всех ответ синтезируется локально.
package suggest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

const defaultMaxTokens = 4096

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Client interface {
	Chat(ctx context.Context, messages []Message) (string, []byte, error)
}

func resolveMaxTokens(value int) int {
	if value > 0 {
		return value
	}

	return defaultMaxTokens
}

// postJSON выполняет POST с JSON-телом и возвращает статус и тело ответа.
func postJSON(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	response, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return response.StatusCode, nil, err
	}

	return response.StatusCode, body, nil
}

func apiError(provider string, body []byte, message string) error {
	if message != "" {
		return fmt.Errorf("%s api error: %s", provider, message)
	}
	return fmt.Errorf("%s api error: %s", provider, string(body))
}
