package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllProvidersFailed возвращается, когда ни один провайдер цепочки
// не дал ответа.
var ErrAllProvidersFailed = errors.New("all ai providers failed")

// Provider связывает клиент с именем и моделью для журналирования.
type Provider struct {
	Name   string
	Model  string
	Client Client
}

// ChainResult несет ответ выигравшего провайдера.
type ChainResult struct {
	Provider string
	Model    string
	Content  string
	Raw      []byte
}

// Chain перебирает провайдеров по порядку: выигрывает первый успешный
// ответ, отказ одного провайдера не фатален.
type Chain struct {
	providers []Provider
}

// NewChain создает цепочку провайдеров в заданном порядке.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Chat опрашивает провайдеров до первого успеха.
func (c *Chain) Chat(ctx context.Context, messages []Message) (ChainResult, error) {
	if len(c.providers) == 0 {
		return ChainResult{}, ErrAllProvidersFailed
	}

	var lastErr error
	for _, provider := range c.providers {
		content, raw, err := provider.Client.Chat(ctx, messages)
		if err != nil {
			lastErr = err
			slog.Warn("ai provider failed",
				"provider", provider.Name,
				"model", provider.Model,
				"error", err,
			)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		return ChainResult{
			Provider: provider.Name,
			Model:    provider.Model,
			Content:  content,
			Raw:      raw,
		}, nil
	}

	return ChainResult{}, fmt.Errorf("%w: %w", ErrAllProvidersFailed, lastErr)
}
