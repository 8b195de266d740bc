package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AIRepository struct {
	db *pgxpool.Pool
}

type AIRequestLog struct {
	UserID       uuid.UUID
	Slot         string
	Provider     string
	Model        string
	Prompt       string
	RawResponse  string
	Fallback     bool
	Success      bool
	ErrorMessage *string
}

// NewAIRepository создает репозиторий журналирования AI-запросов.
func NewAIRepository(db *pgxpool.Pool) *AIRepository {
	return &AIRepository{db: db}
}

// LogRequest сохраняет запись о запросе рекомендаций.
// Fallback=true означает, что ответ синтезирован локально, а не получен
// от провайдера.
func (r *AIRepository) LogRequest(ctx context.Context, log AIRequestLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO ai_requests
		 (user_id, slot, provider, model, prompt, raw_response, fallback, success, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		log.UserID,
		log.Slot,
		log.Provider,
		log.Model,
		log.Prompt,
		log.RawResponse,
		log.Fallback,
		log.Success,
		log.ErrorMessage,
	)
	return err
}
