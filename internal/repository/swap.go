package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/macro-meal-planner/backend/internal/models"
	"example.com/macro-meal-planner/backend/internal/swap"
)

type SwapRepository struct {
	db *pgxpool.Pool
}

// NewSwapRepository создает репозиторий переносов между слотами.
func NewSwapRepository(db *pgxpool.Pool) *SwapRepository {
	return &SwapRepository{db: db}
}

// Apply выполняет перенос граммов между слотами одной транзакцией.
// Обе строки плана блокируются FOR UPDATE в фиксированном порядке
// слотов, чтобы конкурирующие переносы одного дня не взаимоблокировались.
// Если дневные суммы после переноса не сходятся, транзакция
// откатывается с ErrConsistency: частично примененный перенос
// недопустим.
func (r *SwapRepository) Apply(ctx context.Context, userID uuid.UUID, date time.Time, fromSlot, toSlot models.MealSlot, category models.MacroCategory, amountG float64) (models.SwapRecord, []models.PlanSlot, error) {
	var record models.SwapRecord

	if fromSlot == toSlot {
		return record, nil, fmt.Errorf("%w: source and destination slots are the same", ErrInvalid)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return record, nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Строки плана для еще не тронутых слотов создаются из сумм
	// записанных приемов пищи. Порядок посева фиксирован по имени слота.
	first, second := orderSlots(fromSlot, toSlot)
	for _, slot := range []models.MealSlot{first, second} {
		if err := seedSlot(ctx, tx, userID, date, slot); err != nil {
			return record, nil, fmt.Errorf("seed slot %s: %w", slot, err)
		}
	}

	slots := make(map[models.MealSlot]models.PlanSlot, 2)
	rows, err := tx.Query(ctx,
		`SELECT slot, calories, protein_g, carbs_g, fat_g, updated_at
		 FROM plan_slots
		 WHERE user_id = $1 AND date = $2::date AND slot = ANY($3)
		 ORDER BY slot
		 FOR UPDATE`,
		userID, date, []string{string(first), string(second)},
	)
	if err != nil {
		return record, nil, err
	}
	for rows.Next() {
		ps := models.PlanSlot{UserID: userID, Date: date}
		if err := rows.Scan(&ps.Slot, &ps.Macros.Calories, &ps.Macros.ProteinG, &ps.Macros.CarbsG, &ps.Macros.FatG, &ps.UpdatedAt); err != nil {
			rows.Close()
			return record, nil, err
		}
		slots[ps.Slot] = ps
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return record, nil, err
	}
	if len(slots) != 2 {
		return record, nil, fmt.Errorf("lock plan slots: got %d rows, want 2", len(slots))
	}

	before := [2]models.MacroSet{slots[fromSlot].Macros, slots[toSlot].Macros}

	newFrom, newTo, err := swap.Apply(slots[fromSlot].Macros, slots[toSlot].Macros, category, amountG)
	if err != nil {
		return record, nil, err
	}

	if !swap.Conserved(before[0], before[1], newFrom, newTo) {
		return record, nil, fmt.Errorf("%w: daily totals changed by swap", ErrConsistency)
	}

	updated := make([]models.PlanSlot, 0, 2)
	for _, pair := range []struct {
		slot   models.MealSlot
		macros models.MacroSet
	}{
		{fromSlot, newFrom},
		{toSlot, newTo},
	} {
		ps := models.PlanSlot{UserID: userID, Date: date, Slot: pair.slot, Macros: pair.macros}
		err = tx.QueryRow(ctx,
			`UPDATE plan_slots
			 SET calories = $4, protein_g = $5, carbs_g = $6, fat_g = $7, updated_at = NOW()
			 WHERE user_id = $1 AND date = $2::date AND slot = $3
			 RETURNING updated_at`,
			userID, date, pair.slot,
			pair.macros.Calories, pair.macros.ProteinG, pair.macros.CarbsG, pair.macros.FatG,
		).Scan(&ps.UpdatedAt)
		if err != nil {
			return record, nil, err
		}
		updated = append(updated, ps)
	}

	record = models.SwapRecord{
		ID:       uuid.New(),
		UserID:   userID,
		Date:     date,
		FromSlot: fromSlot,
		ToSlot:   toSlot,
		Category: category,
		AmountG:  amountG,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO swap_history (id, user_id, date, from_slot, to_slot, category, amount_g)
		 VALUES ($1, $2, $3::date, $4, $5, $6, $7)
		 RETURNING created_at`,
		record.ID, record.UserID, record.Date, record.FromSlot, record.ToSlot, record.Category, record.AmountG,
	).Scan(&record.CreatedAt)
	if err != nil {
		return models.SwapRecord{}, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.SwapRecord{}, nil, err
	}

	return record, updated, nil
}

// ListSlots возвращает строки плана на дату. Слоты без строки плана
// отсутствуют в результате: по ним переносов еще не было.
func (r *SwapRepository) ListSlots(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.PlanSlot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT slot, calories, protein_g, carbs_g, fat_g, updated_at
		 FROM plan_slots
		 WHERE user_id = $1 AND date = $2::date
		 ORDER BY slot`,
		userID, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]models.PlanSlot, 0, len(models.MealSlots))
	for rows.Next() {
		ps := models.PlanSlot{UserID: userID, Date: date}
		if err := rows.Scan(&ps.Slot, &ps.Macros.Calories, &ps.Macros.ProteinG, &ps.Macros.CarbsG, &ps.Macros.FatG, &ps.UpdatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, ps)
	}

	return slots, rows.Err()
}

// ListSwaps возвращает историю переносов за день, новые первыми.
func (r *SwapRepository) ListSwaps(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.SwapRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, date, from_slot, to_slot, category, amount_g, created_at
		 FROM swap_history
		 WHERE user_id = $1 AND date = $2::date
		 ORDER BY created_at DESC`,
		userID, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.SwapRecord, 0)
	for rows.Next() {
		var rec models.SwapRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Date, &rec.FromSlot, &rec.ToSlot, &rec.Category, &rec.AmountG, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// seedSlot заполняет строку плана суммами залогированных блюд слота
// при первом переносе за день. Строка создается один раз: блюда,
// добавленные после первого переноса, в plan_slots не попадают, и
// /swap/status показывает состояние плана, а не журнала за день.
func seedSlot(ctx context.Context, tx pgx.Tx, userID uuid.UUID, date time.Time, slot models.MealSlot) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO plan_slots (user_id, date, slot, calories, protein_g, carbs_g, fat_g)
		 SELECT $1, $2::date, $3,
		        COALESCE(SUM(calories), 0),
		        COALESCE(SUM(protein_g), 0),
		        COALESCE(SUM(carbs_g), 0),
		        COALESCE(SUM(fat_g), 0)
		 FROM logged_meals
		 WHERE user_id = $1 AND logged_at::date = $2::date AND slot = $3
		 ON CONFLICT (user_id, date, slot) DO NOTHING`,
		userID, date, slot,
	)
	return err
}

func orderSlots(a, b models.MealSlot) (models.MealSlot, models.MealSlot) {
	if a < b {
		return a, b
	}
	return b, a
}

// IsRetryable сообщает, стоит ли повторить перенос после ошибки:
// откат из-за конкурирующей транзакции разрешается повтором.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
