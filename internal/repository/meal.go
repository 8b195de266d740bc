package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/macro-meal-planner/backend/internal/models"
)

type MealRepository struct {
	db *pgxpool.Pool
}

// NewMealRepository создает репозиторий записанных приемов пищи.
func NewMealRepository(db *pgxpool.Pool) *MealRepository {
	return &MealRepository{db: db}
}

// Create сохраняет прием пищи.
func (r *MealRepository) Create(ctx context.Context, meal models.LoggedMeal) (models.LoggedMeal, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO logged_meals (id, user_id, slot, name, calories, protein_g, carbs_g, fat_g, logged_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		meal.ID, meal.UserID, meal.Slot, meal.Name,
		meal.Macros.Calories, meal.Macros.ProteinG, meal.Macros.CarbsG, meal.Macros.FatG,
		meal.LoggedAt,
	).Scan(&meal.CreatedAt)
	if err != nil {
		return models.LoggedMeal{}, err
	}

	return meal, nil
}

// GetByID возвращает прием пищи пользователя.
func (r *MealRepository) GetByID(ctx context.Context, userID, mealID uuid.UUID) (models.LoggedMeal, error) {
	var meal models.LoggedMeal

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, slot, name, calories, protein_g, carbs_g, fat_g, logged_at, created_at
		 FROM logged_meals
		 WHERE id = $1 AND user_id = $2`,
		mealID, userID,
	).Scan(&meal.ID, &meal.UserID, &meal.Slot, &meal.Name,
		&meal.Macros.Calories, &meal.Macros.ProteinG, &meal.Macros.CarbsG, &meal.Macros.FatG,
		&meal.LoggedAt, &meal.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return meal, ErrNotFound
		}
		return meal, err
	}

	return meal, nil
}

// ListByDate возвращает приемы пищи пользователя за день в порядке записи.
func (r *MealRepository) ListByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.LoggedMeal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, slot, name, calories, protein_g, carbs_g, fat_g, logged_at, created_at
		 FROM logged_meals
		 WHERE user_id = $1 AND logged_at::date = $2::date
		 ORDER BY logged_at, created_at`,
		userID, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meals := make([]models.LoggedMeal, 0)
	for rows.Next() {
		var meal models.LoggedMeal
		if err := rows.Scan(&meal.ID, &meal.UserID, &meal.Slot, &meal.Name,
			&meal.Macros.Calories, &meal.Macros.ProteinG, &meal.Macros.CarbsG, &meal.Macros.FatG,
			&meal.LoggedAt, &meal.CreatedAt); err != nil {
			return nil, err
		}
		meals = append(meals, meal)
	}

	return meals, rows.Err()
}

// SumBySlot возвращает суммы съеденного за день по слотам.
// Слоты без записей в карте отсутствуют: нулевая сумма читается
// вызывающим кодом как нулевое значение карты.
func (r *MealRepository) SumBySlot(ctx context.Context, userID uuid.UUID, date time.Time) (map[models.MealSlot]models.MacroSet, error) {
	rows, err := r.db.Query(ctx,
		`SELECT slot,
		        COALESCE(SUM(calories), 0),
		        COALESCE(SUM(protein_g), 0),
		        COALESCE(SUM(carbs_g), 0),
		        COALESCE(SUM(fat_g), 0)
		 FROM logged_meals
		 WHERE user_id = $1 AND logged_at::date = $2::date
		 GROUP BY slot`,
		userID, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[models.MealSlot]models.MacroSet, len(models.MealSlots))
	for rows.Next() {
		var slot models.MealSlot
		var macros models.MacroSet
		if err := rows.Scan(&slot, &macros.Calories, &macros.ProteinG, &macros.CarbsG, &macros.FatG); err != nil {
			return nil, err
		}
		sums[slot] = macros
	}

	return sums, rows.Err()
}

// Update изменяет прием пищи пользователя.
func (r *MealRepository) Update(ctx context.Context, meal models.LoggedMeal) (models.LoggedMeal, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE logged_meals
		 SET slot = $3, name = $4, calories = $5, protein_g = $6, carbs_g = $7, fat_g = $8, logged_at = $9
		 WHERE id = $1 AND user_id = $2`,
		meal.ID, meal.UserID, meal.Slot, meal.Name,
		meal.Macros.Calories, meal.Macros.ProteinG, meal.Macros.CarbsG, meal.Macros.FatG,
		meal.LoggedAt,
	)
	if err != nil {
		return models.LoggedMeal{}, err
	}
	if tag.RowsAffected() == 0 {
		return models.LoggedMeal{}, ErrNotFound
	}

	return meal, nil
}

// Delete удаляет прием пищи пользователя.
func (r *MealRepository) Delete(ctx context.Context, userID, mealID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM logged_meals
		 WHERE id = $1 AND user_id = $2`,
		mealID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
