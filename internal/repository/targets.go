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

type TargetsRepository struct {
	db *pgxpool.Pool
}

// NewTargetsRepository создает репозиторий дневных целей и профилей.
func NewTargetsRepository(db *pgxpool.Pool) *TargetsRepository {
	return &TargetsRepository{db: db}
}

// GetForDate возвращает явно сохраненные цели на дату.
func (r *TargetsRepository) GetForDate(ctx context.Context, userID uuid.UUID, date time.Time) (models.DailyTargets, error) {
	var targets models.DailyTargets

	err := r.db.QueryRow(ctx,
		`SELECT user_id, date, calories, protein_g, carbs_g, fat_g, created_at
		 FROM daily_targets
		 WHERE user_id = $1 AND date = $2::date`,
		userID, date,
	).Scan(&targets.UserID, &targets.Date,
		&targets.Macros.Calories, &targets.Macros.ProteinG, &targets.Macros.CarbsG, &targets.Macros.FatG,
		&targets.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return targets, ErrNotFound
		}
		return targets, err
	}

	return targets, nil
}

// Upsert сохраняет цели на дату, перезаписывая прежние.
func (r *TargetsRepository) Upsert(ctx context.Context, targets models.DailyTargets) (models.DailyTargets, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO daily_targets (user_id, date, calories, protein_g, carbs_g, fat_g)
		 VALUES ($1, $2::date, $3, $4, $5, $6)
		 ON CONFLICT (user_id, date) DO UPDATE
		 SET calories = EXCLUDED.calories,
		     protein_g = EXCLUDED.protein_g,
		     carbs_g = EXCLUDED.carbs_g,
		     fat_g = EXCLUDED.fat_g
		 RETURNING created_at`,
		targets.UserID, targets.Date,
		targets.Macros.Calories, targets.Macros.ProteinG, targets.Macros.CarbsG, targets.Macros.FatG,
	).Scan(&targets.CreatedAt)
	if err != nil {
		return models.DailyTargets{}, err
	}

	return targets, nil
}

// GetProfile возвращает профиль пользователя.
func (r *TargetsRepository) GetProfile(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	var profile models.Profile

	err := r.db.QueryRow(ctx,
		`SELECT user_id, goal, sex, birth_date, height_cm, weight_kg, activity_level, dietary_restrictions, updated_at
		 FROM profiles
		 WHERE user_id = $1`,
		userID,
	).Scan(&profile.UserID, &profile.Goal, &profile.Sex, &profile.BirthDate,
		&profile.HeightCM, &profile.WeightKG, &profile.ActivityLevel,
		&profile.DietaryRestrictions, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile, ErrNotFound
		}
		return profile, err
	}

	return profile, nil
}

// UpsertProfile сохраняет профиль пользователя целиком.
func (r *TargetsRepository) UpsertProfile(ctx context.Context, profile models.Profile) (models.Profile, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO profiles (user_id, goal, sex, birth_date, height_cm, weight_kg, activity_level, dietary_restrictions, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		 ON CONFLICT (user_id) DO UPDATE
		 SET goal = EXCLUDED.goal,
		     sex = EXCLUDED.sex,
		     birth_date = EXCLUDED.birth_date,
		     height_cm = EXCLUDED.height_cm,
		     weight_kg = EXCLUDED.weight_kg,
		     activity_level = EXCLUDED.activity_level,
		     dietary_restrictions = EXCLUDED.dietary_restrictions,
		     updated_at = now()
		 RETURNING updated_at`,
		profile.UserID, profile.Goal, profile.Sex, profile.BirthDate,
		profile.HeightCM, profile.WeightKG, profile.ActivityLevel, profile.DietaryRestrictions,
	).Scan(&profile.UpdatedAt)
	if err != nil {
		return models.Profile{}, err
	}

	return profile, nil
}
