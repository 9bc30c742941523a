package repository

import (
	"context"
	"time"

	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
)

type CompetitionRepository interface {
	Create(ctx context.Context, competition *entity.Competition) error
	GetByID(ctx context.Context, id int64) (*entity.Competition, error)
	GetUnawarded(ctx context.Context, now time.Time) ([]entity.Competition, error)
	GetRunning(ctx context.Context, now time.Time) ([]entity.Competition, error)
	MarkMidwayPingSent(ctx context.Context, id int64) error
	MarkFinalPingSent(ctx context.Context, id int64) error
	MarkWinnersAwarded(ctx context.Context, id int64) error
}

type competitionRepository struct{}

func NewCompetitionRepository() *competitionRepository {
	return &competitionRepository{}
}

func (r *competitionRepository) Create(ctx context.Context, competition *entity.Competition) error {
	return xcontext.DB(ctx).Create(competition).Error
}

func (r *competitionRepository) GetByID(ctx context.Context, id int64) (*entity.Competition, error) {
	var result entity.Competition
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetUnawarded returns the started competitions whose winners were not
// awarded yet.
func (r *competitionRepository) GetUnawarded(ctx context.Context, now time.Time) ([]entity.Competition, error) {
	var result []entity.Competition
	err := xcontext.DB(ctx).
		Where("starts_at<=? AND winners_awarded=?", now, false).
		Order("ends_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *competitionRepository) GetRunning(ctx context.Context, now time.Time) ([]entity.Competition, error) {
	var result []entity.Competition
	err := xcontext.DB(ctx).
		Where("starts_at<=? AND ends_at>?", now, now).
		Order("ends_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *competitionRepository) MarkMidwayPingSent(ctx context.Context, id int64) error {
	return compareAndSet(xcontext.DB(ctx), &entity.Competition{}, "id", id, "midway_ping_sent")
}

func (r *competitionRepository) MarkFinalPingSent(ctx context.Context, id int64) error {
	return compareAndSet(xcontext.DB(ctx), &entity.Competition{}, "id", id, "final_ping_sent")
}

func (r *competitionRepository) MarkWinnersAwarded(ctx context.Context, id int64) error {
	return compareAndSet(xcontext.DB(ctx), &entity.Competition{}, "id", id, "winners_awarded")
}
