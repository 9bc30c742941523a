package repository

import (
	"context"
	"time"

	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	Get(ctx context.Context, key string) (string, error)
	CreateIfNotExists(ctx context.Context, key, value string) error
	CompareAndSet(ctx context.Context, key, old, value string) error
}

type settingRepository struct{}

func NewSettingRepository() *settingRepository {
	return &settingRepository{}
}

func (r *settingRepository) Get(ctx context.Context, key string) (string, error) {
	var result entity.BotSetting
	if err := xcontext.DB(ctx).Take(&result, "name=?", key).Error; err != nil {
		return "", err
	}

	return result.Value, nil
}

func (r *settingRepository) CreateIfNotExists(ctx context.Context, key, value string) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.BotSetting{Name: key, Value: value}).Error
}

// CompareAndSet replaces the value only if it still equals old. It returns
// gorm.ErrRecordNotFound if another writer changed it first.
func (r *settingRepository) CompareAndSet(ctx context.Context, key, old, value string) error {
	return checkAffected(xcontext.DB(ctx).Model(&entity.BotSetting{}).
		Where("name=? AND value=?", key, old).
		Updates(map[string]any{"value": value, "updated_at": time.Now()}))
}
