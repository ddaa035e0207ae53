package repo

import (
	"context"
	"time"

	"github.com/KNICEX/signal-monitor/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepo 持久化冷却账本
type LedgerRepo interface {
	Load(ctx context.Context) (map[string]time.Time, error)
	Save(ctx context.Context, key string, firedAt time.Time) error
	Reset(ctx context.Context) error
}

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) LedgerRepo {
	return &ledgerRepo{
		db: db,
	}
}

func (repo *ledgerRepo) Load(ctx context.Context) (map[string]time.Time, error) {
	var list []entity.AlertFiring
	if err := repo.db.WithContext(ctx).Find(&list).Error; err != nil {
		return nil, err
	}
	res := make(map[string]time.Time, len(list))
	for _, f := range list {
		res[f.Key] = f.FiredAt
	}
	return res, nil
}

func (repo *ledgerRepo) Save(ctx context.Context, key string, firedAt time.Time) error {
	return repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"fired_at"}),
	}).Create(&entity.AlertFiring{Key: key, FiredAt: firedAt}).Error
}

func (repo *ledgerRepo) Reset(ctx context.Context) error {
	return repo.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entity.AlertFiring{}).Error
}
