package repo

import (
	"context"

	"github.com/KNICEX/signal-monitor/internal/entity"
	"gorm.io/gorm"
)

type SignalRepo interface {
	Create(ctx context.Context, signal entity.Signal) (int64, error)
	FindRecent(ctx context.Context, limit int) ([]entity.Signal, error)
}

type signalRepo struct {
	db *gorm.DB
}

func NewSignalRepo(db *gorm.DB) SignalRepo {
	return &signalRepo{
		db: db,
	}
}

func (r *signalRepo) Create(ctx context.Context, signal entity.Signal) (int64, error) {
	err := r.db.WithContext(ctx).Create(&signal).Error
	if err != nil {
		return 0, err
	}
	return signal.Id, nil
}

func (r *signalRepo) FindRecent(ctx context.Context, limit int) ([]entity.Signal, error) {
	if limit <= 0 {
		limit = 50
	}
	var signals []entity.Signal
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&signals).Error
	if err != nil {
		return nil, err
	}
	return signals, nil
}
