package repo

import (
	"context"

	"github.com/KNICEX/signal-monitor/internal/entity"
	"gorm.io/gorm"
)

type InstrumentRepo interface {
	Create(ctx context.Context, ins entity.Instrument) error
	Delete(ctx context.Context, class, short string) (bool, error)
	FindAll(ctx context.Context) ([]entity.Instrument, error)
	FindByClass(ctx context.Context, class string) ([]entity.Instrument, error)
	FindByShort(ctx context.Context, class, short string) (entity.Instrument, error)
	Count(ctx context.Context) (int64, error)
}

type instrumentRepo struct {
	db *gorm.DB
}

func NewInstrumentRepo(db *gorm.DB) InstrumentRepo {
	return &instrumentRepo{
		db: db,
	}
}

func (repo *instrumentRepo) Create(ctx context.Context, ins entity.Instrument) error {
	return repo.db.WithContext(ctx).Create(&ins).Error
}

func (repo *instrumentRepo) Delete(ctx context.Context, class, short string) (bool, error) {
	res := repo.db.WithContext(ctx).Where("class = ? AND short = ?", class, short).Delete(&entity.Instrument{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (repo *instrumentRepo) FindAll(ctx context.Context) ([]entity.Instrument, error) {
	var list []entity.Instrument
	err := repo.db.WithContext(ctx).Order("class, id").Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (repo *instrumentRepo) FindByClass(ctx context.Context, class string) ([]entity.Instrument, error) {
	var list []entity.Instrument
	err := repo.db.WithContext(ctx).Where("class = ?", class).Order("id").Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// FindByShort returns gorm.ErrRecordNotFound when absent.
func (repo *instrumentRepo) FindByShort(ctx context.Context, class, short string) (entity.Instrument, error) {
	var ins entity.Instrument
	err := repo.db.WithContext(ctx).Where("class = ? AND short = ?", class, short).First(&ins).Error
	if err != nil {
		return entity.Instrument{}, err
	}
	return ins, nil
}

func (repo *instrumentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := repo.db.WithContext(ctx).Model(&entity.Instrument{}).Count(&n).Error
	return n, err
}
