package repo

import (
	"github.com/KNICEX/signal-monitor/internal/entity"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(&entity.Instrument{}, &entity.AlertFiring{}, &entity.Signal{})
}
