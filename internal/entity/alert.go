package entity

import "time"

// AlertFiring 冷却账本, 每个 key 只保留最近一次触发时间
type AlertFiring struct {
	Key     string    `gorm:"primaryKey"`
	FiredAt time.Time `gorm:"index"`
}

// Signal 已发出的信号记录
type Signal struct {
	Id        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Class     string    `gorm:"index" json:"class"`
	Short     string    `gorm:"index" json:"short"`
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	System    string    `json:"system"`
	Kind      string    `gorm:"index" json:"kind"`
	Key       string    `json:"key"`
	Detail    string    `json:"detail"` // json
	Delivered bool      `json:"delivered"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
