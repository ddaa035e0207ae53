package entity

import (
	"time"
)

// Instrument 被监控的标的, Short 为用户输入的简称, Symbol 为交易所代码
type Instrument struct {
	Id        int64  `gorm:"primaryKey;autoIncrement"`
	Class     string `gorm:"uniqueIndex:instrument_idx"`
	Short     string `gorm:"uniqueIndex:instrument_idx"`
	Symbol    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	ClassCrypto = "crypto"
	ClassEquity = "equity"
)
