package entity

import (
	"time"

	"crossflow/internal/model"

	"gorm.io/plugin/soft_delete"
)

// 信号记录，每次交叉信号入库一条，含被丢弃的信号和丢弃原因
type SignalRecord struct {
	ID         uint64                `gorm:"primaryKey"`
	Symbol     string                `gorm:"type:varchar(30);not null;index:idx_symbol_ts"`
	Direction  model.Direction       `gorm:"type:varchar(10);not null"` // long/short
	Price      float64               `gorm:"type:decimal(15,8)"`
	FastEMA    float64               `gorm:"column:fast_ema;type:decimal(15,8)"`
	SlowEMA    float64               `gorm:"column:slow_ema;type:decimal(15,8)"`
	Timestamp  time.Time             `gorm:"column:timestamp;type:timestamp;not null;index:idx_symbol_ts"` // K线收盘时间
	Accepted   bool                  `gorm:"column:accepted"`                                              // 是否开仓成功
	DropReason string                `gorm:"column:drop_reason;type:varchar(50)"`                          // 被丢弃的原因：window/veto/risk/capacity/execution
	CreatedAt  time.Time             `gorm:"column:created_at"`
	DeletedAt  time.Time             `gorm:"column:deleted_at"`
	IsDel      soft_delete.DeletedAt `gorm:"softDelete:flag,DeletedAtField:DeletedAt"`
}

func (SignalRecord) TableName() string {
	return "signal_records"
}

// 平仓记录
type TradeRecord struct {
	ID              uint64                `gorm:"primaryKey"`
	PositionID      string                `gorm:"column:position_id;type:varchar(30);not null;index"`
	OrderID         string                `gorm:"column:order_id;type:varchar(50)"`
	Symbol          string                `gorm:"type:varchar(30);not null;index"`
	Direction       model.Direction       `gorm:"type:varchar(10);not null"`
	EntryPrice      float64               `gorm:"column:entry_price;type:decimal(15,8)"`
	Size            float64               `gorm:"type:decimal(20,8)"`
	StopPrice       float64               `gorm:"column:stop_price;type:decimal(15,8)"` // 平仓时的止损价（可能已移到开仓价）
	TakeProfitPrice float64               `gorm:"column:take_profit_price;type:decimal(15,8)"`
	ExitPrice       float64               `gorm:"column:exit_price;type:decimal(15,8)"`
	Reason          model.CloseReason     `gorm:"type:varchar(10);not null"` // stop/target/external
	BreakEven       bool                  `gorm:"column:break_even"`
	OpenedAt        time.Time             `gorm:"column:opened_at;type:timestamp"`
	ClosedAt        time.Time             `gorm:"column:closed_at;type:timestamp"`
	CreatedAt       time.Time             `gorm:"column:created_at"`
	DeletedAt       time.Time             `gorm:"column:deleted_at"`
	IsDel           soft_delete.DeletedAt `gorm:"softDelete:flag,DeletedAtField:DeletedAt"`
}

func (TradeRecord) TableName() string {
	return "trade_records"
}
