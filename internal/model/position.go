package model

import "time"

// 仓位，由仓位管理器独占持有，开仓后只有管理器可以修改
type Position struct {
	ID               string    `json:"id"`
	OrderID          string    `json:"order_id"` // 交易所订单id
	Symbol           string    `json:"symbol"`
	Direction        Direction `json:"direction"`
	EntryPrice       float64   `json:"entry_price"`
	Size             float64   `json:"size"`
	StopPrice        float64   `json:"stop_price"`
	TakeProfitPrice  float64   `json:"take_profit_price"`
	OpenedAt         time.Time `json:"opened_at"`
	BreakEvenApplied bool      `json:"break_even_applied"`
	LastEvaluatedAt  time.Time `json:"last_evaluated_at"`
}

// UnrealizedProfit 当前价格下的浮盈（每单位），亏损时为负
func (p *Position) UnrealizedProfit(price float64) float64 {
	if p.Direction == DirShort {
		return p.EntryPrice - price
	}
	return price - p.EntryPrice
}

// 平仓原因
type CloseReason string

const (
	CloseReasonStop     CloseReason = "stop"     // 触发止损
	CloseReasonTarget   CloseReason = "target"   // 触发止盈
	CloseReasonExternal CloseReason = "external" // 外部平仓
)

// 已平仓记录
type ClosedPosition struct {
	Position  Position    `json:"position"`
	Reason    CloseReason `json:"reason"`
	ExitPrice float64     `json:"exit_price"`
	ClosedAt  time.Time   `json:"closed_at"`
}
