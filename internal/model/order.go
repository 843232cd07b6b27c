package model

import "time"

type OrderSide string

const (
	Buy  OrderSide = "buy"
	Sell OrderSide = "sell"
)

type OrderType string

const (
	// 市价购买
	Market OrderType = "market"
	// 限价购买
	Limit OrderType = "limit"
)

// 交易类型
type OrderTradeType string

// 保证金模式（cross / isolated）
type OrderMgnMode string

const (
	// 使用现货 API
	OrderTradeSpot OrderTradeType = "spot"
	// 使用合约 API
	OrderTradeSwap OrderTradeType = "swap"
	// 全仓模式
	OrderMgnModeCross OrderMgnMode = "cross"
	// 逐仓模式
	OrderMgnModeIsolated OrderMgnMode = "isolated"
)

type Order struct {
	Symbol    string // BTC/USDT
	Side      OrderSide
	Price     float64
	Quantity  float64
	OrderType OrderType
	TPPrice   float64 // 止盈触发价，随单发给交易所
	SLPrice   float64 // 止损触发价
	Comment   string
	TradeType OrderTradeType
	MgnMode   OrderMgnMode
	Leverage  int
	Timestamp time.Time // 信号触发时间
}

type OrderResponse struct {
	OrderId string
	Status  int
	Message string
}

type OrderStatus struct {
	OrderID   string
	Status    string
	Filled    float64
	Remaining float64
}
