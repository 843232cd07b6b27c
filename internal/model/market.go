package model

import "time"

// K线数据，时间戳严格递增，生成后不可变
type Kline struct {
	Timestamp time.Time `json:"time"`
	Open      float64   `json:"open"`
	Close     float64   `json:"close"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Vol       float64   `json:"vol"`     // 成交量 以币为单位
	VolCcy    float64   `json:"vol_ccy"` // 成交额 以USDT为单位
}

// K线周期
type BarPeriod string

const (
	Bar15m BarPeriod = "15m"
	Bar1h  BarPeriod = "1h"
	Bar4h  BarPeriod = "4h"
	Bar1d  BarPeriod = "1d"
)

// 交易方向
type Direction string

const (
	DirLong  Direction = "long"
	DirShort Direction = "short"
	DirNone  Direction = "none"
)

// Side 方向对应的下单买卖方向：做多买入，做空卖出
func (d Direction) Side() OrderSide {
	if d == DirShort {
		return Sell
	}
	return Buy
}

// 快慢线相对位置，慢线未热身完成时为 CrossUndefined
type CrossState int

const (
	CrossUndefined CrossState = iota
	CrossAbove                // 快线在慢线上方
	CrossBelow                // 快线在慢线下方
)

func (s CrossState) String() string {
	switch s {
	case CrossAbove:
		return "above"
	case CrossBelow:
		return "below"
	}
	return "undefined"
}

// 交叉信号，每次穿越只产生一次
type Signal struct {
	Symbol    string    `json:"symbol"`
	Direction Direction `json:"direction"`
	Price     float64   `json:"price"` // 触发信号K线的收盘价
	FastEMA   float64   `json:"fast_ema"`
	SlowEMA   float64   `json:"slow_ema"`
	Timestamp time.Time `json:"timestamp"` // 触发K线的时间
}
