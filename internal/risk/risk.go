package risk

import (
	"fmt"

	"crossflow/internal/model"
)

// 风控：信号 + 账户余额 + 风险参数 -> 待开仓位
//
// 仓位大小按止损距离反推：止损被打满时恰好亏掉余额的 RiskPct。
// 这里只做纯计算，不下单。

type Params struct {
	RiskPct       float64 // 单笔风险占余额比例，(0,1)
	StopLossPct   float64 // 止损比例，(0,1)
	TakeProfitPct float64 // 止盈比例，(0,1)
}

// Build 根据信号计算仓位大小和止损止盈价。
// 余额或价格非正、比例超出(0,1)时返回 ErrInvalidRiskInput。
func Build(sig model.Signal, balance float64, p Params) (*model.Position, error) {
	if balance <= 0 {
		return nil, fmt.Errorf("%w: balance %v", model.ErrInvalidRiskInput, balance)
	}
	if sig.Price <= 0 {
		return nil, fmt.Errorf("%w: entry price %v", model.ErrInvalidRiskInput, sig.Price)
	}
	if sig.Direction != model.DirLong && sig.Direction != model.DirShort {
		return nil, fmt.Errorf("%w: direction %q", model.ErrInvalidRiskInput, sig.Direction)
	}
	for name, v := range map[string]float64{
		"risk":       p.RiskPct,
		"stopLoss":   p.StopLossPct,
		"takeProfit": p.TakeProfitPct,
	} {
		if v <= 0 || v >= 1 {
			return nil, fmt.Errorf("%w: %s pct %v outside (0,1)", model.ErrInvalidRiskInput, name, v)
		}
	}

	// 止损打满恰好亏掉 balance*RiskPct
	size := balance * p.RiskPct / (sig.Price * p.StopLossPct)

	pos := &model.Position{
		Symbol:     sig.Symbol,
		Direction:  sig.Direction,
		EntryPrice: sig.Price,
		Size:       size,
		OpenedAt:   sig.Timestamp,
	}
	// 不做精度取整：低价标的取整会把止损止盈拍到0或开仓价上，
	// 仓位就失去了保护。价格精度由交易所适配层按合约规则处理。
	switch sig.Direction {
	case model.DirLong:
		pos.StopPrice = sig.Price * (1 - p.StopLossPct)
		pos.TakeProfitPrice = sig.Price * (1 + p.TakeProfitPct)
		if !(pos.StopPrice < pos.EntryPrice && pos.EntryPrice < pos.TakeProfitPrice) {
			return nil, fmt.Errorf("%w: levels stop=%v entry=%v tp=%v collapsed",
				model.ErrInvalidRiskInput, pos.StopPrice, pos.EntryPrice, pos.TakeProfitPrice)
		}
	case model.DirShort:
		pos.StopPrice = sig.Price * (1 + p.StopLossPct)
		pos.TakeProfitPrice = sig.Price * (1 - p.TakeProfitPct)
		if !(pos.TakeProfitPrice < pos.EntryPrice && pos.EntryPrice < pos.StopPrice) {
			return nil, fmt.Errorf("%w: levels stop=%v entry=%v tp=%v collapsed",
				model.ErrInvalidRiskInput, pos.StopPrice, pos.EntryPrice, pos.TakeProfitPrice)
		}
	}
	return pos, nil
}
