package exchange

import (
	"context"

	"crossflow/internal/model"
)

// 订单执行是外部协作方：引擎把最终仓位交给它开/改/平，
// 等待成交或失败，但不负责交易所层面的重试。

type Exchange interface {
	// 下单，止盈止损价随单发给交易所
	PlaceOrder(ctx context.Context, order *model.Order) (*model.OrderResponse, error)
	// 修改已挂的止损触发价（保本推进时调用）
	AmendStopLoss(ctx context.Context, symbol, orderID string, newStop float64) error
	// 平掉一个仓位
	ClosePosition(ctx context.Context, symbol string, dir model.Direction, quantity float64) error
	// 获取最新价格
	GetLastPrice(symbol string) (float64, error)
	// 拉取历史K线，按时间升序返回
	GetKlineRecords(symbol string, period model.BarPeriod, size int) ([]model.Kline, error)
}

// AccountProvider 账户快照提供方，余额按需读取
type AccountProvider interface {
	Balance(ctx context.Context, ccy string) (float64, error)
}
