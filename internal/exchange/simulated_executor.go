package exchange

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"crossflow/internal/model"

	"github.com/google/uuid"
)

// 模拟执行器，本地联调和测试用：订单立即"成交"，价格本地小幅浮动
type SimulatedExecutor struct {
	mu      sync.Mutex
	orders  map[string]*model.OrderStatus
	prices  map[string]float64
	history map[string][]model.Kline
	balance float64
}

func NewSimulatedExecutor(balance float64) *SimulatedExecutor {
	return &SimulatedExecutor{
		orders:  make(map[string]*model.OrderStatus),
		prices:  make(map[string]float64),
		history: make(map[string][]model.Kline),
		balance: balance,
	}
}

// SetInitialPrice 设置初始价格
func (s *SimulatedExecutor) SetInitialPrice(symbol string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[symbol] = price
}

// SetHistory 预置历史K线，供启动补历史用
func (s *SimulatedExecutor) SetHistory(symbol string, bars []model.Kline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[symbol] = bars
}

func (s *SimulatedExecutor) PlaceOrder(ctx context.Context, order *model.Order) (*model.OrderResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orderID := uuid.NewString()
	s.orders[orderID] = &model.OrderStatus{
		OrderID:   orderID,
		Status:    "filled", // 模拟立即成交
		Filled:    order.Quantity,
		Remaining: 0,
	}
	return &model.OrderResponse{
		OrderId: orderID,
		Status:  1,
		Message: "Simulated order filled",
	}, nil
}

func (s *SimulatedExecutor) AmendStopLoss(ctx context.Context, symbol, orderID string, newStop float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[orderID]; !ok {
		return fmt.Errorf("order %s not found", orderID)
	}
	return nil
}

func (s *SimulatedExecutor) ClosePosition(ctx context.Context, symbol string, dir model.Direction, quantity float64) error {
	return nil
}

// 模拟版，返回本地价格并做小幅浮动
func (s *SimulatedExecutor) GetLastPrice(symbol string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.prices[symbol]
	if !ok {
		price = 10000 + rand.Float64()*2000
	}
	// 模拟价格波动 ±0.5%
	price += (rand.Float64()*0.01 - 0.005) * price
	s.prices[symbol] = price
	return price, nil
}

func (s *SimulatedExecutor) GetKlineRecords(symbol string, period model.BarPeriod, size int) ([]model.Kline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bars := s.history[symbol]
	if len(bars) > size {
		bars = bars[len(bars)-size:]
	}
	out := make([]model.Kline, len(bars))
	copy(out, bars)
	return out, nil
}

// Balance 固定余额的账户快照
func (s *SimulatedExecutor) Balance(ctx context.Context, ccy string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance, nil
}

var _ Exchange = (*SimulatedExecutor)(nil)
var _ AccountProvider = (*SimulatedExecutor)(nil)
