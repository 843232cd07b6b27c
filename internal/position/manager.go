package position

import (
	"fmt"
	"sync"
	"time"

	"crossflow/internal/model"

	"github.com/bwmarrin/snowflake"
)

// 仓位生命周期管理
//
// OPEN -> (再评估)* -> CLOSED。仓位开仓后只有本管理器可以修改。
// 两类触发分工明确：每个价格更新都检查止损止盈（连续监控），
// 保本推进只在再评估周期检查。两者可能来自不同的定时器，
// 用一把互斥锁串行化对仓位的修改；锁内不做任何I/O。
type Manager struct {
	mu           sync.Mutex
	max          int
	open         map[string]*model.Position
	node         *snowflake.Node
	breakEvenPct float64   // 浮盈达到开仓价的该比例时推进保本
	lastTick     time.Time // 最后一次价格更新的时间戳，乱序的更新拒绝
}

func NewManager(max int, breakEvenPct float64) (*Manager, error) {
	if max <= 0 {
		return nil, fmt.Errorf("max positions must be positive, got %d", max)
	}
	if breakEvenPct <= 0 {
		return nil, fmt.Errorf("break-even pct must be positive, got %v", breakEvenPct)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("snowflake node: %w", err)
	}
	return &Manager{
		max:          max,
		open:         make(map[string]*model.Position),
		node:         node,
		breakEvenPct: breakEvenPct,
	}, nil
}

// Admit 接收一个待开仓位。持仓已满时返回 ErrCapacityExceeded，
// 信号直接丢弃，不排队不重试。成功时分配仓位id。
func (m *Manager) Admit(p *model.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.open) >= m.max {
		return fmt.Errorf("%w: %d open positions", model.ErrCapacityExceeded, len(m.open))
	}
	if p.ID == "" {
		p.ID = m.node.Generate().String()
	}
	cp := *p
	m.open[cp.ID] = &cp
	return nil
}

// Release 回滚一次失败的开仓（下单失败时调用）
func (m *Manager) Release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.open, id)
}

// OnPrice 每个价格更新都调用，检查止损止盈。
// 返回本次触发的平仓记录，已从持仓集合中移除。
// 时间戳早于最后一次更新的价格是过期行情，拒绝并保持持仓不动，
// 防止用旧价格平掉仓位。
func (m *Manager) OnPrice(price float64, now time.Time) ([]model.ClosedPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Before(m.lastTick) {
		return nil, fmt.Errorf("%w: tick %s before %s", model.ErrStaleOrdering,
			now.Format(time.RFC3339), m.lastTick.Format(time.RFC3339))
	}
	m.lastTick = now

	var closed []model.ClosedPosition
	for id, p := range m.open {
		reason, exit := hit(p, price)
		if reason == "" {
			continue
		}
		closed = append(closed, model.ClosedPosition{
			Position:  *p,
			Reason:    reason,
			ExitPrice: exit,
			ClosedAt:  now,
		})
		delete(m.open, id)
	}
	return closed, nil
}

// 止损止盈判定。触发时按触发价成交（穿价简化处理）。
func hit(p *model.Position, price float64) (model.CloseReason, float64) {
	switch p.Direction {
	case model.DirLong:
		if price <= p.StopPrice {
			return model.CloseReasonStop, p.StopPrice
		}
		if price >= p.TakeProfitPrice {
			return model.CloseReasonTarget, p.TakeProfitPrice
		}
	case model.DirShort:
		if price >= p.StopPrice {
			return model.CloseReasonStop, p.StopPrice
		}
		if price <= p.TakeProfitPrice {
			return model.CloseReasonTarget, p.TakeProfitPrice
		}
	}
	return "", 0
}

// Reevaluate 再评估（默认每4小时一次）。浮盈达到开仓价的
// breakEvenPct 且尚未保本时，把止损移到开仓价并置位标志。
// 该转换单向，之后不会回退。返回本次推进保本的仓位快照。
func (m *Manager) Reevaluate(price float64, now time.Time) []model.Position {
	m.mu.Lock()
	defer m.mu.Unlock()

	var promoted []model.Position
	for _, p := range m.open {
		p.LastEvaluatedAt = now
		if p.BreakEvenApplied {
			continue
		}
		if p.UnrealizedProfit(price) >= p.EntryPrice*m.breakEvenPct {
			p.StopPrice = p.EntryPrice
			p.BreakEvenApplied = true
			promoted = append(promoted, *p)
		}
	}
	return promoted
}

// CloseExternal 外部平仓（人工或交易所侧）
func (m *Manager) CloseExternal(id string, price float64, now time.Time) (*model.ClosedPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.open[id]
	if !ok {
		return nil, fmt.Errorf("position %s not open", id)
	}
	delete(m.open, id)
	return &model.ClosedPosition{
		Position:  *p,
		Reason:    model.CloseReasonExternal,
		ExitPrice: price,
		ClosedAt:  now,
	}, nil
}

// Snapshot 当前持仓的拷贝，供状态接口使用
func (m *Manager) Snapshot() []model.Position {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Position, 0, len(m.open))
	for _, p := range m.open {
		out = append(out, *p)
	}
	return out
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open)
}

// SetOrderID 下单成功后回填交易所订单id
func (m *Manager) SetOrderID(id, orderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.open[id]; ok {
		p.OrderID = orderID
	}
}
