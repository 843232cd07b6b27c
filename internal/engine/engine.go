package engine

import (
	"context"
	"errors"
	"time"

	"crossflow/internal/dao"
	"crossflow/internal/exchange"
	"crossflow/internal/model"
	"crossflow/internal/model/entity"
	"crossflow/internal/position"
	"crossflow/internal/risk"
	"crossflow/internal/signal"
	"crossflow/internal/window"
	"crossflow/pkg/logger"
	"crossflow/pkg/recorder"
)

// 策略引擎：单个交易对的完整决策流
//
// K线 -> EMA -> 交叉信号 -> 时间窗口 -> 风控定仓 -> 准入 -> 下单。
// 所有策略状态（EMA热身、交叉状态、持仓集合）都在引擎实例内，
// 没有全局可变状态；多交易对时每个交易对一个引擎实例，互不共享。
//
// OnBar只由一个顺序的行情流调用；OnPrice和再评估可能来自不同
// 定时器，仓位状态由仓位管理器内部的锁串行化。锁内不做I/O。

type Config struct {
	Symbol         string
	TradeType      string // spot/swap
	FastPeriod     int
	SlowPeriod     int
	MaxPositions   int
	Risk           risk.Params
	Timezone       string
	WindowStart    string // "08:00"
	WindowEnd      string // "12:00"
	ReevalInterval time.Duration
	BreakEvenPct   float64
	Veto           window.NewsVeto // 可为nil，默认放行
}

type Engine struct {
	cfg  Config
	gen  *signal.Generator
	gate *window.Gate
	mgr  *position.Manager
	ex   exchange.Exchange
	acct exchange.AccountProvider
	d    *dao.RecordDao              // 可选
	rec  *recorder.JSONFileRecorder  // 可选
}

func New(cfg Config, ex exchange.Exchange, acct exchange.AccountProvider,
	d *dao.RecordDao, rec *recorder.JSONFileRecorder) (*Engine, error) {

	gen, err := signal.NewGenerator(cfg.Symbol, cfg.FastPeriod, cfg.SlowPeriod)
	if err != nil {
		return nil, err
	}
	gate, err := window.NewGate(cfg.Timezone, cfg.WindowStart, cfg.WindowEnd, cfg.Veto)
	if err != nil {
		return nil, err
	}
	mgr, err := position.NewManager(cfg.MaxPositions, cfg.BreakEvenPct)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:  cfg,
		gen:  gen,
		gate: gate,
		mgr:  mgr,
		ex:   ex,
		acct: acct,
		d:    d,
		rec:  rec,
	}, nil
}

// WarmUp 用历史K线铺底：喂给指标和交叉状态机，产生的历史信号
// 全部丢弃，不会开仓。乱序的历史K线跳过，不中断回放。
func (e *Engine) WarmUp(bars []model.Kline) {
	skipped := 0
	for _, k := range bars {
		if _, err := e.gen.OnBar(k); err != nil && !errors.Is(err, model.ErrIndicatorWarmup) {
			skipped++
		}
	}
	if skipped > 0 {
		logger.Warnf("[engine] %s warmup skipped %d out-of-order bars", e.cfg.Symbol, skipped)
	}
	if !e.gen.Ready() {
		logger.Warnf("[engine] %s warmup incomplete: %d bars < slow period %d, signals delayed until live bars fill the gap",
			e.cfg.Symbol, len(bars), e.cfg.SlowPeriod)
	}
}

// OnBar 处理一根已完成的K线，走完整决策流。
// 所有拒绝原因都是局部的非致命错误：记录后返回，不影响后续K线。
func (e *Engine) OnBar(ctx context.Context, k model.Kline) error {
	sig, err := e.gen.OnBar(k)
	if err != nil {
		if errors.Is(err, model.ErrIndicatorWarmup) {
			// 热身中：K线已被指标吸收，不算失败
			return nil
		}
		// 乱序K线：拒绝这一根，状态不动
		logger.Warn("[engine] bar rejected",
			logger.Pair("symbol", e.cfg.Symbol),
			logger.Pair("ts", k.Timestamp),
			logger.Pair("err", err))
		return err
	}
	if sig == nil {
		return nil
	}

	logger.Info("[engine] crossover signal",
		logger.Pair("symbol", sig.Symbol),
		logger.Pair("direction", sig.Direction),
		logger.Pair("price", sig.Price),
		logger.Pair("fast", sig.FastEMA),
		logger.Pair("slow", sig.SlowEMA))

	if !e.gate.Allows(sig.Timestamp) {
		logger.Info("[engine] signal suppressed outside trading window",
			logger.Pair("symbol", sig.Symbol),
			logger.Pair("ts", sig.Timestamp))
		e.recordSignal(ctx, sig, false, "window")
		return nil
	}

	balance, err := e.acct.Balance(ctx, "USDT")
	if err != nil {
		logger.Error("[engine] get balance failed", logger.Pair("err", err))
		e.recordSignal(ctx, sig, false, "balance")
		return nil
	}

	pos, err := risk.Build(*sig, balance, e.cfg.Risk)
	if err != nil {
		// 风控拒绝：丢弃信号，原因上报
		logger.Warn("[engine] signal dropped by risk",
			logger.Pair("symbol", sig.Symbol),
			logger.Pair("err", err))
		e.recordSignal(ctx, sig, false, "risk")
		return nil
	}

	if err := e.mgr.Admit(pos); err != nil {
		if errors.Is(err, model.ErrCapacityExceeded) {
			logger.Warn("[engine] signal dropped: position cap reached",
				logger.Pair("symbol", sig.Symbol),
				logger.Pair("max", e.cfg.MaxPositions))
			e.recordSignal(ctx, sig, false, "capacity")
			return nil
		}
		e.recordSignal(ctx, sig, false, "admit")
		return nil
	}

	order := &model.Order{
		Symbol:    pos.Symbol,
		Side:      pos.Direction.Side(),
		Price:     pos.EntryPrice,
		Quantity:  pos.Size,
		OrderType: model.Market,
		TPPrice:   pos.TakeProfitPrice,
		SLPrice:   pos.StopPrice,
		Comment:   "ema-crossover",
		TradeType: model.OrderTradeType(e.cfg.TradeType),
		Timestamp: sig.Timestamp,
	}
	resp, err := e.ex.PlaceOrder(ctx, order)
	if err != nil {
		// 下单失败释放名额；交易所层面的重试是执行方的事，这里不重试
		e.mgr.Release(pos.ID)
		logger.Error("[engine] place order failed",
			logger.Pair("symbol", pos.Symbol),
			logger.Pair("err", err))
		e.recordSignal(ctx, sig, false, "execution")
		return nil
	}
	e.mgr.SetOrderID(pos.ID, resp.OrderId)

	logger.Info("[engine] position opened",
		logger.Pair("id", pos.ID),
		logger.Pair("order_id", resp.OrderId),
		logger.Pair("direction", pos.Direction),
		logger.Pair("entry", pos.EntryPrice),
		logger.Pair("size", pos.Size),
		logger.Pair("stop", pos.StopPrice),
		logger.Pair("take_profit", pos.TakeProfitPrice))
	e.recordSignal(ctx, sig, true, "")
	return nil
}

// OnPrice 每个价格更新都检查止损止盈。止盈止损单已随开仓挂在
// 交易所，实际成交由交易所完成，这里只做本地判定、记录和移除。
// 过期的价格更新被拒绝，持仓不动。
func (e *Engine) OnPrice(ctx context.Context, price float64, ts time.Time) {
	closed, err := e.mgr.OnPrice(price, ts)
	if err != nil {
		logger.Warn("[engine] price update rejected",
			logger.Pair("ts", ts),
			logger.Pair("err", err))
		return
	}
	for _, c := range closed {
		e.reportClosed(ctx, c)
	}
}

// OnReevaluationTick 再评估（默认每4小时）：保本推进检查。
// 推进成功后把新止损价推给交易所，推送失败只记录，下个周期
// 价格条件仍满足时不会重复推进（标志已置位），由人工处理。
func (e *Engine) OnReevaluationTick(ctx context.Context, now time.Time) {
	price, err := e.ex.GetLastPrice(e.cfg.Symbol)
	if err != nil {
		logger.Error("[engine] reevaluation: get last price failed", logger.Pair("err", err))
		return
	}

	promoted := e.mgr.Reevaluate(price, now)
	for _, p := range promoted {
		logger.Info("[engine] stop moved to break-even",
			logger.Pair("id", p.ID),
			logger.Pair("entry", p.EntryPrice))
		if err := e.ex.AmendStopLoss(ctx, p.Symbol, p.OrderID, p.StopPrice); err != nil {
			logger.Error("[engine] amend stop on exchange failed",
				logger.Pair("id", p.ID),
				logger.Pair("err", err))
		}
	}
}

// Run 启动再评估定时器。K线和价格更新由外部行情源驱动，
// 行情停了引擎就停在原地，没有别的后台任务需要取消。
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.ReevalInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				e.OnReevaluationTick(ctx, now)
			}
		}
	}()
}

// Positions 当前持仓快照，供状态接口使用
func (e *Engine) Positions() []model.Position {
	return e.mgr.Snapshot()
}

func (e *Engine) reportClosed(ctx context.Context, c model.ClosedPosition) {
	logger.Info("[engine] position closed",
		logger.Pair("id", c.Position.ID),
		logger.Pair("reason", c.Reason),
		logger.Pair("exit", c.ExitPrice),
		logger.Pair("break_even", c.Position.BreakEvenApplied))

	if e.rec != nil {
		if err := e.rec.Record(c); err != nil {
			logger.Errorf("[engine] record closed trade: %v", err)
		}
	}
	if e.d != nil {
		rec := &entity.TradeRecord{
			PositionID:      c.Position.ID,
			OrderID:         c.Position.OrderID,
			Symbol:          c.Position.Symbol,
			Direction:       c.Position.Direction,
			EntryPrice:      c.Position.EntryPrice,
			Size:            c.Position.Size,
			StopPrice:       c.Position.StopPrice,
			TakeProfitPrice: c.Position.TakeProfitPrice,
			ExitPrice:       c.ExitPrice,
			Reason:          c.Reason,
			BreakEven:       c.Position.BreakEvenApplied,
			OpenedAt:        c.Position.OpenedAt,
			ClosedAt:        c.ClosedAt,
		}
		if err := e.d.SaveTrade(ctx, rec); err != nil {
			logger.Errorf("[engine] save trade record: %v", err)
		}
	}
}

func (e *Engine) recordSignal(ctx context.Context, sig *model.Signal, accepted bool, dropReason string) {
	if e.d == nil {
		return
	}
	rec := &entity.SignalRecord{
		Symbol:     sig.Symbol,
		Direction:  sig.Direction,
		Price:      sig.Price,
		FastEMA:    sig.FastEMA,
		SlowEMA:    sig.SlowEMA,
		Timestamp:  sig.Timestamp,
		Accepted:   accepted,
		DropReason: dropReason,
	}
	if err := e.d.SaveSignal(ctx, rec); err != nil {
		logger.Errorf("[engine] save signal record: %v", err)
	}
}
