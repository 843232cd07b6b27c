package signal

import (
	"fmt"
	"time"

	"crossflow/internal/indicator"
	"crossflow/internal/model"
)

// 交叉信号状态机
//
// 每根K线更新快慢两条EMA，比较相对位置：
// 下方(或未定义) -> 上方 产生做多信号；上方(或未定义) -> 下方 产生做空信号。
// 相等不改变状态也不发信号。同一个排列持续期间绝不重复发信号。
// K线必须按时间戳严格递增喂入，乱序直接拒绝，状态不动。
type Generator struct {
	symbol string
	fast   *indicator.EMA
	slow   *indicator.EMA
	state  model.CrossState
	lastTS time.Time
}

func NewGenerator(symbol string, fastPeriod, slowPeriod int) (*Generator, error) {
	if fastPeriod <= 0 || slowPeriod <= fastPeriod {
		return nil, fmt.Errorf("invalid ema periods fast=%d slow=%d", fastPeriod, slowPeriod)
	}
	return &Generator{
		symbol: symbol,
		fast:   indicator.NewEMA(fastPeriod),
		slow:   indicator.NewEMA(slowPeriod),
		state:  model.CrossUndefined,
	}, nil
}

// OnBar 喂入一根已完成的K线。只在穿越发生的那根K线上返回信号，其余返回nil。
// 热身期间返回 ErrIndicatorWarmup（K线已被指标吸收）。
// 乱序K线返回 ErrStaleOrdering，EMA和状态机完全不变。
func (g *Generator) OnBar(k model.Kline) (*model.Signal, error) {
	if !g.lastTS.IsZero() && !k.Timestamp.After(g.lastTS) {
		return nil, fmt.Errorf("%w: bar %s not after %s",
			model.ErrStaleOrdering, k.Timestamp.Format(time.RFC3339), g.lastTS.Format(time.RFC3339))
	}
	g.lastTS = k.Timestamp

	fast, fastOK := g.fast.Update(k.Close)
	slow, slowOK := g.slow.Update(k.Close)
	if !fastOK || !slowOK {
		// 慢线还在热身，K线已被吸收，只是还产生不了信号
		return nil, fmt.Errorf("%w: slow ema period %d", model.ErrIndicatorWarmup, g.slow.Period())
	}

	// 相等时保持上一次的分类
	cur := g.state
	if fast > slow {
		cur = model.CrossAbove
	} else if fast < slow {
		cur = model.CrossBelow
	}

	prev := g.state
	g.state = cur
	if cur == prev {
		return nil, nil
	}

	sig := &model.Signal{
		Symbol:    g.symbol,
		Price:     k.Close,
		FastEMA:   fast,
		SlowEMA:   slow,
		Timestamp: k.Timestamp,
	}
	switch cur {
	case model.CrossAbove:
		sig.Direction = model.DirLong
	case model.CrossBelow:
		sig.Direction = model.DirShort
	default:
		return nil, nil
	}
	return sig, nil
}

// State 当前快慢线排列
func (g *Generator) State() model.CrossState {
	return g.state
}

// Ready 慢线是否热身完成
func (g *Generator) Ready() bool {
	_, ok := g.slow.Value()
	return ok
}
