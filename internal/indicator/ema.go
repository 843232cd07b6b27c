package indicator

import "github.com/markcheno/go-talib"

// ========== EMA 指标 ==========
//
// 平滑系数 α = 2/(N+1)，种子为前N根收盘价的简单平均，
// 之后 v = α*close + (1-α)*prev。第N-1根之前没有值。
// 流式计算和批量计算逐根一致，引擎启动补历史和实时喂K线共用同一套状态。

// 流式EMA，一次喂一根收盘价
type EMA struct {
	period int
	seed   []float64 // 热身期间积累的收盘价
	value  float64
	ready  bool
}

func NewEMA(period int) *EMA {
	return &EMA{
		period: period,
		seed:   make([]float64, 0, period),
	}
}

// Update 喂入一根收盘价，返回当前EMA值；热身未完成时ok为false
func (e *EMA) Update(close float64) (float64, bool) {
	if !e.ready {
		e.seed = append(e.seed, close)
		if len(e.seed) < e.period {
			return 0, false
		}
		// 种子 = 前N根收盘价的简单平均
		sum := 0.0
		for _, c := range e.seed {
			sum += c
		}
		e.value = sum / float64(e.period)
		e.ready = true
		e.seed = nil
		return e.value, true
	}

	k := 2.0 / float64(e.period+1)
	e.value = close*k + e.value*(1-k)
	return e.value, true
}

// Value 当前EMA值，热身未完成时ok为false
func (e *EMA) Value() (float64, bool) {
	return e.value, e.ready
}

func (e *EMA) Period() int {
	return e.period
}

// BatchEMA 批量计算，直接走talib（种子规则相同）。
// 返回切片与输入等长，下标 period-1 之前的值无意义。
func BatchEMA(closes []float64, period int) []float64 {
	if len(closes) < period {
		return make([]float64, len(closes))
	}
	return talib.Ema(closes, period)
}
