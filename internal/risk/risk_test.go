package risk

import (
	"errors"
	"math"
	"testing"
	"time"

	"crossflow/internal/model"
)

var params = Params{RiskPct: 0.01, StopLossPct: 0.02, TakeProfitPct: 0.04}

func sig(dir model.Direction, price float64) model.Signal {
	return model.Signal{
		Symbol:    "BTC/USDT",
		Direction: dir,
		Price:     price,
		Timestamp: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
	}
}

// 止损打满的亏损必须恰好等于 balance * riskPct
func TestSizingInvariant(t *testing.T) {
	for _, balance := range []float64{1000, 25000, 3.5} {
		for _, price := range []float64{100, 64000, 0.37} {
			pos, err := Build(sig(model.DirLong, price), balance, params)
			if err != nil {
				t.Fatal(err)
			}
			loss := pos.Size * price * params.StopLossPct
			want := balance * params.RiskPct
			if math.Abs(loss-want) > want*1e-9 {
				t.Fatalf("balance=%v price=%v: full-stop loss %v, want %v", balance, price, loss, want)
			}
		}
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) <= math.Abs(b)*1e-12
}

func TestLongLevels(t *testing.T) {
	pos, err := Build(sig(model.DirLong, 100), 10000, params)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(pos.StopPrice, 98) {
		t.Fatalf("stop = %v, want 98", pos.StopPrice)
	}
	if !approx(pos.TakeProfitPrice, 104) {
		t.Fatalf("take profit = %v, want 104", pos.TakeProfitPrice)
	}
	if !(pos.StopPrice < pos.EntryPrice && pos.EntryPrice < pos.TakeProfitPrice) {
		t.Fatal("long levels on wrong side of entry")
	}
}

func TestShortLevels(t *testing.T) {
	pos, err := Build(sig(model.DirShort, 100), 10000, params)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(pos.StopPrice, 102) {
		t.Fatalf("stop = %v, want 102", pos.StopPrice)
	}
	if !approx(pos.TakeProfitPrice, 96) {
		t.Fatalf("take profit = %v, want 96", pos.TakeProfitPrice)
	}
	if !(pos.TakeProfitPrice < pos.EntryPrice && pos.EntryPrice < pos.StopPrice) {
		t.Fatal("short levels on wrong side of entry")
	}
}

// 低价标的上止损止盈也必须在开仓价的正确一侧，不能被拍到0
func TestLowPriceLevelsKeepSide(t *testing.T) {
	for _, price := range []float64{0.004, 0.0000017, 0.31} {
		long, err := Build(sig(model.DirLong, price), 10000, params)
		if err != nil {
			t.Fatalf("price=%v long: %v", price, err)
		}
		if !(long.StopPrice < long.EntryPrice && long.EntryPrice < long.TakeProfitPrice) {
			t.Fatalf("price=%v long levels collapsed: stop=%v entry=%v tp=%v",
				price, long.StopPrice, long.EntryPrice, long.TakeProfitPrice)
		}

		short, err := Build(sig(model.DirShort, price), 10000, params)
		if err != nil {
			t.Fatalf("price=%v short: %v", price, err)
		}
		if !(short.TakeProfitPrice < short.EntryPrice && short.EntryPrice < short.StopPrice) {
			t.Fatalf("price=%v short levels collapsed: stop=%v entry=%v tp=%v",
				price, short.StopPrice, short.EntryPrice, short.TakeProfitPrice)
		}
	}
}

func TestInvalidInputs(t *testing.T) {
	cases := []struct {
		name    string
		sig     model.Signal
		balance float64
		p       Params
	}{
		{"zero balance", sig(model.DirLong, 100), 0, params},
		{"negative balance", sig(model.DirLong, 100), -5, params},
		{"zero price", sig(model.DirLong, 0), 1000, params},
		{"none direction", sig(model.DirNone, 100), 1000, params},
		{"risk = 1", sig(model.DirLong, 100), 1000, Params{RiskPct: 1, StopLossPct: 0.02, TakeProfitPct: 0.04}},
		{"zero stop", sig(model.DirLong, 100), 1000, Params{RiskPct: 0.01, StopLossPct: 0, TakeProfitPct: 0.04}},
		{"tp = 1", sig(model.DirLong, 100), 1000, Params{RiskPct: 0.01, StopLossPct: 0.02, TakeProfitPct: 1}},
	}
	for _, c := range cases {
		if _, err := Build(c.sig, c.balance, c.p); !errors.Is(err, model.ErrInvalidRiskInput) {
			t.Errorf("%s: err = %v, want ErrInvalidRiskInput", c.name, err)
		}
	}
}

// 止损大于止盈是允许的配置，领域层不做这个约束
func TestStopLargerThanTargetAllowed(t *testing.T) {
	p := Params{RiskPct: 0.01, StopLossPct: 0.05, TakeProfitPct: 0.02}
	if _, err := Build(sig(model.DirLong, 100), 1000, p); err != nil {
		t.Fatalf("stop > target should be accepted: %v", err)
	}
}
