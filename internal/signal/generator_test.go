package signal

import (
	"errors"
	"testing"
	"time"

	"crossflow/internal/model"
)

func bar(ts time.Time, close float64) model.Kline {
	return model.Kline{Timestamp: ts, Open: close, High: close, Low: close, Close: close}
}

// 喂入一串收盘价，返回产生的全部信号
func feed(t *testing.T, g *Generator, start time.Time, closes []float64) []*model.Signal {
	t.Helper()
	var sigs []*model.Signal
	for i, c := range closes {
		sig, err := g.OnBar(bar(start.Add(time.Duration(i)*time.Hour), c))
		if err != nil && !errors.Is(err, model.ErrIndicatorWarmup) {
			t.Fatalf("bar %d: %v", i, err)
		}
		if sig != nil {
			sigs = append(sigs, sig)
		}
	}
	return sigs
}

func TestWarmupEmitsNothing(t *testing.T) {
	g, err := NewGenerator("BTC/USDT", 2, 5)
	if err != nil {
		t.Fatal(err)
	}
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// 热身期间每根K线都报告 ErrIndicatorWarmup，绝不发信号
	sig, err := g.OnBar(bar(start, 10))
	if sig != nil || !errors.Is(err, model.ErrIndicatorWarmup) {
		t.Fatalf("first bar: sig=%v err=%v, want warmup error", sig, err)
	}

	sigs := feed(t, g, start.Add(time.Hour), []float64{11, 12, 13})
	if len(sigs) != 0 {
		t.Fatalf("got %d signals during warmup, want 0", len(sigs))
	}
	if g.Ready() {
		t.Fatal("generator ready before slow period bars")
	}
}

// 穿越只在发生的那一根K线上发信号，持续期间不重复
func TestCrossoverEmitsExactlyOnce(t *testing.T) {
	g, _ := NewGenerator("BTC/USDT", 2, 4)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// 先下跌让快线在慢线下方（热身完成时进入below，发一次做空），
	// 然后拉升制造金叉并持续在上方
	closes := []float64{100, 96, 92, 88, 84, 80, 120, 130, 140, 150}
	sigs := feed(t, g, start, closes)

	if len(sigs) != 2 {
		t.Fatalf("got %d signals, want 2 (initial short, then the golden cross)", len(sigs))
	}
	if sigs[0].Direction != model.DirShort {
		t.Fatalf("first direction = %s, want short", sigs[0].Direction)
	}
	if sigs[1].Direction != model.DirLong {
		t.Fatalf("second direction = %s, want long", sigs[1].Direction)
	}
	if sigs[1].Price != 120 {
		t.Fatalf("signal price = %v, want the close of the transition bar (120)", sigs[1].Price)
	}
}

func TestCrossDownEmitsShort(t *testing.T) {
	g, _ := NewGenerator("BTC/USDT", 2, 4)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	closes := []float64{80, 84, 88, 92, 96, 100, 60, 50, 40}
	sigs := feed(t, g, start, closes)

	if len(sigs) != 2 {
		t.Fatalf("got %d signals, want 2 (initial long, then the death cross)", len(sigs))
	}
	if sigs[0].Direction != model.DirLong {
		t.Fatalf("first direction = %s, want long", sigs[0].Direction)
	}
	if sigs[1].Direction != model.DirShort {
		t.Fatalf("second direction = %s, want short", sigs[1].Direction)
	}
}

// 从未定义状态进入明确排列也算一次穿越
func TestFirstDefinedComparisonEmits(t *testing.T) {
	g, _ := NewGenerator("BTC/USDT", 2, 4)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// 一路上涨，热身完成时快线已经在慢线上方
	closes := []float64{100, 104, 108, 112, 116}
	sigs := feed(t, g, start, closes)
	if len(sigs) != 1 || sigs[0].Direction != model.DirLong {
		t.Fatalf("got %v, want one long signal on the first defined bar", sigs)
	}
}

// 快慢线相等时保持上一次分类，不发信号
func TestEqualValuesHoldState(t *testing.T) {
	g, _ := NewGenerator("BTC/USDT", 2, 3)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// 恒定价格：两条EMA永远相等，状态保持未定义
	sigs := feed(t, g, start, []float64{100, 100, 100, 100, 100, 100})
	if len(sigs) != 0 {
		t.Fatalf("got %d signals on flat series, want 0", len(sigs))
	}
	if g.State() != model.CrossUndefined {
		t.Fatalf("state = %v, want undefined", g.State())
	}
}

// 乱序K线被拒绝，并且状态完全不变
func TestStaleBarRejectedStateUnchanged(t *testing.T) {
	g, _ := NewGenerator("BTC/USDT", 2, 4)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	feed(t, g, start, []float64{100, 96, 92, 88, 84})
	stateBefore := g.State()

	// 时间戳早于最后一根的K线
	_, err := g.OnBar(bar(start.Add(2*time.Hour), 200))
	if !errors.Is(err, model.ErrStaleOrdering) {
		t.Fatalf("err = %v, want ErrStaleOrdering", err)
	}
	// 相同时间戳同样拒绝
	_, err = g.OnBar(bar(start.Add(4*time.Hour), 200))
	if !errors.Is(err, model.ErrStaleOrdering) {
		t.Fatalf("err = %v, want ErrStaleOrdering for duplicate timestamp", err)
	}

	if g.State() != stateBefore {
		t.Fatalf("state changed after rejected bar: %v -> %v", stateBefore, g.State())
	}

	// 后续合法K线照常处理
	sig, err := g.OnBar(bar(start.Add(5*time.Hour), 150))
	if err != nil {
		t.Fatalf("valid bar after stale one failed: %v", err)
	}
	if sig == nil || sig.Direction != model.DirLong {
		t.Fatalf("expected long signal after recovery, got %v", sig)
	}
}

func TestInvalidPeriods(t *testing.T) {
	if _, err := NewGenerator("BTC/USDT", 50, 50); err == nil {
		t.Fatal("expected error for fast >= slow")
	}
	if _, err := NewGenerator("BTC/USDT", 0, 200); err == nil {
		t.Fatal("expected error for zero fast period")
	}
}
