package indicator

import (
	"math"
	"testing"
)

// 构造一段有波动的收盘价序列
func makeCloses(n int) []float64 {
	closes := make([]float64, n)
	price := 100.0
	for i := 0; i < n; i++ {
		// 确定性的伪随机波动
		step := math.Sin(float64(i)*0.7)*1.9 + math.Cos(float64(i)*0.13)*0.8
		price += step
		closes[i] = price
	}
	return closes
}

// 流式计算必须和批量计算逐根一致
func TestEMAStreamingEqualsBatch(t *testing.T) {
	for _, period := range []int{3, 10, 50} {
		closes := makeCloses(period*3 + 7)
		batch := BatchEMA(closes, period)

		e := NewEMA(period)
		for i, c := range closes {
			v, ok := e.Update(c)
			if i < period-1 {
				if ok {
					t.Fatalf("period=%d: ready at index %d, want warmup", period, i)
				}
				continue
			}
			if !ok {
				t.Fatalf("period=%d: not ready at index %d", period, i)
			}
			if math.Abs(v-batch[i]) > 1e-9 {
				t.Fatalf("period=%d index=%d: streaming=%v batch=%v", period, i, v, batch[i])
			}
		}
	}
}

// 种子值是前N根收盘价的简单平均
func TestEMASeedIsSMA(t *testing.T) {
	closes := []float64{10, 20, 30, 40}
	e := NewEMA(4)
	var v float64
	var ok bool
	for _, c := range closes {
		v, ok = e.Update(c)
	}
	if !ok {
		t.Fatal("expected ready after 4 bars")
	}
	if math.Abs(v-25.0) > 1e-12 {
		t.Fatalf("seed = %v, want 25", v)
	}
}

func TestEMAValueBeforeWarmup(t *testing.T) {
	e := NewEMA(5)
	e.Update(1)
	e.Update(2)
	if _, ok := e.Value(); ok {
		t.Fatal("EMA reported ready during warmup")
	}
}

func TestBatchEMAShortInput(t *testing.T) {
	out := BatchEMA([]float64{1, 2}, 5)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
}
