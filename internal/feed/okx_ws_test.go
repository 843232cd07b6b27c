package feed

import (
	"testing"
	"time"

	"crossflow/internal/model"
)

func newFeedForTest(t *testing.T, onBar OnBar, onPrice OnPrice) *CandleFeed {
	t.Helper()
	f, err := NewCandleFeed("BTC/USDT", "swap", model.Bar1d, onBar, onPrice)
	if err != nil {
		t.Fatalf("NewCandleFeed: %v", err)
	}
	return f
}

func TestHandleMessageUnconfirmedBarOnlyUpdatesPrice(t *testing.T) {
	var bars []model.Kline
	var prices []float64
	f := newFeedForTest(t,
		func(k model.Kline) { bars = append(bars, k) },
		func(p float64, ts time.Time) { prices = append(prices, p) },
	)

	// confirm=0：K线未收盘，只回调价格
	f.handleMessage([]byte(`{"arg":{"channel":"candle1D","instId":"BTC-USDT-SWAP"},"data":[["1717200000000","100","105","99","103.5","1200","36000","0","0"]]}`))

	if len(bars) != 0 {
		t.Fatalf("got %d bars for unconfirmed candle, want 0", len(bars))
	}
	if len(prices) != 1 || prices[0] != 103.5 {
		t.Fatalf("prices = %v, want [103.5]", prices)
	}
}

func TestHandleMessageConfirmedBarEmitsKline(t *testing.T) {
	var bars []model.Kline
	f := newFeedForTest(t,
		func(k model.Kline) { bars = append(bars, k) },
		func(p float64, ts time.Time) {},
	)

	f.handleMessage([]byte(`{"arg":{"channel":"candle1D","instId":"BTC-USDT-SWAP"},"data":[["1717200000000","100","105","99","103.5","1200","36000","0","1"]]}`))

	if len(bars) != 1 {
		t.Fatalf("got %d bars, want 1", len(bars))
	}
	k := bars[0]
	if k.Open != 100 || k.High != 105 || k.Low != 99 || k.Close != 103.5 {
		t.Fatalf("kline = %+v", k)
	}
	if k.Timestamp != time.UnixMilli(1717200000000) {
		t.Fatalf("timestamp = %v", k.Timestamp)
	}
}

func TestHandleMessageIgnoresControlFrames(t *testing.T) {
	called := false
	f := newFeedForTest(t,
		func(k model.Kline) { called = true },
		func(p float64, ts time.Time) { called = true },
	)

	f.handleMessage([]byte(`pong`))
	f.handleMessage([]byte(`{"event":"subscribe","arg":{"channel":"candle1D","instId":"BTC-USDT-SWAP"}}`))
	f.handleMessage([]byte(`{"event":"error","code":"60012","msg":"Invalid request"}`))
	f.handleMessage([]byte(`not json`))

	if called {
		t.Fatal("control frames must not reach the callbacks")
	}
}

func TestToInstId(t *testing.T) {
	if got := toInstId("BTC/USDT", "swap"); got != "BTC-USDT-SWAP" {
		t.Fatalf("toInstId swap = %q", got)
	}
	if got := toInstId("ETH/USDT", "spot"); got != "ETH-USDT" {
		t.Fatalf("toInstId spot = %q", got)
	}
}

func TestCandleChannel(t *testing.T) {
	cases := map[model.BarPeriod]string{
		model.Bar15m: "candle15m",
		model.Bar1h:  "candle1H",
		model.Bar4h:  "candle4H",
		model.Bar1d:  "candle1D",
	}
	for period, want := range cases {
		got, err := candleChannel(period)
		if err != nil {
			t.Fatalf("candleChannel(%s): %v", period, err)
		}
		if got != want {
			t.Fatalf("candleChannel(%s) = %q, want %q", period, got, want)
		}
	}
	if _, err := candleChannel("3m"); err == nil {
		t.Fatal("expected error for unsupported period")
	}
}
