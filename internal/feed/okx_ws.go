package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crossflow/internal/model"
	"crossflow/pkg/logger"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/spf13/cast"
)

// OKX 公共websocket K线源。
// 每条消息都回调最新价格用于连续的止损止盈监控，
// 只有确认收盘的K线（confirm=1）才作为完整K线回调给引擎。

const defaultWsURL = "wss://ws.okx.com:8443/ws/v5/business"

type OnBar func(k model.Kline)
type OnPrice func(price float64, ts time.Time)

type CandleFeed struct {
	url     string
	symbol  string // BTC/USDT
	instId  string // BTC-USDT-SWAP
	channel string // candle1D 等
	onBar   OnBar
	onPrice OnPrice
}

func NewCandleFeed(symbol string, tradeType string, period model.BarPeriod, onBar OnBar, onPrice OnPrice) (*CandleFeed, error) {
	ch, err := candleChannel(period)
	if err != nil {
		return nil, err
	}
	return &CandleFeed{
		url:     defaultWsURL,
		symbol:  symbol,
		instId:  toInstId(symbol, tradeType),
		channel: ch,
		onBar:   onBar,
		onPrice: onPrice,
	}, nil
}

// Run 维持连接直到ctx取消，断线指数退避重连
func (f *CandleFeed) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		err := f.runOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		logger.Warn("candle feed disconnected",
			logger.Pair("symbol", f.symbol),
			logger.Pair("err", err),
			logger.Pair("retry_in", backoff))

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < time.Minute {
			backoff *= 2
		}
	}
}

func (f *CandleFeed) runOnce(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", f.url, err)
	}
	defer conn.Close()

	sub := map[string]any{
		"op": "subscribe",
		"args": []map[string]string{
			{"channel": f.channel, "instId": f.instId},
		},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	logger.Info("candle feed subscribed",
		logger.Pair("instId", f.instId),
		logger.Pair("channel", f.channel))

	// okx要求30秒内有心跳
	go f.pingLoop(ctx, conn)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_ = conn.SetReadDeadline(time.Now().Add(40 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		f.handleMessage(data)
	}
}

func (f *CandleFeed) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
				return
			}
		}
	}
}

type wsMessage struct {
	Event string     `json:"event"`
	Arg   any        `json:"arg"`
	Data  [][]string `json:"data"`
}

func (f *CandleFeed) handleMessage(data []byte) {
	if string(data) == "pong" {
		return
	}
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Warnf("candle feed: bad message %q: %v", string(data), err)
		return
	}
	if msg.Event != "" {
		// subscribe确认或error事件
		if msg.Event == "error" {
			logger.Errorf("candle feed error event: %s", string(data))
		}
		return
	}

	// 数据帧: [ts, o, h, l, c, vol, volCcy, volCcyQuote, confirm]
	for _, row := range msg.Data {
		if len(row) < 9 {
			continue
		}
		ts := time.UnixMilli(cast.ToInt64(row[0]))
		closePx := cast.ToFloat64(row[4])

		if f.onPrice != nil {
			f.onPrice(closePx, ts)
		}
		if row[8] == "1" && f.onBar != nil {
			f.onBar(model.Kline{
				Timestamp: ts,
				Open:      cast.ToFloat64(row[1]),
				High:      cast.ToFloat64(row[2]),
				Low:       cast.ToFloat64(row[3]),
				Close:     closePx,
				Vol:       cast.ToFloat64(row[5]),
				VolCcy:    cast.ToFloat64(row[6]),
			})
		}
	}
}

// "BTC/USDT" + swap -> "BTC-USDT-SWAP"
func toInstId(symbol, tradeType string) string {
	inst := strings.ReplaceAll(symbol, "/", "-")
	if tradeType == "swap" {
		inst += "-SWAP"
	}
	return inst
}

func candleChannel(period model.BarPeriod) (string, error) {
	switch period {
	case model.Bar15m:
		return "candle15m", nil
	case model.Bar1h:
		return "candle1H", nil
	case model.Bar4h:
		return "candle4H", nil
	case model.Bar1d:
		return "candle1D", nil
	}
	return "", fmt.Errorf("unsupported bar period: %s", period)
}
