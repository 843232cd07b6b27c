package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	model2 "crossflow/internal/model"

	goexv2 "github.com/nntaoli-project/goex/v2"
	"github.com/nntaoli-project/goex/v2/model"
	"github.com/nntaoli-project/goex/v2/okx/common"
	"github.com/nntaoli-project/goex/v2/okx/futures"
	"github.com/nntaoli-project/goex/v2/options"
)

// OKX 永续合约执行器，基于goex
type OkxExchange struct {
	pub      *futures.Swap
	prv      *futures.PrvApi
	leverage int
	mgnMode  model2.OrderMgnMode
}

func NewOkxExchange(apiKey, secretKey, passphrase string) (*OkxExchange, error) {
	pub := goexv2.OKx.Swap
	prv := pub.NewPrvApi(
		options.WithApiKey(apiKey),
		options.WithApiSecretKey(secretKey),
		options.WithPassphrase(passphrase),
	)

	// 初始化时加载所有可交易币对，顺便测试连接
	if _, _, err := pub.GetExchangeInfo(); err != nil {
		return nil, fmt.Errorf("okx GetExchangeInfo: %w", err)
	}

	return &OkxExchange{
		pub:      pub,
		prv:      prv,
		leverage: 1, // 方向性策略不加杠杆
		mgnMode:  model2.OrderMgnModeIsolated,
	}, nil
}

// symbol 格式转换: "BTC/USDT" -> goex 需要的 CurrencyPair
func (e *OkxExchange) toCurrencyPair(symbol string) (model.CurrencyPair, error) {
	parts := strings.Split(symbol, "/")
	if len(parts) == 1 { // 防止BTC-USDT-SWAP
		parts = strings.Split(symbol, "-")
	}
	if len(parts) > 2 {
		parts = parts[:2]
	}
	if len(parts) != 2 {
		return model.CurrencyPair{}, fmt.Errorf("invalid symbol format %q, expected like BTC/USDT", symbol)
	}
	return e.pub.NewCurrencyPair(parts[0], parts[1])
}

// 下单，止盈止损通过attachAlgoOrds随单挂到交易所
func (e *OkxExchange) PlaceOrder(ctx context.Context, order *model2.Order) (*model2.OrderResponse, error) {
	pair, err := e.toCurrencyPair(order.Symbol)
	if err != nil {
		return nil, err
	}

	var side model.OrderSide
	switch order.Side {
	case model2.Buy:
		side = model.Futures_OpenBuy
	case model2.Sell:
		side = model.Futures_OpenSell
	default:
		return nil, errors.New("invalid order side")
	}

	orderType := model.OrderType_Market
	if order.OrderType == model2.Limit {
		orderType = model.OrderType_Limit
	}

	var opts []model.OptionParameter

	// okx v5 api要求带有止盈止损的开单必须放在attachAlgoOrds数组map中
	attach := make(map[string]string)
	if order.TPPrice > 0 {
		attach["tpTriggerPx"] = strconv.FormatFloat(order.TPPrice, 'f', -1, 64)
		attach["tpOrdPx"] = "-1" // -1 表示市价止盈
	}
	if order.SLPrice > 0 {
		attach["slTriggerPx"] = strconv.FormatFloat(order.SLPrice, 'f', -1, 64)
		attach["slOrdPx"] = "-1"
	}
	if len(attach) > 0 {
		if data, err := json.Marshal([]map[string]string{attach}); err == nil {
			opts = append(opts, model.OptionParameter{Key: "attachAlgoOrds", Value: string(data)})
		}
	}

	opts = append(opts,
		model.OptionParameter{Key: "tdMode", Value: string(e.mgnMode)},
		model.OptionParameter{Key: "posSide", Value: posSide(order.Side)},
	)

	created, _, err := e.prv.CreateOrder(pair, order.Quantity, order.Price, side, orderType, opts...)
	if err != nil {
		return nil, fmt.Errorf("okx CreateOrder: %w", err)
	}
	return &model2.OrderResponse{
		OrderId: created.Id,
		Status:  int(created.Status),
	}, nil
}

// AmendStopLoss 修改附带止损的触发价（保本推进）。
// orderID 是下单返回的id，对应附带算法单。
func (e *OkxExchange) AmendStopLoss(ctx context.Context, symbol, orderID string, newStop float64) error {
	pair, err := e.toCurrencyPair(symbol)
	if err != nil {
		return err
	}

	reqUrl := fmt.Sprintf("%s%s", e.prv.UriOpts.Endpoint, "/api/v5/trade/amend-algo-order")
	params := url.Values{}
	params.Set("instId", pair.Symbol)
	params.Set("algoId", orderID)
	px := strconv.FormatFloat(newStop, 'f', -1, 64)
	params.Set("newSlTriggerPx", px)
	params.Set("newSlOrdPx", "-1") // 市价止损

	common.AdaptOrderClientIDOptionParameter(&params)

	_, resp, err := e.prv.DoAuthRequest(http.MethodPost, reqUrl, &params, nil)
	if err != nil {
		return fmt.Errorf("okx amend-algo-order: %w (resp=%s)", err, string(resp))
	}
	return nil
}

// 平仓：多仓平多，空仓平空
func (e *OkxExchange) ClosePosition(ctx context.Context, symbol string, dir model2.Direction, quantity float64) error {
	pair, err := e.toCurrencyPair(symbol)
	if err != nil {
		return err
	}

	var side model.OrderSide
	switch dir {
	case model2.DirLong:
		side = model.Futures_CloseBuy
	case model2.DirShort:
		side = model.Futures_CloseSell
	default:
		return fmt.Errorf("unknown direction: %s", dir)
	}

	opts := []model.OptionParameter{
		{Key: "tdMode", Value: string(e.mgnMode)},
		{Key: "posSide", Value: posSideOfDir(dir)},
	}
	_, _, err = e.prv.CreateOrder(pair, quantity, 0, side, model.OrderType_Market, opts...)
	if err != nil {
		return fmt.Errorf("okx close position: %w", err)
	}
	return nil
}

// 获取最新价格
func (e *OkxExchange) GetLastPrice(symbol string) (float64, error) {
	pair, err := e.toCurrencyPair(symbol)
	if err != nil {
		return 0, err
	}
	ticker, _, err := e.pub.GetTicker(pair)
	if err != nil {
		return 0, err
	}
	if ticker == nil {
		return 0, errors.New("failed to get ticker")
	}
	return ticker.Last, nil
}

func (e *OkxExchange) GetKlineRecords(symbol string, period model2.BarPeriod, size int) ([]model2.Kline, error) {
	pair, err := e.toCurrencyPair(symbol)
	if err != nil {
		return nil, err
	}
	kp, err := toKlinePeriod(period)
	if err != nil {
		return nil, err
	}

	var opts []model.OptionParameter
	if size > 0 {
		opts = append(opts, model.OptionParameter{Key: "limit", Value: strconv.Itoa(size)})
	}
	lines, _, err := e.pub.GetKline(pair, kp, opts...)
	if err != nil {
		return nil, err
	}

	items := make([]model2.Kline, 0, len(lines))
	for _, item := range lines {
		items = append(items, model2.Kline{
			Timestamp: time.UnixMilli(item.Timestamp),
			Open:      item.Open,
			Close:     item.Close,
			High:      item.High,
			Low:       item.Low,
			Vol:       item.Vol,
		})
	}
	// okx按时间倒序返回，这里统一转成升序
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

func posSide(side model2.OrderSide) string {
	if side == model2.Sell {
		return "short"
	}
	return "long"
}

func posSideOfDir(dir model2.Direction) string {
	if dir == model2.DirShort {
		return "short"
	}
	return "long"
}

func toKlinePeriod(p model2.BarPeriod) (model.KlinePeriod, error) {
	switch p {
	case model2.Bar15m:
		return model.Kline_15min, nil
	case model2.Bar1h:
		return model.Kline_1h, nil
	case model2.Bar4h:
		return model.Kline_4h, nil
	case model2.Bar1d:
		return model.Kline_1day, nil
	}
	return "", fmt.Errorf("unsupported bar period: %s", p)
}

var _ Exchange = (*OkxExchange)(nil)

// Prv 暴露goex私有API客户端，账户服务复用同一份凭证
func (e *OkxExchange) Prv() goexv2.IPrvRest {
	return e.prv
}
