package main

import (
	"context"
	"flag"
	"log"
	"time"

	"crossflow/conf"
	"crossflow/internal/account"
	"crossflow/internal/dao"
	"crossflow/internal/engine"
	"crossflow/internal/exchange"
	"crossflow/internal/feed"
	"crossflow/internal/handler/status"
	"crossflow/internal/model"
	"crossflow/internal/risk"
	"crossflow/internal/router"
	"crossflow/pkg/db"
	"crossflow/pkg/logger"
	"crossflow/pkg/recorder"

	goex "github.com/nntaoli-project/goex/v2"
)

func main() {
	cfgPath := flag.String("c", "config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置文件
	if err := conf.LoadConfig(*cfgPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appCfg := &conf.AppConfig

	logLevel := appCfg.Log.Level
	if appCfg.Strategy.EnableDebugLog {
		logLevel = "debug"
	}
	logger.Init(logger.Options{
		Level:      logLevel,
		FileName:   appCfg.Log.FileName,
		TimeFormat: appCfg.Log.TimeFormat,
		MaxSize:    appCfg.Log.MaxSize,
		MaxBackups: appCfg.Log.MaxBackups,
		MaxAge:     appCfg.Log.MaxAge,
		Compress:   appCfg.Log.Compress,
		LocalTime:  appCfg.Log.LocalTime,
		Console:    appCfg.Log.Console,
	})
	defer logger.Sync()

	if appCfg.Okx.Simulated {
		goex.DefaultHttpCli.SetHeaders("x-simulated-trading", "1") // 设置为模拟环境
	}

	// 可选的MySQL记录库
	var d *dao.RecordDao
	if appCfg.Db.Enabled {
		gdb := db.Init(db.Config{
			User:      appCfg.Db.Username,
			Password:  appCfg.Db.Password,
			Host:      appCfg.Db.Host,
			Port:      appCfg.Db.Port,
			DBName:    appCfg.Db.DbName,
			ParseTime: true,
		})
		d = dao.NewRecordDao(gdb)
	}

	var rec *recorder.JSONFileRecorder
	if appCfg.Strategy.RecorderPath != "" {
		rec = recorder.NewJSONFileRecorder(appCfg.Strategy.RecorderPath)
	}

	// apiKey为空时使用模拟执行器，本地跑通整条链路
	var (
		ex   exchange.Exchange
		acct exchange.AccountProvider
	)
	if appCfg.Okx.ApiKey == "" {
		logger.Warn("[main] no api key configured, using simulated executor")
		sim := exchange.NewSimulatedExecutor(10000)
		ex, acct = sim, sim
	} else {
		okxEx, err := exchange.NewOkxExchange(appCfg.Okx.ApiKey, appCfg.Okx.SecretKey, appCfg.Okx.Password)
		if err != nil {
			logger.Fatal("init okx exchange", logger.Pair("err", err))
		}
		ex = okxEx
		acct = account.NewService(okxEx.Prv())
	}

	sc := appCfg.Strategy
	eng, err := engine.New(engine.Config{
		Symbol:       sc.Symbol,
		TradeType:    sc.TradeType,
		FastPeriod:   sc.FastPeriod,
		SlowPeriod:   sc.SlowPeriod,
		MaxPositions: sc.MaxPositions,
		Risk: risk.Params{
			RiskPct:       sc.RiskPct,
			StopLossPct:   sc.StopLossPct,
			TakeProfitPct: sc.TakeProfitPct,
		},
		Timezone:       sc.Timezone,
		WindowStart:    sc.WindowStart,
		WindowEnd:      sc.WindowEnd,
		ReevalInterval: sc.ReevalInterval.Std(),
		BreakEvenPct:   sc.BreakEvenPct,
		Veto:           nil, // 新闻否决源暂未接入，默认放行
	}, ex, acct, d, rec)
	if err != nil {
		logger.Fatal("init engine", logger.Pair("err", err))
	}

	// 启动前补历史K线，铺满指标热身期
	period := model.BarPeriod(sc.BarPeriod)
	history, err := ex.GetKlineRecords(sc.Symbol, period, sc.HistorySize)
	if err != nil {
		logger.Warnf("[main] load history failed, indicators warm up from live bars: %v", err)
	} else {
		eng.WarmUp(history)
		logger.Infof("[main] warmed up with %d history bars", len(history))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng.Run(ctx)

	// 行情源：已完成的K线走决策流，每个价格更新查止损止盈
	f, err := feed.NewCandleFeed(sc.Symbol, sc.TradeType, period,
		func(k model.Kline) {
			if err := eng.OnBar(ctx, k); err != nil {
				logger.Warnf("[main] bar dropped: %v", err)
			}
		},
		func(price float64, ts time.Time) {
			eng.OnPrice(ctx, price, ts)
		},
	)
	if err != nil {
		logger.Fatal("init candle feed", logger.Pair("err", err))
	}
	go f.Run(ctx)

	// 状态接口
	srv := NewServer(appCfg)
	srv.RegisterOnShutdown(cancel)
	srv.Run(router.NewApiRouter(status.NewHandler(eng, d)))
}
