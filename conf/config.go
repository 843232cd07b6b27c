package conf

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// 配置加载（交易参数、API密钥等）

// Duration 支持yaml里写 "4h"、"30m" 这种格式
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	v, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Okx struct {
	ApiKey    string `yaml:"apiKey"`
	SecretKey string `yaml:"secretKey"`
	Password  string `yaml:"password"`
	Simulated bool   `yaml:"simulated"`
}

type Db struct {
	Enabled  bool   `yaml:"enabled"`
	DbName   string `yaml:"dbname"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// 策略参数，启动时加载，运行期间不变
type StrategyConfig struct {
	Symbol       string `yaml:"symbol" validate:"required"`             // 例如 BTC/USDT
	TradeType    string `yaml:"tradeType"`                              // spot/swap，默认swap
	BarPeriod    string `yaml:"barPeriod" validate:"required"`          // K线周期：15m/1h/4h/1d
	FastPeriod   int    `yaml:"fastPeriod" validate:"gt=0"`             // 快线EMA周期
	SlowPeriod   int    `yaml:"slowPeriod" validate:"gtfield=FastPeriod"` // 慢线EMA周期，必须大于快线
	MaxPositions int    `yaml:"maxPositions" validate:"gt=0"`           // 最大同时持仓数

	// ---- 风控 ----
	RiskPct       float64 `yaml:"riskPct" validate:"gt=0,lt=1"`       // 单笔风险占余额比例
	StopLossPct   float64 `yaml:"stopLossPct" validate:"gt=0,lt=1"`   // 止损比例
	TakeProfitPct float64 `yaml:"takeProfitPct" validate:"gt=0,lt=1"` // 止盈比例

	// ---- 交易时间窗口 ----
	Timezone    string `yaml:"timezone" validate:"required"`         // 参考时区，例如 America/New_York
	WindowStart string `yaml:"windowStart" validate:"datetime=15:04"` // 窗口开始（含）
	WindowEnd   string `yaml:"windowEnd" validate:"datetime=15:04"`   // 窗口结束（不含）

	// ---- 仓位再评估 ----
	ReevalInterval   Duration      `yaml:"reevalInterval" validate:"gt=0"` // 再评估间隔，默认4小时
	BreakEvenPct     float64       `yaml:"breakEvenPct" validate:"gt=0"`   // 浮盈达到该比例时止损移到开仓价
	HistorySize      int           `yaml:"historySize"`                    // 启动时拉取的历史K线数量
	RecorderPath     string        `yaml:"recorderPath"`                   // 平仓记录文件
	EnableDebugLog   bool          `yaml:"EnableDebugLog"`                 // 是否打印 Debug 日志
}

type LogConfig struct {
	Level      string `yaml:"level"`
	FileName   string `yaml:"file-name"`
	TimeFormat string `yaml:"time-format"`
	MaxSize    int    `yaml:"max-size"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAge     int    `yaml:"max-age"`
	Compress   bool   `yaml:"compress"`
	LocalTime  bool   `yaml:"local-time"`
	Console    bool   `yaml:"console"`
}

type Config struct {
	AppName      string `yaml:"app_name"`
	Listen       string `yaml:"listen"`
	Mode         string `yaml:"mode"`
	MaxPingCount int    `yaml:"max-ping-count"`

	Okx      `yaml:"okx"`
	Db       `yaml:"database"`
	Strategy StrategyConfig `yaml:"strategy"`
	Log      LogConfig      `yaml:"log"`
}

var AppConfig Config

func LoadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("Read config file error %w", err)
	}
	if err := yaml.Unmarshal(data, &AppConfig); err != nil {
		return fmt.Errorf("Unmarshal config yaml error: %w", err)
	}
	AppConfig.Strategy.applyDefaults()
	if err := AppConfig.Strategy.Validate(); err != nil {
		return err
	}
	return nil
}

// 未填写的策略参数使用默认值
func (c *StrategyConfig) applyDefaults() {
	if c.TradeType == "" {
		c.TradeType = "swap"
	}
	if c.BarPeriod == "" {
		c.BarPeriod = "1d"
	}
	if c.FastPeriod == 0 {
		c.FastPeriod = 50
	}
	if c.SlowPeriod == 0 {
		c.SlowPeriod = 200
	}
	if c.MaxPositions == 0 {
		c.MaxPositions = 3
	}
	if c.RiskPct == 0 {
		c.RiskPct = 0.01
	}
	if c.StopLossPct == 0 {
		c.StopLossPct = 0.02
	}
	if c.TakeProfitPct == 0 {
		c.TakeProfitPct = 0.04
	}
	if c.Timezone == "" {
		c.Timezone = "America/New_York"
	}
	if c.WindowStart == "" {
		c.WindowStart = "08:00"
	}
	if c.WindowEnd == "" {
		c.WindowEnd = "12:00"
	}
	if c.ReevalInterval == 0 {
		c.ReevalInterval = Duration(4 * time.Hour)
	}
	if c.BreakEvenPct == 0 {
		c.BreakEvenPct = 0.02
	}
	if c.HistorySize == 0 {
		c.HistorySize = 250
	}
}

// Validate 校验策略参数，时区单独检查（validator没有对应tag）
func (c *StrategyConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("strategy config invalid: %w", err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("strategy config invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}
