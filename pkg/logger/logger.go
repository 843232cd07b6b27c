package logger

import (
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 基于zap的全局日志，文件输出走lumberjack滚动切割

var log *zap.Logger = zap.NewNop()

type Options struct {
	Level      string // debug/info/warn/error
	FileName   string // 为空时只输出到控制台
	TimeFormat string
	MaxSize    int // 单个日志文件最大MB
	MaxBackups int
	MaxAge     int // 保留天数
	Compress   bool
	LocalTime  bool
	Console    bool
}

func Init(opts Options) {
	level := zapcore.InfoLevel
	if err := level.Set(opts.Level); err != nil {
		level = zapcore.InfoLevel
	}

	timeFormat := opts.TimeFormat
	if timeFormat == "" {
		timeFormat = time.DateTime
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeFormat)
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var cores []zapcore.Core
	if opts.FileName != "" {
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.FileName,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
			LocalTime:  opts.LocalTime,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), w, level))
	}
	if opts.Console || opts.FileName == "" {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stdout), level))
	}

	log = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
}

// Pair 构造一个结构化字段
func Pair(key string, value interface{}) zap.Field {
	return zap.Any(key, value)
}

func Debug(msg string, fields ...zap.Field) { log.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { log.Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { log.Fatal(msg, fields...) }

func Debugf(format string, args ...interface{}) { log.Sugar().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { log.Sugar().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { log.Sugar().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { log.Sugar().Errorf(format, args...) }

// Sync 进程退出前刷新缓冲
func Sync() { _ = log.Sync() }
