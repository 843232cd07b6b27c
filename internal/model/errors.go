package model

import "errors"

// 核心错误分类，全部是局部的非致命错误：
// 单个被拒绝的信号或乱序K线不会中断后续处理

var (
	// 余额、价格非正，或风险比例超出(0,1)
	ErrInvalidRiskInput = errors.New("invalid risk input")
	// 持仓数量已达上限，信号直接丢弃，不排队
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// 慢线EMA还未热身完成
	ErrIndicatorWarmup = errors.New("indicator warming up")
	// K线或价格时间戳乱序，必须拒绝而不是重排
	ErrStaleOrdering = errors.New("stale ordering violation")
)
