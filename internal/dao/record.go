package dao

import (
	"context"
	"time"

	"crossflow/internal/model/entity"

	"gorm.io/gorm"
)

// 信号与成交记录入库。数据库是可选的，核心不依赖它运行。

type RecordDao struct {
	db *gorm.DB
}

func NewRecordDao(db *gorm.DB) *RecordDao {
	return &RecordDao{db: db}
}

func (d *RecordDao) SaveSignal(ctx context.Context, rec *entity.SignalRecord) error {
	return d.db.WithContext(ctx).Create(rec).Error
}

func (d *RecordDao) SaveTrade(ctx context.Context, rec *entity.TradeRecord) error {
	return d.db.WithContext(ctx).Create(rec).Error
}

// ListRecentSignals 最近的信号记录，倒序。symbol为空时不过滤
func (d *RecordDao) ListRecentSignals(ctx context.Context, symbol string, limit int) ([]entity.SignalRecord, error) {
	var out []entity.SignalRecord
	q := d.db.WithContext(ctx)
	if symbol != "" {
		q = q.Where("symbol = ?", symbol)
	}
	err := q.Order("timestamp DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListRecentTrades 最近的平仓记录，倒序。symbol为空时不过滤
func (d *RecordDao) ListRecentTrades(ctx context.Context, symbol string, limit int) ([]entity.TradeRecord, error) {
	var out []entity.TradeRecord
	q := d.db.WithContext(ctx)
	if symbol != "" {
		q = q.Where("symbol = ?", symbol)
	}
	err := q.Order("closed_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// PruneSignals 清理指定时间之前的信号记录。软删除，查询自动过滤
func (d *RecordDao) PruneSignals(ctx context.Context, before time.Time) (int64, error) {
	res := d.db.WithContext(ctx).
		Where("timestamp < ?", before).
		Delete(&entity.SignalRecord{})
	return res.RowsAffected, res.Error
}

// PruneTrades 清理指定时间之前的平仓记录
func (d *RecordDao) PruneTrades(ctx context.Context, before time.Time) (int64, error) {
	res := d.db.WithContext(ctx).
		Where("closed_at < ?", before).
		Delete(&entity.TradeRecord{})
	return res.RowsAffected, res.Error
}
