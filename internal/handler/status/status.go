package status

import (
	"net/http"
	"time"

	"crossflow/internal/dao"
	"crossflow/internal/engine"
	"crossflow/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

// 策略运行状态的只读接口。d为nil时历史查询接口返回空列表。
type Handler struct {
	eng *engine.Engine
	d   *dao.RecordDao
}

func NewHandler(eng *engine.Engine, d *dao.RecordDao) *Handler {
	return &Handler{eng: eng, d: d}
}

func (h *Handler) Ping() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "\r\nSuccess")
	}
}

// PositionsGet 当前持仓快照
func (h *Handler) PositionsGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.JSON(c, nil, h.eng.Positions())
	}
}

// SignalsGetList 最近的信号记录，含被丢弃的信号
func (h *Handler) SignalsGetList() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.d == nil {
			response.JSON(c, nil, []any{})
			return
		}
		limit := cast.ToInt(c.DefaultQuery("limit", "50"))
		list, err := h.d.ListRecentSignals(c.Request.Context(), c.Query("symbol"), limit)
		response.JSON(c, err, list)
	}
}

// RecordsPrune 软删除指定天数之前的信号与平仓记录，默认90天
func (h *Handler) RecordsPrune() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.d == nil {
			response.JSON(c, nil, gin.H{"signals": 0, "trades": 0})
			return
		}
		days := cast.ToInt(c.DefaultQuery("days", "90"))
		before := time.Now().AddDate(0, 0, -days)
		signals, err := h.d.PruneSignals(c.Request.Context(), before)
		if err != nil {
			response.JSON(c, err, nil)
			return
		}
		trades, err := h.d.PruneTrades(c.Request.Context(), before)
		response.JSON(c, err, gin.H{"signals": signals, "trades": trades})
	}
}

// TradesGetList 最近的平仓记录
func (h *Handler) TradesGetList() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.d == nil {
			response.JSON(c, nil, []any{})
			return
		}
		limit := cast.ToInt(c.DefaultQuery("limit", "50"))
		list, err := h.d.ListRecentTrades(c.Request.Context(), c.Query("symbol"), limit)
		response.JSON(c, err, list)
	}
}
