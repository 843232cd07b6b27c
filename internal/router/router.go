package router

import (
	"crossflow/internal/handler/status"
	"crossflow/internal/middleware"

	"github.com/gin-gonic/gin"
)

type ApiRouter struct {
	statusHandler *status.Handler
}

func NewApiRouter(sh *status.Handler) *ApiRouter {
	return &ApiRouter{statusHandler: sh}
}

func (api *ApiRouter) Load(g *gin.Engine) {
	g.Use(middleware.RequestId(), middleware.Logger, middleware.NoCache(), middleware.Options(), middleware.Secure())

	g.GET("/ping", api.statusHandler.Ping())

	base := g.Group("/api/v1")

	s := base.Group("/strategy")
	{
		// 当前持仓快照
		s.GET("/positions", api.statusHandler.PositionsGet())
		// 信号与平仓历史
		s.GET("/signals", api.statusHandler.SignalsGetList())
		s.GET("/trades", api.statusHandler.TradesGetList())
		// 历史记录清理
		s.DELETE("/records", api.statusHandler.RecordsPrune())
	}
}
