package response

import (
	"net/http"

	"crossflow/internal/consts"

	"github.com/gin-gonic/gin"
)

// 代表响应给客户端的的一个消息结构，包括错误码，错误信息，响应数据
type ApiResponse struct {
	RequestId string      `json:"request_id"` // 请求的唯一ID
	Code      int         `json:"code"`       // 错误码 0表示无错误
	Message   string      `json:"message"`    // 提示信息
	Data      interface{} `json:"data"`       // 响应数据，一般从这里前端从这个里面取出数据展示
}

// 发送json格式数据
// 如果err != nil, 失败的话 返回http状态码400（一般也可以全部返回200）
// 返回400 更严谨一些，个人接触的项目中大部分都是400。
func JSON(c *gin.Context, err error, data interface{}) {
	if err != nil {
		c.JSON(http.StatusBadRequest, ApiResponse{
			RequestId: c.GetString(consts.RequestId),
			Code:      1,
			Message:   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, ApiResponse{
		RequestId: c.GetString(consts.RequestId),
		Code:      0,
		Message:   "success",
		Data:      data,
	})
}
