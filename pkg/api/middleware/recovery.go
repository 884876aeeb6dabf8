package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/LENAX/buildsys/pkg/api/dto"
)

// Recovery panic恢复中间件
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// 记录堆栈信息
				logger.WithFields(logrus.Fields{
					"request_id": RequestIDFrom(c),
					"panic":      err,
				}).Errorf("[Recovery] panic recovered\n%s", debug.Stack())

				// 返回500错误
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(
					500,
					"Internal Server Error",
				))
			}
		}()
		c.Next()
	}
}
