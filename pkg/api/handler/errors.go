package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/buildsys/pkg/api/dto"
	"github.com/LENAX/buildsys/pkg/catalog"
	"github.com/LENAX/buildsys/pkg/core/graph"
)

// statusFor 把领域错误映射为HTTP状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, graph.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, graph.ErrUndefinedTask), errors.Is(err, graph.ErrCyclicDependency):
		return http.StatusUnprocessableEntity
	case errors.Is(err, catalog.ErrNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError 以统一响应结构返回错误
func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(status, err.Error()))
}
