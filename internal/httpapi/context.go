package httpapi

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/yungtweek/chat-mock/internal/logger"
)

// Context carries per-request values set by the track middleware.
type Context struct {
	echo.Context
	Log       *zap.SugaredLogger
	RequestID string
}

// requestContext recovers the *Context installed by the track middleware,
// building a bare one when the handler runs without it.
func requestContext(c echo.Context) *Context {
	if cc, ok := c.(*Context); ok {
		return cc
	}
	return &Context{Context: c, Log: logger.Log}
}
