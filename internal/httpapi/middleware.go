package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	emw "github.com/labstack/echo/v4/middleware"

	"github.com/yungtweek/chat-mock/internal/logger"
	"github.com/yungtweek/chat-mock/internal/mock"
)

const HeaderRequestID = "X-Request-ID"

// NewTrackMiddleware assigns a request ID (the client's X-Request-ID when
// present, a fresh UUID otherwise), echoes it back and logs the end of every
// request.
func NewTrackMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID := c.Request().Header.Get(HeaderRequestID)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, reqID)

			cc := &Context{
				Context:   c,
				Log:       logger.With("request_id", reqID),
				RequestID: reqID,
			}
			start := time.Now()
			err := next(cc)
			cc.Log.Infow("[http] end_of_request",
				"method", c.Request().Method,
				"path", c.Path(),
				"status_code", cc.Response().Status,
				"duration", time.Since(start).String(),
			)
			return err
		}
	}
}

// NewRecoverMiddleware turns a handler panic into an InternalError body.
// If the response was already committed (mid-stream) nothing more is written.
func NewRecoverMiddleware() echo.MiddlewareFunc {
	return emw.RecoverWithConfig(emw.RecoverConfig{
		StackSize: 1 << 10, // 1 KB
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			cc := requestContext(c)
			cc.Log.Errorw("[http] panic", "err", err, "stack", string(stack))
			if cc.Response().Committed {
				return nil
			}
			derr := mock.InternalError("internal server error").WithRequestID(cc.RequestID)
			return cc.JSON(http.StatusInternalServerError, derr)
		},
	})
}

func NewCORSMiddleware(origins []string) echo.MiddlewareFunc {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return emw.CORSWithConfig(emw.CORSConfig{
		AllowOrigins:  origins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderAuthorization, HeaderRequestID},
		ExposeHeaders: []string{HeaderRequestID},
	})
}
