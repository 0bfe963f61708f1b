package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"

	domain "github.com/donaldgifford/apidex/pkg/types"
)

// Recovery returns Echo middleware that recovers from panics, logs the stack
// trace, and answers with a failed envelope and status 500.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					buf := make([]byte, 4096)
					n := runtime.Stack(buf, false)

					log.Error("panic recovered",
						"error", fmt.Sprint(r),
						"method", c.Request().Method,
						"path", c.Request().URL.Path,
						"request_id", c.Get("request_id"),
						"stack", string(buf[:n]),
					)

					err = c.JSON(http.StatusInternalServerError, domain.Envelope[any]{
						IsSuccess: false,
						Code:      "COMMON500",
						Message:   "internal server error",
					})
				}
			}()
			return next(c)
		}
	}
}
