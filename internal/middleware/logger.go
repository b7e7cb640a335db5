package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/poker-club/internal/logging"
)

// RequestLogger writes one structured line per request.
func RequestLogger(log *logging.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			switch {
			case v.Error != nil:
				log.Error("request failed", append(args, "error", v.Error)...)
			case v.Status >= 500:
				log.Error("request", args...)
			default:
				log.Info("request", args...)
			}
			return nil
		},
	})
}
