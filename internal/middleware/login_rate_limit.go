package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const msgTooManyLogins = "Too many login attempts"

// 固定ウィンドウのカウンタ（ratelimit.RedisLimiterが実装）
type Limiter interface {
	// Allowは試行を1回数えて、許可とリセットまでの時間を返す
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// IPごとのログイン試行制限
// limiterがnilかエラーなら通す（認証自体は緩めない）
func LoginRateLimit(limiter Limiter, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limiter == nil {
				return next(c)
			}

			allowed, retryAfter, err := limiter.Allow(c.Request().Context(), "login:"+c.RealIP())
			if err != nil {
				logger.Warn("login rate limiter unavailable", zap.Error(err))
				return next(c)
			}
			if !allowed {
				secs := int(retryAfter.Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				logger.Info("login rate limited", zap.String("remote_ip", c.RealIP()))
				return c.JSON(http.StatusTooManyRequests, messageJSON(msgTooManyLogins))
			}

			return next(c)
		}
	}
}
