package server

import (
	"fmt"

	"github.com/ebrahimbeiati/inventory-management/internal/handler"
	"github.com/ebrahimbeiati/inventory-management/internal/middleware"
	"github.com/ebrahimbeiati/inventory-management/internal/policy"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Deps struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Verifier middleware.TokenVerifier
	Limiter  middleware.Limiter // nilならログイン制限なし
	Logger   *zap.Logger
}

// policy.Routesの表どおりにルートを登録する
func RegisterRoutes(e *echo.Echo, d Deps) error {
	handlers := map[policy.RouteName]echo.HandlerFunc{
		policy.RouteLogin:         d.Auth.Login,
		policy.RouteValidateToken: d.Auth.ValidateToken,
		policy.RouteListUsers:     d.Users.List,
		policy.RouteGetUser:       d.Users.Get,
		policy.RouteCreateUser:    d.Users.Create,
		policy.RouteUpdateUser:    d.Users.Update,
		policy.RouteDeleteUser:    d.Users.Delete,
		policy.RouteSetAdmin:      d.Users.SetAdmin,
	}

	authn := middleware.Authenticate(d.Verifier, d.Logger)

	for _, r := range policy.Routes {
		h, ok := handlers[r.Name]
		if !ok {
			return fmt.Errorf("no handler for route %s %s", r.Method, r.Path)
		}

		var mws []echo.MiddlewareFunc
		switch r.Policy {
		case policy.Public:
			if r.Name == policy.RouteLogin {
				mws = append(mws, middleware.LoginRateLimit(d.Limiter, d.Logger))
			}
		case policy.Authenticated:
			mws = append(mws, authn)
		case policy.AdminOrSelf:
			mws = append(mws, authn, middleware.RequireAdminOrSelf(policy.SelfParam))
		case policy.AdminOnly:
			mws = append(mws, authn, middleware.RequireAdmin())
		default:
			return fmt.Errorf("unknown policy for route %s %s", r.Method, r.Path)
		}

		e.Add(r.Method, r.Path, h, mws...)
	}
	return nil
}
