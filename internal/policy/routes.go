// Package policy はサーバーAPIとクライアント画面のアクセス方針を一か所にまとめる。
package policy

import "strings"

// ルートに必要な認可
type Policy int

const (
	Public Policy = iota
	Authenticated
	AdminOrSelf
	AdminOnly
)

func (p Policy) String() string {
	switch p {
	case Public:
		return "public"
	case Authenticated:
		return "authenticate"
	case AdminOrSelf:
		return "authenticate+requireAdminOrSelf"
	case AdminOnly:
		return "authenticate+requireAdmin"
	default:
		return "unknown"
	}
}

// APIのルート名（handler側でこの名前に関数を割り当てる）
type RouteName string

const (
	RouteLogin         RouteName = "login"
	RouteValidateToken RouteName = "validateToken"
	RouteListUsers     RouteName = "listUsers"
	RouteGetUser       RouteName = "getUser"
	RouteCreateUser    RouteName = "createUser"
	RouteUpdateUser    RouteName = "updateUser"
	RouteDeleteUser    RouteName = "deleteUser"
	RouteSetAdmin      RouteName = "setAdmin"
)

type Route struct {
	Name   RouteName
	Method string
	Path   string
	Policy Policy
}

// SelfParam はAdminOrSelfで本人判定に使うパスパラメータ
const SelfParam = "userId"

// /validate-token は /:userId より先に登録する
var Routes = []Route{
	{Name: RouteLogin, Method: "POST", Path: "/users/login", Policy: Public},
	{Name: RouteValidateToken, Method: "GET", Path: "/users/validate-token", Policy: Authenticated},
	{Name: RouteListUsers, Method: "GET", Path: "/users", Policy: Authenticated},
	{Name: RouteGetUser, Method: "GET", Path: "/users/:userId", Policy: AdminOrSelf},
	{Name: RouteCreateUser, Method: "POST", Path: "/users", Policy: AdminOnly},
	{Name: RouteUpdateUser, Method: "PUT", Path: "/users/:userId", Policy: AdminOrSelf},
	{Name: RouteDeleteUser, Method: "DELETE", Path: "/users/:userId", Policy: AdminOnly},
	{Name: RouteSetAdmin, Method: "PUT", Path: "/users/:userId/set-admin", Policy: AdminOnly},
}

// =====================
// クライアント画面
// =====================

// ログインなしで見られる画面
var PublicPages = []string{"/login", "/", "/help"}

// Adminだけが見られる画面
var AdminPages = []string{"/users", "/settings"}

func IsPublicPage(pathname string) bool {
	return matchPage(PublicPages, pathname)
}

func IsAdminPage(pathname string) bool {
	return matchPage(AdminPages, pathname)
}

// 完全一致。末尾の/は無視（"/"自身は除く）
func matchPage(pages []string, pathname string) bool {
	p := normalize(pathname)
	for _, page := range pages {
		if p == page {
			return true
		}
	}
	return false
}

func normalize(pathname string) string {
	if i := strings.IndexAny(pathname, "?#"); i >= 0 {
		pathname = pathname[:i]
	}
	if pathname == "" {
		return "/"
	}
	if len(pathname) > 1 {
		pathname = strings.TrimRight(pathname, "/")
		if pathname == "" {
			return "/"
		}
	}
	return pathname
}
