// Package guard は認証状態とパスから画面に何を出すかを決める。
package guard

import (
	"github.com/ebrahimbeiati/inventory-management/internal/client/auth"
	"github.com/ebrahimbeiati/inventory-management/internal/domain/model"
	"github.com/ebrahimbeiati/inventory-management/internal/policy"
)

type State int

const (
	Loading State = iota
	PublicRoute
	Authorized
	Unauthorized
)

func (s State) String() string {
	switch s {
	case Loading:
		return "Loading"
	case PublicRoute:
		return "PublicRoute"
	case Authorized:
		return "Authorized"
	case Unauthorized:
		return "Unauthorized"
	default:
		return "Unknown"
	}
}

// Evaluate は (loading, user, pathname) だけで決まる。タイマーもリトライもない
func Evaluate(loading bool, user *model.User, pathname string) State {
	if loading {
		return Loading
	}
	if policy.IsPublicPage(pathname) {
		return PublicRoute
	}
	if user != nil {
		return Authorized
	}
	return Unauthorized
}

type ViewKind int

const (
	ViewSpinner ViewKind = iota
	ViewContent
	ViewAccessDenied
	ViewRedirect
)

type Link struct {
	Label string
	Href  string
}

// 描画結果
type View struct {
	Kind     ViewKind
	Content  string
	Message  string
	Links    []Link
	Location string // ViewRedirectの行き先
}

func Content(body string) View {
	return View{Kind: ViewContent, Content: body}
}

func spinner() View {
	return View{Kind: ViewSpinner}
}

func accessDenied() View {
	return View{
		Kind:    ViewAccessDenied,
		Message: "You need to be logged in to access this page.",
		Links: []Link{
			{Label: "Go to Login", Href: "/login"},
			{Label: "Go to Home", Href: "/"},
		},
	}
}

// auth.Contextが実装
type StateSource interface {
	State() auth.State
}

type Guard struct {
	source StateSource
}

func New(source StateSource) *Guard {
	return &Guard{source: source}
}

// Render は認証ガード。保護画面はログインしていなければ中身を出さない
func (g *Guard) Render(pathname string, children View) View {
	st := g.source.State()
	switch Evaluate(st.Loading, st.User, pathname) {
	case Loading:
		return spinner()
	case PublicRoute, Authorized:
		return children
	default:
		return accessDenied()
	}
}

// RenderAdmin は管理者ガード。Admin以外は/dashboardへ
func (g *Guard) RenderAdmin(children View) View {
	st := g.source.State()
	if st.Loading {
		return spinner()
	}
	if !IsAdmin(st.User) {
		return View{Kind: ViewRedirect, Location: "/dashboard"}
	}
	return children
}

// Page は画面の表に従って両方のガードをかける
func (g *Guard) Page(pathname string, children View) View {
	v := g.Render(pathname, children)
	if v.Kind != ViewContent || !policy.IsAdminPage(pathname) {
		return v
	}
	return g.RenderAdmin(children)
}

func IsAdmin(user *model.User) bool {
	return user != nil && user.IsAdmin()
}

// Employee権限はAdminも持つ
func HasPermission(user *model.User, required model.Role) bool {
	if user == nil {
		return false
	}
	switch required {
	case model.RoleAdmin:
		return user.Role == model.RoleAdmin
	case model.RoleEmployee:
		return true
	default:
		return false
	}
}
