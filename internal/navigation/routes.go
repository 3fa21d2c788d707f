// Package navigation guards route transitions using only the persisted
// session markers, so decisions are correct before any store is restored.
package navigation

import "strings"

// Access is the authorization a route requires.
type Access int

const (
	AccessPublic Access = iota
	AccessPlayer
	AccessAdmin
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessPlayer:
		return "player"
	case AccessAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Route is a named location of the client.
type Route struct {
	Path   string
	Name   string
	Access Access
}

// Well-known paths.
const (
	PathEntry      = "/"
	PathAdminLogin = "/admin/login"
)

var routes = []Route{
	{Path: PathEntry, Name: "title", Access: AccessPublic},
	{Path: "/world-map", Name: "world-map", Access: AccessPlayer},
	{Path: "/base", Name: "base", Access: AccessPlayer},
	{Path: "/market", Name: "market", Access: AccessPlayer},
	{Path: "/workers", Name: "workers", Access: AccessPlayer},
	{Path: "/mail", Name: "mail", Access: AccessPlayer},
	{Path: PathAdminLogin, Name: "admin-login", Access: AccessPublic},
	{Path: "/admin", Name: "admin-dashboard", Access: AccessAdmin},
	{Path: "/admin/users", Name: "admin-users", Access: AccessAdmin},
	{Path: "/admin/pending-users", Name: "admin-pending-users", Access: AccessAdmin},
	{Path: "/admin/towns", Name: "admin-towns", Access: AccessAdmin},
}

// Routes returns the route table in declaration order.
func Routes() []Route {
	return append([]Route(nil), routes...)
}

// Lookup finds the route for path. Trailing slashes are ignored.
func Lookup(path string) (Route, bool) {
	p := "/" + strings.Trim(strings.TrimSpace(path), "/")
	for _, r := range routes {
		if r.Path == p {
			return r, true
		}
	}
	return Route{}, false
}

// Entry is the unauthenticated landing route.
func Entry() Route {
	r, _ := Lookup(PathEntry)
	return r
}

// AdminLogin is the redirect target for admin routes.
func AdminLogin() Route {
	r, _ := Lookup(PathAdminLogin)
	return r
}
