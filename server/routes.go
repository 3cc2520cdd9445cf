package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireAuth())...))

	// TENANTS
	s.RegisterRouteHandler("GET "+RouteTenants, ChainMiddleware(s.ListTenantsHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteTenants, ChainMiddleware(s.CreateTenantHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireSuperuser())...))
	s.RegisterRouteHandler("GET "+RouteTenant, ChainMiddleware(s.GetTenantHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireTenantAccess())...))
	s.RegisterRouteHandler("PUT "+RouteTenant, ChainMiddleware(s.UpdateTenantHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireSuperuser())...))
	s.RegisterRouteHandler("DELETE "+RouteTenant, ChainMiddleware(s.DeleteTenantHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireSuperuser())...))

	// MEMBERSHIPS
	s.RegisterRouteHandler("GET "+RouteTenantMembers, ChainMiddleware(s.ListMembersHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireTenantAccess())...))
	s.RegisterRouteHandler("PUT "+RouteTenantMember, ChainMiddleware(s.AddMemberHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireSuperuser())...))
	s.RegisterRouteHandler("DELETE "+RouteTenantMember, ChainMiddleware(s.RemoveMemberHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireSuperuser())...))

	// USERS
	s.RegisterRouteHandler("GET "+RouteUsers, ChainMiddleware(s.ListUsersHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteUsers, ChainMiddleware(s.CreateUserHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireSuperuser())...))
	s.RegisterRouteHandler("GET "+RouteUser, ChainMiddleware(s.GetUserHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("DELETE "+RouteUser, ChainMiddleware(s.DeleteUserHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireSuperuser())...))

	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
}
