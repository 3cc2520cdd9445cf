package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAuthLogin   = "/auth/login"
	RouteAuthRefresh = "/auth/refresh"
	RouteAuthMe      = "/auth/me"
	RouteAuthLogout  = "/auth/logout"

	// Tenant Routes
	RouteTenants       = "/tenants"
	RouteTenant        = "/tenants/{tenant_id}"
	RouteTenantMembers = "/tenants/{tenant_id}/members"
	RouteTenantMember  = "/tenants/{tenant_id}/members/{user_id}"

	// User Routes
	RouteUsers = "/users"
	RouteUser  = "/users/{user_id}"

	// Operations
	RouteMetrics = "/metrics"
)

// Path parameters
const (
	PathTenantID = "tenant_id"
	PathUserID   = "user_id"
)
