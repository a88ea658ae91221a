package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Identity and session
	RouteRegister = "/register"
	RouteLogin    = "/login"
	RouteLogout   = "/logout"

	// Authorization code flow
	RouteAuthorize = "/authorize"
	RouteToken     = "/token"
	RouteUserInfo  = "/userinfo"
	RouteCallback  = "/callback"

	// Resource API
	RouteUsers        = "/v1/users"
	RouteUser         = "/v1/users/{id}"
	RouteEnquiries    = "/v1/enquiries"
	RouteEnquiry      = "/v1/enquiries/{id}"
	RouteSystemStatus = "/v1/system-status"

	RouteMetrics = "/metrics"
)
