package server

func (s *Server) initRoutes() {
	// Identity and session
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.Register(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.Login(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.Logout(), s.APIMiddleware()...))

	// Authorization code flow
	s.RegisterRouteHandler("GET "+RouteAuthorize, ChainMiddleware(s.Authorize(), s.APIMiddleware(s.LoadSession)...))
	s.RegisterRouteHandler("POST "+RouteToken, ChainMiddleware(s.Token(), s.APIMiddleware(s.NoStoreMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteUserInfo, ChainMiddleware(s.UserInfo(), s.APIMiddleware(s.NoStoreMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.APIMiddleware()...))

	// Users
	s.RegisterRouteHandler("GET "+RouteUsers, ChainMiddleware(s.ListUsers(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteUsers, ChainMiddleware(s.CreateUser(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteUser, ChainMiddleware(s.GetUser(), s.APIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteUser, ChainMiddleware(s.UpdateUser(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteUser, ChainMiddleware(s.DeleteUser(), s.APIMiddleware()...))

	// Enquiries
	s.RegisterRouteHandler("GET "+RouteEnquiries, ChainMiddleware(s.ListEnquiries(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteEnquiries, ChainMiddleware(s.CreateEnquiry(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteEnquiry, ChainMiddleware(s.GetEnquiry(), s.APIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteEnquiry, ChainMiddleware(s.UpdateEnquiry(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteEnquiry, ChainMiddleware(s.DeleteEnquiry(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteSystemStatus, ChainMiddleware(s.SystemStatus(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteMetrics, ChainMiddleware(s.metrics.Handler().ServeHTTP, s.RequestIDMiddleware, s.RecoverMiddleware))

	// Preflight for every API route
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(s.NotFoundHandler(), s.APIMiddleware()...))
}
