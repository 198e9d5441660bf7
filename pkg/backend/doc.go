// Package backend serves a contingency dispatcher over HTTP using gin.
//
// Routes:
//
//	GET  /health                    liveness, version and uptime
//	GET  /api/providers             configured providers
//	GET  /api/providers/health      latest scheduled health sweep
//	POST /api/providers/:key/test   one health-check call, 404 for unknown keys
//	POST /api/dispatch              dispatch a request through the provider chain
//	GET  /api/stats?days=N          attempt log statistics, seven days by default
//
// Example:
//
//	fac := factory.NewInvokerFactory()
//	factory.RegisterDefaultInvokers(fac)
//	reg, _ := registry.Load(ctx, "providers.yaml", fac, logger)
//	d := contingency.NewDispatcher(reg.Config(), sink, contingency.WithLogger(logger))
//	srv := backend.NewServer(cfg, d, reg, backend.WithMonitor(mon), backend.WithLogger(logger))
//	err := srv.ListenAndServeWithGracefulShutdown(ctx)
package backend
