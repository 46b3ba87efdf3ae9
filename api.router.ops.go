package main

import (
	"net/http"
	"net/http/pprof"

	"github.com/go-chi/chi/v5"
)

// SetupOpsRoutes injects internal operations related endpoints.
func (api *APIHandler) SetupOpsRoutes(r chi.Router) {
	r.Get("/ops/configs", api.GetConfigs)
	r.Get("/ops/stats", api.GetStatistics)
	r.Get("/ops/maintenance", api.MaintenanceHandler)
	r.Get("/ops/debug/vars", GetMemStats)
	r.Get("/ops/debug/gc", api.RunGC)
	r.Get("/ops/debug/fos", api.FreeOSMemory)

	if api.config.ProfilerEnable {
		r.Get("/ops/debug/pprof/", api.OpsHandlerWrapper(http.HandlerFunc(pprof.Index)))
		r.Get("/ops/debug/pprof/profile", api.OpsHandlerWrapper(http.HandlerFunc(pprof.Profile)))
		r.Get("/ops/debug/pprof/trace", api.OpsHandlerWrapper(http.HandlerFunc(pprof.Trace)))
		r.Get("/ops/debug/pprof/symbol", api.OpsHandlerWrapper(http.HandlerFunc(pprof.Symbol)))
		r.Get("/ops/debug/pprof/cmdline", api.OpsHandlerWrapper(http.HandlerFunc(pprof.Cmdline)))
		r.Get("/ops/debug/pprof/heap", api.OpsHandlerWrapper(pprof.Handler("heap")))
		r.Get("/ops/debug/pprof/allocs", api.OpsHandlerWrapper(pprof.Handler("allocs")))
		r.Get("/ops/debug/pprof/goroutine", api.OpsHandlerWrapper(pprof.Handler("goroutine")))
		r.Get("/ops/debug/pprof/block", api.OpsHandlerWrapper(pprof.Handler("block")))
		r.Get("/ops/debug/pprof/mutex", api.OpsHandlerWrapper(pprof.Handler("mutex")))
		r.Get("/ops/debug/pprof/threadcreate", api.OpsHandlerWrapper(pprof.Handler("threadcreate")))
	}
}
