package httpkit

import "net/http"

// MountUnder mounts a subrouter at prefix with per-module middlewares
// applied before the module's own routes
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}
