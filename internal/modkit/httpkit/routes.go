package httpkit

import "net/http"

// MountAPIV1 mounts /api/v1 with mw, then hands the scoped router to mount
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	MountUnder(r, "/api/v1", mw, mount)
}

// MountUnder mounts a sub router at prefix with its own middleware
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}
