package httpserver

import "net/http"

// Routes defines HTTP endpoints.
type Routes struct {
	Health   http.HandlerFunc
	Devices  http.HandlerFunc
	Device   http.HandlerFunc
	Readings http.HandlerFunc
	Live     http.HandlerFunc
}

// NewRouter sets up HTTP routing.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	if routes.Devices != nil {
		mux.Handle("/api/devices", method(http.MethodGet, routes.Devices))
	}
	if routes.Device != nil {
		mux.Handle("/api/devices/{device_id}", method(http.MethodGet, routes.Device))
	}
	if routes.Readings != nil {
		mux.Handle("/api/devices/{device_id}/readings", method(http.MethodGet, routes.Readings))
	}
	if routes.Live != nil {
		mux.Handle("/api/devices/{device_id}/live", method(http.MethodGet, routes.Live))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
