package httpserver

import "net/http"

// Routes groups HTTP handlers.
type Routes struct {
	Health        http.HandlerFunc
	Bill          http.HandlerFunc
	CreateInvoice http.HandlerFunc
	Invoices      http.HandlerFunc
	GetTariff     http.HandlerFunc
	UpdateTariff  http.HandlerFunc
}

// NewRouter registers service endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	if routes.Bill != nil {
		mux.Handle("/api/billing/{device_id}", method(http.MethodGet, routes.Bill))
	}
	if routes.CreateInvoice != nil {
		mux.Handle("/api/billing/{device_id}/invoice", method(http.MethodPost, routes.CreateInvoice))
	}
	if routes.Invoices != nil {
		mux.Handle("/api/invoices/{device_id}", method(http.MethodGet, routes.Invoices))
	}
	if routes.GetTariff != nil {
		mux.Handle("/api/tariffs", methodSwitch(routes.GetTariff, routes.UpdateTariff))
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

func methodSwitch(get, put http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			get(w, r)
		case http.MethodPut:
			if put != nil {
				put(w, r)
				return
			}
			fallthrough
		default:
			w.Header().Set("Allow", "GET, PUT")
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}
