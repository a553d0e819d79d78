package handlers

import "net/http"

// NewHealthHandler returns GET /health handler. The broker flag reflects the
// current subscription state; while false, inbound telemetry is being lost.
func NewHealthHandler(mqttConnected func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connected := false
		if mqttConnected != nil {
			connected = mqttConnected()
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":         "ok",
			"mqtt_connected": connected,
		})
	}
}
