package http

import "net/http"

// NewRouter assembles the backend routes.
func NewRouter(api *APIHandler, ws *WSHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", MetricsHandler())
	api.Register(mux)
	ws.Register(mux)
	return mux
}
