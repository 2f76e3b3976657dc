// Package server exposes the HTTP API: uploads, report queries, runtime
// settings, and a websocket event stream.
package server

import (
	"net/http"
)

func Handler(hub *Hub, store ReportStore, processor Processor, hooks SettingsHooks, mediaDir string) http.Handler {
	mux := http.NewServeMux()

	registerWSRoute(mux, hub)
	registerAPIRoutes(mux, store, processor, hooks, mediaDir)

	return mux
}
