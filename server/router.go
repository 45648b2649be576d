package server

import (
	"net/http"

	"barrage/server/arena"
	"barrage/server/handler"
)

func Route(a *arena.Arena) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", handler.NewAcceptHandler(a))
	mux.Handle("/healthz", handler.NewHealthHandler())
	return mux
}
