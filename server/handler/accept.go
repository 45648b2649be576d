package handler

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	adapterwebsocket "barrage/server/adapter/websocket"
	"barrage/server/arena"
)

// AcceptHandler は観戦クライアントの websocket 接続を受け付け、
// アリーナの戦闘フィードへ接続します。
type AcceptHandler struct {
	arena *arena.Arena
}

func NewAcceptHandler(a *arena.Arena) *AcceptHandler {
	return &AcceptHandler{arena: a}
}

func (h *AcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // 開発用: Origin チェックをスキップ
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to accept", "err", err)
		return
	}

	transport := adapterwebsocket.NewTransportFrom(conn)
	if err := h.arena.Attach(ctx, transport); err != nil {
		slog.DebugContext(ctx, "spectator session ended", "err", err)
	}
}
