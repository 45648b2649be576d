package adapterwebsocket

import (
	"context"

	"github.com/coder/websocket"

	"barrage/server/arena"
)

type wsTransport struct {
	conn *websocket.Conn
}

// NewTransportFrom は既存の websocket 接続を Transport として包みます。
func NewTransportFrom(conn *websocket.Conn) arena.Transport {
	return &wsTransport{conn: conn}
}

func (t *wsTransport) Read(ctx context.Context) ([]byte, error) {
	_, data, err := t.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write はイベントフレームをバイナリメッセージとして送ります。
func (t *wsTransport) Write(ctx context.Context, data []byte) error {
	return t.conn.Write(ctx, websocket.MessageBinary, data)
}

func (t *wsTransport) Close(code int32, reason string) error {
	return t.conn.Close(websocket.StatusCode(code), reason)
}
