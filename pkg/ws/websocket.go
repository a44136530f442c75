package ws

import (
	"context"

	"github.com/coder/websocket"
)

// websocketConn adapts a coder/websocket connection to the hub's Conn.
type websocketConn struct {
	conn *websocket.Conn
}

// NewWebsocketConn wraps an accepted WebSocket connection for hub use.
func NewWebsocketConn(conn *websocket.Conn) Conn {
	return &websocketConn{conn: conn}
}

func (c *websocketConn) Write(ctx context.Context, data []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, data)
}

func (c *websocketConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
