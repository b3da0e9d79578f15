package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the connection under sessionID and pumps frames until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID string, onInbound InboundHandler) {
	client := &Client{Hub: hub, Conn: c, SessionID: sessionID, Send: make(chan []byte, 256), onInbound: onInbound}
	hub.addClient(client)

	go client.writePump()
	client.readPump()
}
