package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches an upgraded connection to the hub under the given topic.
func ServeWs(hub *Hub, c *websocket.Conn, topic string) {
	client := &Client{Hub: hub, Conn: c, Topic: topic, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
