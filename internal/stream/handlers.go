package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"backend-raceplanner/internal/auth"
)

// RegisterRoutes mounts GET /ws/:userID. Callers only ever subscribe to their
// own feed.
func RegisterRoutes(r fiber.Router, hub *Hub, authMiddleware fiber.Handler) {
	r.Get("/ws/:userID", authMiddleware, requireOwnFeed, requireUpgrade, websocket.New(func(c *websocket.Conn) {
		client := hub.Register(c.Params("userID"))
		defer hub.Unregister(client)

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(client)
		<-done
	}))
}

func requireOwnFeed(c *fiber.Ctx) error {
	if auth.UserID(c) != c.Params("userID") {
		return fiber.NewError(fiber.StatusForbidden, "cannot subscribe to another athlete's feed")
	}
	return c.Next()
}

func requireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}
