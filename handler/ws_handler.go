package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/m-atef1999/Spotless-sub000/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Auth happens via the JWT middleware; origin checks add nothing here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// DriverWS upgrades the calling driver's connection and parks it in the hub
// until the client goes away.
func DriverWS(hub *realtime.Hub, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := driverID(c)
		if !ok {
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("ws upgrade failed", zap.Error(err))
			return
		}
		hub.RegisterDriver(id, conn)
		defer hub.UnregisterDriver(id)

		// Server-push only; the read loop just detects disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

// CustomerWS is the customer-side event stream.
func CustomerWS(hub *realtime.Hub, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("ws upgrade failed", zap.Error(err))
			return
		}
		hub.RegisterCustomer(id, conn)
		defer hub.UnregisterCustomer(id)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
