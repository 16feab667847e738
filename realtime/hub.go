// Package realtime pushes order and assignment events to connected drivers
// and customers over websockets. Delivery is best-effort: a disconnected
// client simply misses the event and catches up over HTTP.
package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Hub struct {
	mu         sync.RWMutex
	byDriver   map[uuid.UUID]*wsConn
	byCustomer map[uuid.UUID]*wsConn
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		byDriver:   make(map[uuid.UUID]*wsConn),
		byCustomer: make(map[uuid.UUID]*wsConn),
		log:        log,
	}
}

// wsConn wraps a websocket connection with a write mutex to serialize writes.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// RegisterDriver replaces any existing connection for the driver.
func (h *Hub) RegisterDriver(driverID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.byDriver[driverID]; ok {
		old.conn.Close()
	}
	h.byDriver[driverID] = &wsConn{conn: conn}
}

func (h *Hub) UnregisterDriver(driverID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.byDriver[driverID]; ok {
		c.conn.Close()
		delete(h.byDriver, driverID)
	}
}

func (h *Hub) RegisterCustomer(customerID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.byCustomer[customerID]; ok {
		old.conn.Close()
	}
	h.byCustomer[customerID] = &wsConn{conn: conn}
}

func (h *Hub) UnregisterCustomer(customerID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.byCustomer[customerID]; ok {
		c.conn.Close()
		delete(h.byCustomer, customerID)
	}
}

// NotifyDriver sends a typed event to the driver if connected.
func (h *Hub) NotifyDriver(driverID uuid.UUID, event string, payload any) {
	h.mu.RLock()
	wc, ok := h.byDriver[driverID]
	h.mu.RUnlock()
	if !ok {
		h.log.Debug("ws: driver not connected, dropping event",
			zap.String("driver_id", driverID.String()), zap.String("event", event))
		return
	}
	h.send(wc, event, payload, zap.String("driver_id", driverID.String()))
}

// NotifyCustomer sends a typed event to the customer if connected.
func (h *Hub) NotifyCustomer(customerID uuid.UUID, event string, payload any) {
	h.mu.RLock()
	wc, ok := h.byCustomer[customerID]
	h.mu.RUnlock()
	if !ok {
		h.log.Debug("ws: customer not connected, dropping event",
			zap.String("customer_id", customerID.String()), zap.String("event", event))
		return
	}
	h.send(wc, event, payload, zap.String("customer_id", customerID.String()))
}

func (h *Hub) send(wc *wsConn, event string, payload any, who zap.Field) {
	msg := map[string]any{"event": event, "data": payload}
	wc.mu.Lock()
	defer wc.mu.Unlock()
	if err := wc.conn.WriteJSON(msg); err != nil {
		h.log.Warn("ws: write failed", who, zap.String("event", event), zap.Error(err))
	}
}
