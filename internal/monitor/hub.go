// Package monitor broadcasts receive state-machine transitions and
// yielded frames over a WebSocket hub, for a dashboard observing a live
// or offline decode run.
package monitor

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/jeongseonghan/lora-lite-phy/pkg/lora"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local monitoring tool, not exposed publicly
	},
}

// Message is the envelope broadcast to every connected client.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// TransitionPayload reports a state machine step.
type TransitionPayload struct {
	State    string `json:"state"`
	ReadHead int    `json:"readHead"`
}

// FramePayload reports a yielded frame.
type FramePayload struct {
	PayloadLen int     `json:"payloadLen"`
	CRIndex    int     `json:"crIndex"`
	CRCOk      bool    `json:"crcOk"`
	OS         int     `json:"os"`
	CFOFrac    float64 `json:"cfoFractional"`
	STO        int     `json:"sto"`
}

// Hub manages WebSocket connections for the monitor dashboard.
type Hub struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

// Upgrade upgrades an HTTP request to a WebSocket connection and
// registers it with the hub.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	h.addClient(conn)
	return nil
}

func (h *Hub) addClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	log.Printf("monitor: client connected (%d total)", len(h.clients))
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
	log.Printf("monitor: client disconnected (%d remaining)", len(h.clients))
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("monitor: marshal error: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("monitor: write error: %v", err)
			go h.removeClient(conn)
		}
	}
}

// BroadcastTransition reports a state machine step.
func (h *Hub) BroadcastTransition(state string, readHead int) {
	h.broadcast(Message{
		Type:    "transition",
		Payload: TransitionPayload{State: state, ReadHead: readHead},
	})
}

// BroadcastFrame reports a yielded frame.
func (h *Hub) BroadcastFrame(f lora.Frame) {
	h.broadcast(Message{
		Type: "frame",
		Payload: FramePayload{
			PayloadLen: len(f.Payload),
			CRIndex:    f.Header.CR.CRIndex(),
			CRCOk:      f.CRCOk,
			OS:         f.Detection.OS,
			CFOFrac:    f.CFOFractional,
			STO:        f.STO,
		},
	})
}
