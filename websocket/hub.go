package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type Client struct {
	TrainerID uuid.UUID
	Conn      *websocket.Conn
}

// TrainerNotification is pushed to a connected trainer when the sync engine
// creates something that needs their attention.
type TrainerNotification struct {
	TrainerID uuid.UUID   `json:"-"`
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
}

const (
	NotifyPendingAppointment = "pending_appointment"
	NotifyPendingClient      = "pending_client"
)

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Notifications = make(chan *TrainerNotification, 64)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Trainer connected to notifications: %s", client.TrainerID)
			clientsMu.Lock()
			clients[client.TrainerID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Trainer disconnected from notifications: %s", client.TrainerID)
			clientsMu.Lock()
			if conn, ok := clients[client.TrainerID]; ok && conn == client.Conn {
				delete(clients, client.TrainerID)
			}
			clientsMu.Unlock()
		case notification := <-Notifications:
			clientsMu.RLock()
			conn, ok := clients[notification.TrainerID]
			clientsMu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(notification); err != nil {
				log.Printf("Error pushing notification to trainer %s: %v", notification.TrainerID, err)
				conn.Close()
				clientsMu.Lock()
				delete(clients, notification.TrainerID)
				clientsMu.Unlock()
			}
		}
	}
}

// Notify queues a notification without blocking the caller; if the hub is
// backed up the notification is dropped.
func Notify(trainerID uuid.UUID, notificationType string, payload interface{}) {
	select {
	case Notifications <- &TrainerNotification{TrainerID: trainerID, Type: notificationType, Payload: payload}:
	default:
		log.Printf("⚠️ Notification channel full, dropping %s for trainer %s", notificationType, trainerID)
	}
}
