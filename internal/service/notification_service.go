package service

import (
	"aerocrew_training_backend/internal/config"
	"aerocrew_training_backend/pkg/logger"
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// WebhookNotifier posts staff messages to an external webhook. Delivery
// is fire-and-forget with a bounded timeout; failures are logged and
// never surfaced to the engine.
type WebhookNotifier struct {
	mu     sync.RWMutex
	url    string
	client *http.Client
}

func NewWebhookNotifier(cfg config.NotificationConfig) *WebhookNotifier {
	return &WebhookNotifier{
		url: cfg.WebhookURL,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type notificationPayload struct {
	UserID  uint   `json:"userId"`
	Message string `json:"message"`
}

func (n *WebhookNotifier) Notify(userID uint, message string) {
	n.mu.RLock()
	url := n.url
	client := n.client
	n.mu.RUnlock()

	if url == "" {
		return
	}

	go func() {
		body, err := json.Marshal(notificationPayload{UserID: userID, Message: message})
		if err != nil {
			return
		}
		resp, err := client.Post(url, "application/json", bytes.NewReader(body))
		if err != nil {
			logger.Log.Warn("notification delivery failed",
				zap.Uint("userId", userID), zap.Error(err))
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			logger.Log.Warn("notification webhook rejected message",
				zap.Uint("userId", userID), zap.Int("status", resp.StatusCode))
		}
	}()
}

// Reconfigure swaps the webhook target on config hot-reload.
func (n *WebhookNotifier) Reconfigure(cfg config.NotificationConfig) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.url = cfg.WebhookURL
	n.client = &http.Client{
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}
