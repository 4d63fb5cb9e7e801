package notification

import (
	"context"
	"fmt"
	"log"

	"firebase.google.com/go/v4/messaging"
)

// BroadcastTopic is the FCM topic every family device subscribes to on
// registration; job notifications fan out through it.
const BroadcastTopic = "family-picks"

type FCMService struct {
	client *messaging.Client
}

func NewFCMService(client *messaging.Client) *FCMService {
	return &FCMService{client: client}
}

// Broadcast sends one notification to the family topic. Data values are
// stringified because FCM data payloads only carry strings.
func (s *FCMService) Broadcast(ctx context.Context, title, body string, data map[string]any) error {
	stringData := make(map[string]string, len(data))
	for k, v := range data {
		stringData[k] = fmt.Sprintf("%v", v)
	}

	message := &messaging.Message{
		Topic: BroadcastTopic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: stringData,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
	}

	id, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("fcm broadcast failed: %w", err)
	}
	log.Printf("FCM: broadcast sent, message id %s", id)
	return nil
}
