package service

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMService sends push notifications via Firebase Cloud Messaging.
type FCMService struct {
	client *messaging.Client
}

// NewFCMService returns nil if Firebase is not configured or fails to start.
func NewFCMService(ctx context.Context, serviceAccountPath string) *FCMService {
	if serviceAccountPath == "" {
		return nil
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		log.Printf("[FCM] failed to init Firebase app: %v", err)
		return nil
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("[FCM] failed to get messaging client: %v", err)
		return nil
	}
	return &FCMService{client: client}
}

// Send is a no-op on a nil service or an empty token.
func (s *FCMService) Send(ctx context.Context, token, notifType, title, body string, data map[string]interface{}) error {
	if s == nil || token == "" {
		return nil
	}
	msg := &messaging.Message{
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         stringData(notifType, data),
		Token:        token,
		Android: &messaging.AndroidConfig{
			Priority:     "high",
			Notification: &messaging.AndroidNotification{Sound: "default"},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{Aps: &messaging.Aps{Sound: "default"}},
		},
	}
	if _, err := s.client.Send(ctx, msg); err != nil {
		log.Printf("[FCM] send error: %v", err)
		return err
	}
	return nil
}

// stringData flattens the payload; FCM only accepts string values.
func stringData(notifType string, data map[string]interface{}) map[string]string {
	out := map[string]string{"type": notifType}
	for k, v := range data {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}
