package utils

import (
	"context"
	"fmt"

	"resqlink/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// PushMessage is one notification payload for the push provider.
type PushMessage struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// FCMClient wraps the Firebase Cloud Messaging client.
type FCMClient struct {
	client *messaging.Client
}

func NewFCMClient(ctx context.Context, credentialsFile string) (*FCMClient, error) {
	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize FCM client: %w", err)
	}

	return &FCMClient{client: client}, nil
}

// SendMulticast issues one multicast push to the given tokens and returns
// per-token success/failure counts. Partial failures are an outcome, not an
// error; an error return means the whole call failed.
func (fc *FCMClient) SendMulticast(ctx context.Context, tokens []string, msg PushMessage) (*models.DispatchResult, error) {
	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				Sound: "default",
				Icon:  "ic_notification",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: msg.Title,
						Body:  msg.Body,
					},
					Sound: "default",
				},
			},
		},
	}

	response, err := fc.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, NewDependencyError("FCM", err)
	}

	return &models.DispatchResult{
		SuccessCount: response.SuccessCount,
		FailureCount: response.FailureCount,
	}, nil
}
