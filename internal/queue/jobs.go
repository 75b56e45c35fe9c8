package queue

import (
	"time"

	"github.com/mikestefanello/backlite"
)

const (
	WebhookQueue = "Webhook"

	CredentialReceived = "CREDENTIAL_RECEIVED"
	CredentialAccepted = "CREDENTIAL_ACCEPTED"
)

type WebhookBody struct {
	Type       string `json:"type"`
	Network    string `json:"network"`
	Profile    string `json:"profile"`
	Credential string `json:"credential"`
}

type WebhookJob struct {
	To   string
	Body WebhookBody
}

func (j WebhookJob) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        WebhookQueue,
		MaxAttempts: 5,
		Backoff:     5 * time.Second,
		Timeout:     10 * time.Second,
		Retention: &backlite.Retention{
			Duration:   12 * time.Hour,
			OnlyFailed: false,
			Data: &backlite.RetainData{
				OnlyFailed: true,
			},
		},
	}
}
