package queue

import (
	"context"

	"github.com/mikestefanello/backlite"
	"github.com/opencreds/boostnet/internal/client"
	"github.com/opencreds/boostnet/internal/config"
	"github.com/opencreds/boostnet/internal/db"
	"github.com/opencreds/boostnet/internal/service"
	"github.com/rs/zerolog/log"
)

type notifyQueueImpl struct {
	db     db.DB
	cfg    config.Configuration
	queues *backlite.Client
	client *client.HttpClient
}

// New registers the webhook queue and starts the workers. The returned
// notifier enqueues rather than delivers, so callers never wait on a
// recipient's endpoint.
func New(ctx context.Context, db db.DB, client *client.HttpClient, cfg config.Configuration, blClient *backlite.Client) service.Notifier {
	q := &notifyQueueImpl{
		db:     db,
		cfg:    cfg,
		queues: blClient,
		client: client,
	}
	q.register()
	q.queues.Start(ctx)
	log.Info().Msg("started task queue")
	return q
}

func (q *notifyQueueImpl) CredentialSent(ctx context.Context, to, credentialURI string) error {
	return q.notify(ctx, to, WebhookBody{
		Type:       CredentialReceived,
		Profile:    to,
		Credential: credentialURI,
	})
}

func (q *notifyQueueImpl) CredentialAccepted(ctx context.Context, issuer, credentialURI string) error {
	return q.notify(ctx, issuer, WebhookBody{
		Type:       CredentialAccepted,
		Profile:    issuer,
		Credential: credentialURI,
	})
}

func (q *notifyQueueImpl) notify(ctx context.Context, profileID string, body WebhookBody) error {
	profile, err := q.db.GetProfile(ctx, profileID)
	if err != nil {
		return err
	}
	if profile.NotifyEndpoint == "" {
		log.Debug().Str("profile", profileID).Msg("profile has no notification endpoint")
		return nil
	}

	body.Network = q.cfg.Name
	task := WebhookJob{
		To:   profile.NotifyEndpoint,
		Body: body,
	}
	_, err = q.queues.Add(task).Save()
	return err
}
