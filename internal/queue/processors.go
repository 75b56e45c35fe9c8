package queue

import (
	"context"
	"encoding/json"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
)

func (q *notifyQueueImpl) register() {
	webhookQueue := backlite.NewQueue[WebhookJob](q.deliver())
	q.queues.Register(webhookQueue)
}

func (q *notifyQueueImpl) deliver() func(context.Context, WebhookJob) error {
	return func(ctx context.Context, task WebhookJob) error {
		body, err := json.Marshal(task.Body)
		if err != nil {
			return err
		}

		log.Debug().Str("to", task.To).Str("type", task.Body.Type).Msg("delivering webhook")
		if _, err = q.client.Post(ctx, task.To, body); err != nil {
			log.Error().Err(err).Str("to", task.To).Msg("webhook delivery failed")
			return err
		}
		return nil
	}
}
