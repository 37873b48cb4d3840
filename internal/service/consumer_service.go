package service

import (
	"context"
	"encoding/json"

	"highlighter-be/internal/dto"
	"highlighter-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IConsumerService drains the palette-changed queue and restyles the
// affected live documents.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub          *gochannel.GoChannel
	topicName       string
	documentService IDocumentService
	notifications   INotificationService
	logger          logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	documentService IDocumentService,
	notifications INotificationService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:          pubSub,
		topicName:       topicName,
		documentService: documentService,
		notifications:   notifications,
		logger:          log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishPaletteChangedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal palette message", map[string]interface{}{"error": err.Error()})
		// Malformed messages would never succeed on redelivery.
		msg.Ack()
		return
	}

	restyled, fallback, err := cs.documentService.RestyleSessions(ctx, payload.UserId)
	if err != nil {
		cs.logger.Error("Consumer", "Failed to restyle sessions", map[string]interface{}{
			"user_id": payload.UserId.String(),
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Info("Consumer", "Palette applied to live documents", map[string]interface{}{
		"user_id":  payload.UserId.String(),
		"sessions": restyled,
		"fallback": fallback,
	})
	if cs.notifications != nil {
		cs.notifications.PaletteChanged(ctx, payload.UserId, restyled, fallback)
	}
	msg.Ack()
}
