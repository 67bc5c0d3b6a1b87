package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// ListenerAPI defines the interface for SQS operations used by Listener.
type ListenerAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// RefreshFunc reloads the local product collection.
type RefreshFunc func(ctx context.Context) error

// Listener long-polls the change queue and refreshes the product collection
// once per received batch that carries at least one valid change message from another instance.
// Messages published by this instance are deleted without a refresh, since the
// controller already reloaded after its own mutation.
type Listener struct {
	client   ListenerAPI
	queueURL string
	source   string
	refresh  RefreshFunc
}

// NewListener creates a new Listener with the given client, queue URL, refresh callback
// and the source id this instance publishes with.
func NewListener(client ListenerAPI, queueURL, source string, refresh RefreshFunc) *Listener {
	return &Listener{
		client:   client,
		queueURL: queueURL,
		source:   source,
		refresh:  refresh,
	}
}

// Start consumes change messages until the context is cancelled.
func (l *Listener) Start(ctx context.Context) error {
	slog.Info("Starting product change listener", slog.String("queueURL", l.queueURL))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping product change listener")
			return ctx.Err()
		default:
			if err := l.receiveMessages(ctx); err != nil {
				slog.Error("Error receiving messages", slog.Any("err", err))
			}
		}
	}
}

func (l *Listener) receiveMessages(ctx context.Context) error {
	result, err := l.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(l.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20, // Long polling
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	var valid, own []types.Message
	for _, message := range result.Messages {
		productMsg, err := l.processMessage(message)
		if err != nil {
			// left in the queue for redelivery
			slog.Error("Error processing message", slog.Any("err", err))
			continue
		}
		if l.source != "" && productMsg.Source == l.source {
			own = append(own, message)
			continue
		}
		valid = append(valid, message)
	}

	for _, message := range own {
		if err := l.deleteMessage(ctx, message); err != nil {
			slog.Error("Error deleting message", slog.Any("err", err))
		}
	}
	if len(valid) == 0 {
		return nil
	}

	// One reload covers every change in the batch.
	if err := l.refresh(ctx); err != nil {
		return fmt.Errorf("failed to refresh products: %w", err)
	}

	for _, message := range valid {
		if err := l.deleteMessage(ctx, message); err != nil {
			slog.Error("Error deleting message", slog.Any("err", err))
		}
	}

	return nil
}

func (l *Listener) processMessage(message types.Message) (ProductMessage, error) {
	var productMsg ProductMessage
	if message.Body == nil {
		return productMsg, fmt.Errorf("message body is nil")
	}

	if err := json.Unmarshal([]byte(*message.Body), &productMsg); err != nil {
		return productMsg, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if productMsg.Action != ActionCreated && productMsg.Action != ActionDeleted {
		return productMsg, fmt.Errorf("unknown action %q", productMsg.Action)
	}

	slog.Info("Received product change",
		slog.String("action", productMsg.Action),
		slog.String("product_id", productMsg.ProductID),
		slog.String("source", productMsg.Source),
	)

	return productMsg, nil
}

func (l *Listener) deleteMessage(ctx context.Context, message types.Message) error {
	_, err := l.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(l.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
