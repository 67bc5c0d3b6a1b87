package sqs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Change actions carried by ProductMessage.
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// PublisherAPI defines the interface for SQS operations used by Publisher.
type PublisherAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher handles publishing product change messages to AWS SQS.
type Publisher struct {
	client   PublisherAPI
	queueURL string
	source   string
}

// NewPublisher creates a new SQS Publisher with the given client and queue URL.
// Source identifies this instance so its Listener can skip the messages it published.
func NewPublisher(client PublisherAPI, queueURL, source string) *Publisher {
	return &Publisher{
		client:   client,
		queueURL: queueURL,
		source:   source,
	}
}

// ProductMessage represents a message about a change to the remote product collection.
type ProductMessage struct {
	Action    string `json:"action"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Source    string `json:"source,omitempty"`
}

// PublishProductMessage publishes a product message to the SQS queue.
func (p *Publisher) PublishProductMessage(ctx context.Context, msg ProductMessage) error {
	if msg.Source == "" {
		msg.Source = p.source
	}
	messageBody, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(messageBody)),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}
