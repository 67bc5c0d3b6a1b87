package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSQSClient is a mock implementation of the SQS client for testing.
type mockSQSClient struct {
	sendMessageFunc func(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

func (m *mockSQSClient) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if m.sendMessageFunc != nil {
		return m.sendMessageFunc(ctx, params, optFns...)
	}
	return &sqs.SendMessageOutput{}, nil
}

func TestPublisher_PublishProductMessage(t *testing.T) {
	t.Run("successful message publish stamps the source", func(t *testing.T) {
		// given
		queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"
		ctx := context.Background()

		var sent ProductMessage
		mockClient := &mockSQSClient{
			sendMessageFunc: func(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
				assert.Equal(t, queueURL, *params.QueueUrl)
				require.NotNil(t, params.MessageBody)
				assert.NoError(t, json.Unmarshal([]byte(*params.MessageBody), &sent))
				return &sqs.SendMessageOutput{
					MessageId: aws.String("test-message-id"),
				}, nil
			},
		}

		publisher := NewPublisher(mockClient, queueURL, "instance-a")

		msg := ProductMessage{
			Action:    ActionCreated,
			ProductID: "123",
			Name:      "Test Product",
			Price:     "99.99",
		}

		// when
		err := publisher.PublishProductMessage(ctx, msg)

		// then
		require.NoError(t, err)
		assert.Equal(t, "instance-a", sent.Source)
		assert.Equal(t, ActionCreated, sent.Action)
		assert.Equal(t, "99.99", sent.Price)
	})

	t.Run("error sending message", func(t *testing.T) {
		// given
		ctx := context.Background()

		expectedErr := errors.New("failed to send message")
		mockClient := &mockSQSClient{
			sendMessageFunc: func(_ context.Context, _ *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
				return nil, expectedErr
			},
		}

		publisher := NewPublisher(mockClient, "https://sqs.us-east-1.amazonaws.com/123456789/test-queue", "instance-a")

		msg := ProductMessage{
			Action:    ActionDeleted,
			ProductID: "123",
		}

		// when
		err := publisher.PublishProductMessage(ctx, msg)

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, expectedErr)
		assert.Contains(t, err.Error(), "failed to send message to SQS")
	})
}
