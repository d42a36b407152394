package consumer

import (
	"context"

	"go-fleetpay/internal/shared/database"

	kafkago "github.com/segmentio/kafka-go"
)

// MessageReader is the part of *kafkago.Reader the consumers use.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

func isUniqueLineItemViolation(err error) bool {
	return database.IsUniqueViolation(err, "idx_shipment_payrolls_crew")
}
