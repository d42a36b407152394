package consumer

import (
	"context"
	"encoding/json"

	"go-fleetpay/internal/events"

	"go.uber.org/zap"
)

// Accruer adds payroll line items for a single completed shipment.
type Accruer interface {
	AccrueShipment(ctx context.Context, shipmentID string) (int, error)
}

func ConsumeShipmentCompleted(
	ctx context.Context,
	reader MessageReader,
	payroll Accruer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.shipment_completed")
	log.Info("shipment completed consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("shipment completed consumer stopped")
				return
			}
			log.Error("fetch shipment completed message failed", zap.Error(err))
			continue
		}

		var event events.ShipmentCompletedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil || event.ShipmentID == "" {
			log.Error("decode shipment_completed event failed", zap.Error(err), zap.Int64("offset", msg.Offset))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		created, err := payroll.AccrueShipment(ctx, event.ShipmentID)
		if err != nil {
			if isUniqueLineItemViolation(err) {
				log.Warn("line items already accrued for shipment, skipping",
					zap.String("shipment_id", event.ShipmentID),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}

			log.Error("accrue shipment payroll failed",
				zap.String("shipment_id", event.ShipmentID),
				zap.String("request_id", event.RequestID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit shipment completed message failed", zap.Error(err))
			continue
		}

		log.Info("shipment payroll accrued",
			zap.String("shipment_id", event.ShipmentID),
			zap.Int("rows_created", created),
		)
	}
}
