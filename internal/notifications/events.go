package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
	"github.com/channelworks/partnerhub-backend/pkg/logger"
)

const publishTimeout = 10 * time.Second

// Event describes one lifecycle occurrence worth telling someone about. It
// fans out to an in-app notification row and the partner events topic.
type Event struct {
	Type            enums.NotificationType `json:"type"`
	PartnerID       uuid.UUID              `json:"partner_id"`
	RecipientUserID *uuid.UUID             `json:"recipient_user_id,omitempty"`
	Title           string                 `json:"title"`
	Message         string                 `json:"message"`
	Link            *string                `json:"link,omitempty"`
}

type eventStore interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type eventsPublisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) *gcppubsub.PublishResult
}

// Dispatcher persists notifications and mirrors them onto Pub/Sub. Delivery is
// best effort: failures are logged, never propagated, so a broken notification
// path cannot roll back the workflow step that produced the event.
type Dispatcher struct {
	store     eventStore
	publisher eventsPublisher
	logg      *logger.Logger
}

// NewDispatcher builds an event dispatcher. The publisher may be nil, in which
// case events only produce notification rows.
func NewDispatcher(store eventStore, publisher eventsPublisher, logg *logger.Logger) (*Dispatcher, error) {
	if store == nil {
		return nil, fmt.Errorf("notification store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{store: store, publisher: publisher, logg: logg}, nil
}

// Dispatch records the event for its recipient and publishes it downstream.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	logCtx := d.logg.WithPartnerID(d.logg.WithField(ctx, "event_type", string(event.Type)), event.PartnerID.String())

	if !event.Type.IsValid() {
		d.logg.Warn(logCtx, "dropping event with unknown type")
		return
	}

	if event.RecipientUserID != nil && *event.RecipientUserID != uuid.Nil {
		row := models.Notification{
			RecipientUserID: *event.RecipientUserID,
			Type:            event.Type,
			Title:           event.Title,
			Message:         event.Message,
			Link:            event.Link,
		}
		if err := d.store.Create(ctx, &row); err != nil {
			d.logg.Error(logCtx, "persist notification", err)
		}
	}

	d.publish(logCtx, event)
}

func (d *Dispatcher) publish(ctx context.Context, event Event) {
	if d.publisher == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		d.logg.Error(ctx, "marshal partner event", err)
		return
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	result := d.publisher.Publish(publishCtx, &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"type":       string(event.Type),
			"partner_id": event.PartnerID.String(),
		},
	})
	if result == nil {
		d.logg.Warn(ctx, "partner events publisher returned nil result")
		return
	}
	if _, err := result.Get(publishCtx); err != nil {
		d.logg.Error(ctx, "publish partner event", err)
	}
}
