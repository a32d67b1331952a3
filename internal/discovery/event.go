package discovery

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Interface lifecycle event names as they arrive from CloudTrail.
const (
	EventCreate = "CreateNetworkInterface"
	EventAttach = "AttachNetworkInterface"
	EventDelete = "DeleteNetworkInterface"
	EventDetach = "DetachNetworkInterface"
)

// LifecycleEvent is one interface change notification.
type LifecycleEvent struct {
	Name        string `json:"eventName"`
	InterfaceID string `json:"networkInterfaceId"`
}

// HandleEvent applies one lifecycle event incrementally: creations and
// attachments re-classify and upsert the interface, deletions and detachments
// drop it from the table.
func (s *Service) HandleEvent(ctx context.Context, ev LifecycleEvent) error {
	if ev.InterfaceID == "" {
		return fmt.Errorf("event %s carries no interface id", ev.Name)
	}

	switch ev.Name {
	case EventCreate, EventAttach:
		item, err := s.SyncOne(ctx, ev.InterfaceID)
		if err != nil {
			return err
		}
		s.log.WithFields(logrus.Fields{
			"interface": item.ID,
			"event":     ev.Name,
			"type":      item.ResourceType,
		}).Info("interface upserted from event")
		return nil

	case EventDelete, EventDetach:
		if err := s.sink.Delete(ctx, ev.InterfaceID); err != nil {
			return fmt.Errorf("failed to delete %s: %w", ev.InterfaceID, err)
		}
		s.log.WithFields(logrus.Fields{
			"interface": ev.InterfaceID,
			"event":     ev.Name,
		}).Info("interface removed from event")
		return nil

	default:
		return fmt.Errorf("unhandled event type %q", ev.Name)
	}
}
