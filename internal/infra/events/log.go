package events

import (
	"context"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
)

// LogPublisher пишет события в лог; используется, когда брокер отключен в конфиге
type LogPublisher struct {
	log Logger
}

func NewLogPublisher(log Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, events ...domain.LifecycleEvent) error {
	for _, e := range events {
		p.log.Info("event %s: reservation id=%d, venue id=%d, status=%s, actor=%d",
			e.Type, e.ReservationID, e.VenueID, e.Status, e.ActorID)
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }
