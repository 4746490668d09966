package email

import (
	"context"

	"github.com/ccrew/flightinventory/internal/kafka"
	"github.com/sirupsen/logrus"
)

// Sender is a stand-in delivery channel: it logs the notification that a
// real mailer would send.
type Sender struct {
	log *logrus.Logger
}

func NewSender(log *logrus.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	s.log.WithFields(logrus.Fields{
		"type":           event.Type,
		"reservation_id": event.ReservationID,
		"flight_number":  event.FlightNumber,
		"passenger_id":   event.PassengerID,
	}).Info("reservation notification")
	return nil
}
