package reservation

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/ccrew/flightinventory/internal/domain"
	"github.com/ccrew/flightinventory/internal/kafka"
	"github.com/ccrew/flightinventory/internal/repository"
	"github.com/ccrew/flightinventory/internal/service/pricing"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ReservationUseCase interface {
	MakeOneWay(ctx context.Context, customerID int64, input MakeOneWayInput) (*domain.ItineraryReservation, error)
	MakeRoundTrip(ctx context.Context, customerID int64, input MakeOneWayInput) ([]domain.ItineraryReservation, error)
	Cancel(ctx context.Context, reservationID int64) (*domain.ItineraryReservation, error)
	Reverse(ctx context.Context, reservationID int64) error
	List(ctx context.Context, customerID int64, page, size int) (*Page, error)
}

// AvailabilityChecker gates a booking on free seats in the class.
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, flightNumber int64, class domain.TravelClassCode) error
}

// FareQuoter resolves the fare and seat total a commit is priced and
// bounded by.
type FareQuoter interface {
	Quote(ctx context.Context, flightNumber int64, class domain.TravelClassCode, date time.Time) (pricing.ClassFare, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type MakeOneWayInput struct {
	FlightNumber    int64                  `json:"flight_number"`
	TicketTypeCode  domain.TicketTypeCode  `json:"ticket_type_code"`
	TravelClassCode domain.TravelClassCode `json:"travel_class_code"`
}

type Page struct {
	Reservations []domain.ItineraryReservation `json:"reservations"`
	Total        int64                         `json:"total"`
}

// ReservationService runs the check-then-commit booking sequence and the
// cancellation and reversal policies.
//
// Reverse is deliberately asymmetric with Cancel: it removes the leg links
// and leaves the reservation row in CREATED with no cancellation marker, a
// soft void the upstream data model distinguishes from a cancellation.
type ReservationService struct {
	reservations       repository.ReservationRepository
	passengers         repository.PassengerRepository
	flights            repository.FlightRepository
	availability       AvailabilityChecker
	fares              FareQuoter
	producer           Producer
	log                *logrus.Logger
	reservationsTopic  string
	notificationsTopic string
	commitRetries      int
	reverseCutoff      time.Duration
	now                func() time.Time
}

type ReservationServiceOption func(*ReservationService)

func WithNotificationsTopic(topic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) ReservationServiceOption {
	return func(s *ReservationService) {
		s.now = now
	}
}

func NewReservationService(
	reservations repository.ReservationRepository,
	passengers repository.PassengerRepository,
	flights repository.FlightRepository,
	availability AvailabilityChecker,
	fares FareQuoter,
	producer Producer,
	log *logrus.Logger,
	reservationsTopic string,
	commitRetries int,
	reverseCutoff time.Duration,
	opts ...ReservationServiceOption,
) *ReservationService {
	service := &ReservationService{
		reservations:      reservations,
		passengers:        passengers,
		flights:           flights,
		availability:      availability,
		fares:             fares,
		producer:          producer,
		log:               log,
		reservationsTopic: reservationsTopic,
		commitRetries:     commitRetries,
		reverseCutoff:     reverseCutoff,
		now:               time.Now,
	}
	if service.commitRetries < 1 {
		service.commitRetries = 1
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// MakeOneWay books the whole flight in one travel class for the caller's
// passenger profile. The reservation, one leg link per flight leg, the
// payment and its link commit as a single transaction; a lost commit race
// is retried up to commitRetries times and then reported as capacity
// exceeded, since losing the race means a competing booking took the seat.
func (s *ReservationService) MakeOneWay(ctx context.Context, customerID int64, input MakeOneWayInput) (*domain.ItineraryReservation, error) {
	flight, err := s.flights.GetByNumber(ctx, input.FlightNumber)
	if err != nil {
		return nil, err
	}

	if err := s.availability.CheckAvailability(ctx, flight.FlightNumber, input.TravelClassCode); err != nil {
		return nil, err
	}

	passenger, err := s.passengers.GetByCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("create passenger before making reservation")
		}
		return nil, err
	}

	legs, err := s.flights.Legs(ctx, flight.FlightNumber)
	if err != nil {
		return nil, err
	}
	legIDs := make([]int64, 0, len(legs))
	for _, leg := range legs {
		legIDs = append(legIDs, leg.LegID)
	}

	fare, err := s.fares.Quote(ctx, flight.FlightNumber, input.TravelClassCode, s.now())
	if err != nil {
		return nil, err
	}

	params := repository.CreateItineraryParams{
		FlightNumber:    flight.FlightNumber,
		PassengerID:     passenger.PassengerID,
		TicketTypeCode:  input.TicketTypeCode,
		TravelClassCode: input.TravelClassCode,
		LegIDs:          legIDs,
		TotalSeats:      fare.TotalSeats,
		FareCents:       fare.FareCents,
		Now:             s.now(),
	}

	var reservation *domain.ItineraryReservation
	var payment *domain.Payment
	for attempt := 1; ; attempt++ {
		reservation, payment, err = s.reservations.CreateItinerary(ctx, params)
		if err == nil {
			break
		}
		if !domain.IsRetriable(err) {
			return nil, err
		}
		if attempt >= s.commitRetries {
			s.log.WithFields(logrus.Fields{
				"flight_number": flight.FlightNumber,
				"travel_class":  input.TravelClassCode,
				"attempts":      attempt,
			}).Warn("reservation commit kept losing serialization races")
			return nil, domain.NewCapacityExceededError(input.TravelClassCode)
		}
	}

	s.publish(ctx, kafka.EventReservationCreated, reservation, flight.FlightNumber, payment.AmountCents)
	return reservation, nil
}

// MakeRoundTrip is declared for API symmetry but intentionally not
// implemented; it always returns an empty result.
func (s *ReservationService) MakeRoundTrip(ctx context.Context, customerID int64, input MakeOneWayInput) ([]domain.ItineraryReservation, error) {
	return []domain.ItineraryReservation{}, nil
}

// Cancel transitions a CREATED reservation to CANCELED and releases its
// seats by removing the leg links. Any other starting status is a
// validation failure and performs no writes.
func (s *ReservationService) Cancel(ctx context.Context, reservationID int64) (*domain.ItineraryReservation, error) {
	current, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.ReservationStatusCreated {
		return nil, domain.NewValidationError("reservation status must be CREATED to cancel")
	}

	flightNumber := int64(0)
	if flight, err := s.reservations.FlightByReservation(ctx, reservationID); err == nil {
		flightNumber = flight.FlightNumber
	}

	updated, err := s.reservations.CancelItinerary(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventReservationCancelled, updated, flightNumber, 0)
	return updated, nil
}

// Reverse removes the reservation's leg links without touching its status.
// It is a no-op when the reservation has no linked flight, which also
// makes a second reverse of the same reservation a no-op. Past the
// pre-departure cutoff the operation is rejected outright.
func (s *ReservationService) Reverse(ctx context.Context, reservationID int64) error {
	flight, err := s.reservations.FlightByReservation(ctx, reservationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	if !flight.DepartureTime.After(s.now().Add(s.reverseCutoff)) {
		return domain.NewValidationError("reservation can only be reversed up to 1 hour before departure")
	}

	if err := s.reservations.DeleteItineraryLegs(ctx, reservationID); err != nil {
		return err
	}

	s.publish(ctx, kafka.EventReservationReversed, &domain.ItineraryReservation{ReservationID: reservationID}, flight.FlightNumber, 0)
	return nil
}

func (s *ReservationService) List(ctx context.Context, customerID int64, page, size int) (*Page, error) {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 20
	}
	reservations, total, err := s.reservations.ListByCustomer(ctx, customerID, size, page*size)
	if err != nil {
		return nil, err
	}
	return &Page{Reservations: reservations, Total: total}, nil
}

func (s *ReservationService) publish(ctx context.Context, eventType string, reservation *domain.ItineraryReservation, flightNumber, amountCents int64) {
	if s.producer == nil || s.reservationsTopic == "" {
		return
	}
	event := kafka.ReservationEvent{
		EventID:         uuid.NewString(),
		Type:            eventType,
		ReservationID:   reservation.ReservationID,
		FlightNumber:    flightNumber,
		PassengerID:     reservation.PassengerID,
		TravelClassCode: string(reservation.TravelClassCode),
		Status:          string(reservation.Status),
		AmountCents:     amountCents,
		OccurredAt:      s.now(),
	}
	key := strconv.FormatInt(reservation.ReservationID, 10)
	if err := s.producer.Publish(ctx, s.reservationsTopic, key, event); err != nil {
		s.log.WithError(err).WithField("event", eventType).Warn("failed to publish reservation event")
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			s.log.WithError(err).WithField("event", eventType).Warn("failed to publish notification event")
		}
	}
}

var _ ReservationUseCase = (*ReservationService)(nil)
