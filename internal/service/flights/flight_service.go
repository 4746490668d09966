package flights

import (
	"context"
	"iter"
	"time"

	"github.com/ccrew/flightinventory/internal/domain"
	"github.com/ccrew/flightinventory/internal/repository"
)

type FlightUseCase interface {
	Add(ctx context.Context, input AddFlightInput) (*domain.FlightSchedule, error)
	Get(ctx context.Context, flightNumber int64) (*FlightDetails, error)
	Delete(ctx context.Context, flightNumber int64) error
	AddLeg(ctx context.Context, input AddLegInput) (*domain.Leg, error)
	ListAvailableOneWay(ctx context.Context, originCity, destinationCity string, date time.Time) iter.Seq2[domain.OneWayOffer, error]
}

// AvailabilityLister supplies the bookable classes of a flight.
type AvailabilityLister interface {
	AvailableClasses(ctx context.Context, flightNumber int64) ([]domain.TravelClassOffer, error)
}

// OfferCache keeps one-way search results.
type OfferCache interface {
	GetOneWayOffers(ctx context.Context, originCity, destinationCity string, date time.Time) ([]domain.OneWayOffer, error)
	SetOneWayOffers(ctx context.Context, originCity, destinationCity string, date time.Time, offers []domain.OneWayOffer) error
}

type AddFlightInput struct {
	OriginAirportCode      string    `json:"origin_airport_code"`
	DestinationAirportCode string    `json:"destination_airport_code"`
	DepartureTime          time.Time `json:"departure_time"`
	ArrivalTime            time.Time `json:"arrival_time"`
}

type AddLegInput struct {
	FlightNumber        int64     `json:"flight_number"`
	OriginAirport       string    `json:"origin_airport"`
	DestinationAirport  string    `json:"destination_airport"`
	ActualDepartureTime time.Time `json:"actual_departure_time"`
	ActualArrivalTime   time.Time `json:"actual_arrival_time"`
}

type FlightDetails struct {
	Flight domain.FlightSchedule `json:"flight"`
	Legs   []domain.Leg          `json:"legs"`
}

type FlightService struct {
	repo         repository.FlightRepository
	availability AvailabilityLister
	cache        OfferCache
}

func NewFlightService(repo repository.FlightRepository, availability AvailabilityLister, cache OfferCache) *FlightService {
	return &FlightService{repo: repo, availability: availability, cache: cache}
}

func (s *FlightService) Add(ctx context.Context, input AddFlightInput) (*domain.FlightSchedule, error) {
	origin, err := s.repo.GetAirport(ctx, input.OriginAirportCode)
	if err != nil {
		return nil, err
	}
	destination, err := s.repo.GetAirport(ctx, input.DestinationAirportCode)
	if err != nil {
		return nil, err
	}

	if origin.Code == destination.Code {
		return nil, domain.NewValidationError("origin airport and destination airport can not be same")
	}
	if input.ArrivalTime.Before(input.DepartureTime) {
		return nil, domain.NewValidationError("arrival time must be after departure time")
	}

	flight := &domain.FlightSchedule{
		OriginAirportCode:      origin.Code,
		DestinationAirportCode: destination.Code,
		DepartureTime:          input.DepartureTime,
		ArrivalTime:            input.ArrivalTime,
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}
	return flight, nil
}

func (s *FlightService) Get(ctx context.Context, flightNumber int64) (*FlightDetails, error) {
	flight, err := s.repo.GetByNumber(ctx, flightNumber)
	if err != nil {
		return nil, err
	}
	legs, err := s.repo.Legs(ctx, flightNumber)
	if err != nil {
		return nil, err
	}
	return &FlightDetails{Flight: *flight, Legs: legs}, nil
}

func (s *FlightService) Delete(ctx context.Context, flightNumber int64) error {
	return s.repo.Delete(ctx, flightNumber)
}

func (s *FlightService) AddLeg(ctx context.Context, input AddLegInput) (*domain.Leg, error) {
	if input.OriginAirport == input.DestinationAirport {
		return nil, domain.NewValidationError("origin airport and destination airport can not be same")
	}
	exists, err := s.repo.LegExists(ctx, input.FlightNumber, input.OriginAirport, input.DestinationAirport)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewValidationError("leg with this details already exists")
	}
	if _, err := s.repo.GetByNumber(ctx, input.FlightNumber); err != nil {
		return nil, err
	}

	leg := &domain.Leg{
		FlightNumber:        input.FlightNumber,
		OriginAirport:       input.OriginAirport,
		DestinationAirport:  input.DestinationAirport,
		ActualDepartureTime: input.ActualDepartureTime,
		ActualArrivalTime:   input.ActualArrivalTime,
	}
	if err := s.repo.AddLeg(ctx, leg); err != nil {
		return nil, err
	}
	return leg, nil
}

// ListAvailableOneWay yields bookable flights between the two cities on
// the date, ordered by departure time ascending. Flights whose classes are
// all sold out are skipped. The sequence is restartable: ranging over it
// again replays the search. Per-flight availability is resolved during
// iteration, and a fully consumed uncached run is written back to the
// offer cache.
func (s *FlightService) ListAvailableOneWay(ctx context.Context, originCity, destinationCity string, date time.Time) iter.Seq2[domain.OneWayOffer, error] {
	return func(yield func(domain.OneWayOffer, error) bool) {
		if s.cache != nil {
			if cached, err := s.cache.GetOneWayOffers(ctx, originCity, destinationCity, date); err == nil && cached != nil {
				for _, offer := range cached {
					if !yield(offer, nil) {
						return
					}
				}
				return
			}
		}

		matches, err := s.repo.ListOneWay(ctx, originCity, destinationCity, date)
		if err != nil {
			yield(domain.OneWayOffer{}, err)
			return
		}

		collected := make([]domain.OneWayOffer, 0, len(matches))
		for _, flight := range matches {
			classes, err := s.availability.AvailableClasses(ctx, flight.FlightNumber)
			if err != nil {
				yield(domain.OneWayOffer{}, err)
				return
			}
			if len(classes) == 0 {
				continue
			}
			offer := domain.OneWayOffer{
				FlightNumber:           flight.FlightNumber,
				OriginAirportCode:      flight.OriginAirportCode,
				DestinationAirportCode: flight.DestinationAirportCode,
				DepartureTime:          flight.DepartureTime,
				ArrivalTime:            flight.ArrivalTime,
				Classes:                classes,
			}
			collected = append(collected, offer)
			if !yield(offer, nil) {
				return
			}
		}

		if s.cache != nil {
			_ = s.cache.SetOneWayOffers(ctx, originCity, destinationCity, date, collected)
		}
	}
}

var _ FlightUseCase = (*FlightService)(nil)
