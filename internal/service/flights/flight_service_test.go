package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ccrew/flightinventory/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) Create(ctx context.Context, flight *domain.FlightSchedule) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockFlightRepository) GetByNumber(ctx context.Context, flightNumber int64) (*domain.FlightSchedule, error) {
	args := m.Called(ctx, flightNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightSchedule), args.Error(1)
}

func (m *MockFlightRepository) Delete(ctx context.Context, flightNumber int64) error {
	args := m.Called(ctx, flightNumber)
	return args.Error(0)
}

func (m *MockFlightRepository) GetAirport(ctx context.Context, code string) (*domain.Airport, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Airport), args.Error(1)
}

func (m *MockFlightRepository) Legs(ctx context.Context, flightNumber int64) ([]domain.Leg, error) {
	args := m.Called(ctx, flightNumber)
	return args.Get(0).([]domain.Leg), args.Error(1)
}

func (m *MockFlightRepository) CountLegs(ctx context.Context, flightNumber int64) (int, error) {
	args := m.Called(ctx, flightNumber)
	return args.Int(0), args.Error(1)
}

func (m *MockFlightRepository) LegExists(ctx context.Context, flightNumber int64, origin, destination string) (bool, error) {
	args := m.Called(ctx, flightNumber, origin, destination)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlightRepository) AddLeg(ctx context.Context, leg *domain.Leg) error {
	args := m.Called(ctx, leg)
	return args.Error(0)
}

func (m *MockFlightRepository) ListOneWay(ctx context.Context, originCity, destinationCity string, date time.Time) ([]domain.FlightSchedule, error) {
	args := m.Called(ctx, originCity, destinationCity, date)
	return args.Get(0).([]domain.FlightSchedule), args.Error(1)
}

type MockAvailabilityLister struct {
	mock.Mock
}

func (m *MockAvailabilityLister) AvailableClasses(ctx context.Context, flightNumber int64) ([]domain.TravelClassOffer, error) {
	args := m.Called(ctx, flightNumber)
	return args.Get(0).([]domain.TravelClassOffer), args.Error(1)
}

type MockOfferCache struct {
	mock.Mock
}

func (m *MockOfferCache) GetOneWayOffers(ctx context.Context, originCity, destinationCity string, date time.Time) ([]domain.OneWayOffer, error) {
	args := m.Called(ctx, originCity, destinationCity, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OneWayOffer), args.Error(1)
}

func (m *MockOfferCache) SetOneWayOffers(ctx context.Context, originCity, destinationCity string, date time.Time, offers []domain.OneWayOffer) error {
	args := m.Called(ctx, originCity, destinationCity, date, offers)
	return args.Error(0)
}

var (
	searchDate = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	departure  = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
)

func validFlightInput() AddFlightInput {
	return AddFlightInput{
		OriginAirportCode:      "TAS",
		DestinationAirportCode: "IST",
		DepartureTime:          departure,
		ArrivalTime:            departure.Add(4 * time.Hour),
	}
}

func TestFlightService_Add_Success(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, &MockAvailabilityLister{}, nil)
	ctx := context.Background()

	repo.On("GetAirport", ctx, "TAS").Return(&domain.Airport{Code: "TAS", City: "Tashkent"}, nil).Once()
	repo.On("GetAirport", ctx, "IST").Return(&domain.Airport{Code: "IST", City: "Istanbul"}, nil).Once()
	repo.On("Create", ctx, mock.MatchedBy(func(f *domain.FlightSchedule) bool {
		return f.OriginAirportCode == "TAS" && f.DestinationAirportCode == "IST"
	})).Return(nil).Once()

	flight, err := service.Add(ctx, validFlightInput())

	assert.NoError(t, err)
	assert.Equal(t, "TAS", flight.OriginAirportCode)
	repo.AssertExpectations(t)
}

func TestFlightService_Add_UnknownAirport(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, &MockAvailabilityLister{}, nil)
	ctx := context.Background()

	repo.On("GetAirport", ctx, "TAS").Return(nil, domain.NewNotFoundError("airport")).Once()

	_, err := service.Add(ctx, validFlightInput())

	assert.ErrorIs(t, err, domain.ErrNotFound)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFlightService_Add_SameAirports(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, &MockAvailabilityLister{}, nil)
	ctx := context.Background()

	repo.On("GetAirport", ctx, "TAS").Return(&domain.Airport{Code: "TAS"}, nil).Twice()

	input := validFlightInput()
	input.DestinationAirportCode = "TAS"
	_, err := service.Add(ctx, input)

	assert.ErrorIs(t, err, domain.ErrValidation)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFlightService_Add_ArrivalBeforeDeparture(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, &MockAvailabilityLister{}, nil)
	ctx := context.Background()

	repo.On("GetAirport", ctx, "TAS").Return(&domain.Airport{Code: "TAS"}, nil).Once()
	repo.On("GetAirport", ctx, "IST").Return(&domain.Airport{Code: "IST"}, nil).Once()

	input := validFlightInput()
	input.ArrivalTime = input.DepartureTime.Add(-time.Hour)
	_, err := service.Add(ctx, input)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFlightService_Get(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, &MockAvailabilityLister{}, nil)
	ctx := context.Background()

	repo.On("GetByNumber", ctx, int64(7)).Return(&domain.FlightSchedule{FlightNumber: 7}, nil).Once()
	repo.On("Legs", ctx, int64(7)).Return([]domain.Leg{{LegID: 1}, {LegID: 2}}, nil).Once()

	details, err := service.Get(ctx, 7)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), details.Flight.FlightNumber)
	assert.Len(t, details.Legs, 2)
}

func TestFlightService_AddLeg_DuplicateRejected(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, &MockAvailabilityLister{}, nil)
	ctx := context.Background()

	repo.On("LegExists", ctx, int64(7), "TAS", "IST").Return(true, nil).Once()

	_, err := service.AddLeg(ctx, AddLegInput{FlightNumber: 7, OriginAirport: "TAS", DestinationAirport: "IST"})

	assert.ErrorIs(t, err, domain.ErrValidation)
	repo.AssertNotCalled(t, "AddLeg", mock.Anything, mock.Anything)
}

func TestFlightService_AddLeg_SameAirports(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, &MockAvailabilityLister{}, nil)

	_, err := service.AddLeg(context.Background(), AddLegInput{FlightNumber: 7, OriginAirport: "TAS", DestinationAirport: "TAS"})

	assert.ErrorIs(t, err, domain.ErrValidation)
	repo.AssertNotCalled(t, "LegExists", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_AddLeg_Success(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, &MockAvailabilityLister{}, nil)
	ctx := context.Background()

	repo.On("LegExists", ctx, int64(7), "TAS", "IST").Return(false, nil).Once()
	repo.On("GetByNumber", ctx, int64(7)).Return(&domain.FlightSchedule{FlightNumber: 7}, nil).Once()
	repo.On("AddLeg", ctx, mock.MatchedBy(func(l *domain.Leg) bool {
		return l.FlightNumber == 7 && l.OriginAirport == "TAS" && l.DestinationAirport == "IST"
	})).Return(nil).Once()

	leg, err := service.AddLeg(ctx, AddLegInput{FlightNumber: 7, OriginAirport: "TAS", DestinationAirport: "IST"})

	assert.NoError(t, err)
	assert.Equal(t, int64(7), leg.FlightNumber)
	repo.AssertExpectations(t)
}

func collectOffers(t *testing.T, seq func(func(domain.OneWayOffer, error) bool)) []domain.OneWayOffer {
	t.Helper()
	var offers []domain.OneWayOffer
	for offer, err := range seq {
		assert.NoError(t, err)
		offers = append(offers, offer)
	}
	return offers
}

func TestFlightService_ListAvailableOneWay_SkipsSoldOutFlights(t *testing.T) {
	repo := &MockFlightRepository{}
	availability := &MockAvailabilityLister{}
	service := NewFlightService(repo, availability, nil)
	ctx := context.Background()

	repo.On("ListOneWay", ctx, "Tashkent", "Istanbul", searchDate).Return([]domain.FlightSchedule{
		{FlightNumber: 7, OriginAirportCode: "TAS", DestinationAirportCode: "IST", DepartureTime: departure},
		{FlightNumber: 8, OriginAirportCode: "TAS", DestinationAirportCode: "IST", DepartureTime: departure.Add(2 * time.Hour)},
	}, nil).Once()
	availability.On("AvailableClasses", ctx, int64(7)).Return([]domain.TravelClassOffer{}, nil).Once()
	availability.On("AvailableClasses", ctx, int64(8)).Return([]domain.TravelClassOffer{
		{TravelClassCode: domain.TravelClassEconomy, FareCents: 10000, AvailableSeats: 12},
	}, nil).Once()

	offers := collectOffers(t, service.ListAvailableOneWay(ctx, "Tashkent", "Istanbul", searchDate))

	assert.Len(t, offers, 1)
	assert.Equal(t, int64(8), offers[0].FlightNumber)
	assert.Equal(t, 12, offers[0].Classes[0].AvailableSeats)
}

func TestFlightService_ListAvailableOneWay_CacheHitSkipsRepository(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockOfferCache{}
	service := NewFlightService(repo, &MockAvailabilityLister{}, cache)
	ctx := context.Background()

	cached := []domain.OneWayOffer{{FlightNumber: 7}, {FlightNumber: 8}}
	cache.On("GetOneWayOffers", ctx, "Tashkent", "Istanbul", searchDate).Return(cached, nil).Once()

	offers := collectOffers(t, service.ListAvailableOneWay(ctx, "Tashkent", "Istanbul", searchDate))

	assert.Len(t, offers, 2)
	repo.AssertNotCalled(t, "ListOneWay", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_ListAvailableOneWay_FullConsumptionWritesCache(t *testing.T) {
	repo := &MockFlightRepository{}
	availability := &MockAvailabilityLister{}
	cache := &MockOfferCache{}
	service := NewFlightService(repo, availability, cache)
	ctx := context.Background()

	cache.On("GetOneWayOffers", ctx, "Tashkent", "Istanbul", searchDate).
		Return(nil, errors.New("redis down")).Once()
	repo.On("ListOneWay", ctx, "Tashkent", "Istanbul", searchDate).Return([]domain.FlightSchedule{
		{FlightNumber: 7, DepartureTime: departure},
	}, nil).Once()
	availability.On("AvailableClasses", ctx, int64(7)).Return([]domain.TravelClassOffer{
		{TravelClassCode: domain.TravelClassBusiness, FareCents: 40000, AvailableSeats: 4},
	}, nil).Once()
	cache.On("SetOneWayOffers", ctx, "Tashkent", "Istanbul", searchDate, mock.MatchedBy(func(offers []domain.OneWayOffer) bool {
		return len(offers) == 1 && offers[0].FlightNumber == 7
	})).Return(nil).Once()

	offers := collectOffers(t, service.ListAvailableOneWay(ctx, "Tashkent", "Istanbul", searchDate))

	assert.Len(t, offers, 1)
	cache.AssertExpectations(t)
}

func TestFlightService_ListAvailableOneWay_EarlyBreakSkipsCacheWrite(t *testing.T) {
	repo := &MockFlightRepository{}
	availability := &MockAvailabilityLister{}
	cache := &MockOfferCache{}
	service := NewFlightService(repo, availability, cache)
	ctx := context.Background()

	cache.On("GetOneWayOffers", ctx, "Tashkent", "Istanbul", searchDate).
		Return(nil, errors.New("redis down")).Once()
	repo.On("ListOneWay", ctx, "Tashkent", "Istanbul", searchDate).Return([]domain.FlightSchedule{
		{FlightNumber: 7, DepartureTime: departure},
		{FlightNumber: 8, DepartureTime: departure.Add(time.Hour)},
	}, nil).Once()
	availability.On("AvailableClasses", ctx, int64(7)).Return([]domain.TravelClassOffer{
		{TravelClassCode: domain.TravelClassEconomy, AvailableSeats: 1},
	}, nil).Once()

	for range service.ListAvailableOneWay(ctx, "Tashkent", "Istanbul", searchDate) {
		break
	}

	cache.AssertNotCalled(t, "SetOneWayOffers", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	availability.AssertNotCalled(t, "AvailableClasses", mock.Anything, int64(8))
}

// Ranging over the sequence a second time must replay the search rather
// than return a drained iterator.
func TestFlightService_ListAvailableOneWay_Restartable(t *testing.T) {
	repo := &MockFlightRepository{}
	availability := &MockAvailabilityLister{}
	service := NewFlightService(repo, availability, nil)
	ctx := context.Background()

	repo.On("ListOneWay", ctx, "Tashkent", "Istanbul", searchDate).Return([]domain.FlightSchedule{
		{FlightNumber: 7, DepartureTime: departure},
	}, nil).Twice()
	availability.On("AvailableClasses", ctx, int64(7)).Return([]domain.TravelClassOffer{
		{TravelClassCode: domain.TravelClassEconomy, AvailableSeats: 3},
	}, nil).Twice()

	seq := service.ListAvailableOneWay(ctx, "Tashkent", "Istanbul", searchDate)

	assert.Len(t, collectOffers(t, seq), 1)
	assert.Len(t, collectOffers(t, seq), 1)
	repo.AssertExpectations(t)
}

func TestFlightService_ListAvailableOneWay_RepositoryError(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, &MockAvailabilityLister{}, nil)
	ctx := context.Background()

	repo.On("ListOneWay", ctx, "Tashkent", "Istanbul", searchDate).
		Return([]domain.FlightSchedule{}, errors.New("connection refused")).Once()

	var errs []error
	for _, err := range service.ListAvailableOneWay(ctx, "Tashkent", "Istanbul", searchDate) {
		errs = append(errs, err)
	}

	assert.Len(t, errs, 1)
	assert.Error(t, errs[0])
}
