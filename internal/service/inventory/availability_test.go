package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/ccrew/flightinventory/internal/domain"
	"github.com/ccrew/flightinventory/internal/service/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockFareResolver struct {
	mock.Mock
}

func (m *MockFareResolver) ResolveFares(ctx context.Context, flightNumber int64, date time.Time) (pricing.ClassFares, error) {
	args := m.Called(ctx, flightNumber, date)
	return args.Get(0).(pricing.ClassFares), args.Error(1)
}

type MockLegCounter struct {
	mock.Mock
}

func (m *MockLegCounter) CountLegs(ctx context.Context, flightNumber int64) (int, error) {
	args := m.Called(ctx, flightNumber)
	return args.Int(0), args.Error(1)
}

type MockSeatCounter struct {
	mock.Mock
}

func (m *MockSeatCounter) ReservedSeatCounts(ctx context.Context, flightNumber int64, legCount int) ([]domain.ReservedSeatCount, error) {
	args := m.Called(ctx, flightNumber, legCount)
	return args.Get(0).([]domain.ReservedSeatCount), args.Error(1)
}

func newTestCalculator(fares *MockFareResolver, legs *MockLegCounter, seats *MockSeatCounter) *Calculator {
	c := NewCalculator(fares, legs, seats)
	c.now = func() time.Time { return time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC) }
	return c
}

func TestCalculator_ReservedSeats_PassesFullLegCount(t *testing.T) {
	fares := &MockFareResolver{}
	legs := &MockLegCounter{}
	seats := &MockSeatCounter{}
	calc := newTestCalculator(fares, legs, seats)

	ctx := context.Background()
	legs.On("CountLegs", ctx, int64(1)).Return(3, nil).Once()
	seats.On("ReservedSeatCounts", ctx, int64(1), 3).Return([]domain.ReservedSeatCount{
		{TravelClassCode: domain.TravelClassEconomy, ReservedSeats: 2},
	}, nil).Once()

	reserved, err := calc.ReservedSeats(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, 2, reserved[domain.TravelClassEconomy])
	seats.AssertExpectations(t)
}

func TestCalculator_CheckAvailability_EqualityBlocks(t *testing.T) {
	fares := &MockFareResolver{}
	legs := &MockLegCounter{}
	seats := &MockSeatCounter{}
	calc := newTestCalculator(fares, legs, seats)

	ctx := context.Background()
	legs.On("CountLegs", ctx, int64(1)).Return(1, nil)
	seats.On("ReservedSeatCounts", ctx, int64(1), 1).Return([]domain.ReservedSeatCount{
		{TravelClassCode: domain.TravelClassEconomy, ReservedSeats: 2},
	}, nil)
	fares.On("ResolveFares", ctx, int64(1), mock.Anything).Return(pricing.ClassFares{
		domain.TravelClassEconomy: {TotalSeats: 2, FareCents: 10000},
	}, nil)

	err := calc.CheckAvailability(ctx, 1, domain.TravelClassEconomy)

	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
}

func TestCalculator_CheckAvailability_LastSeatAdmits(t *testing.T) {
	fares := &MockFareResolver{}
	legs := &MockLegCounter{}
	seats := &MockSeatCounter{}
	calc := newTestCalculator(fares, legs, seats)

	ctx := context.Background()
	legs.On("CountLegs", ctx, int64(1)).Return(1, nil)
	seats.On("ReservedSeatCounts", ctx, int64(1), 1).Return([]domain.ReservedSeatCount{
		{TravelClassCode: domain.TravelClassEconomy, ReservedSeats: 1},
	}, nil)
	fares.On("ResolveFares", ctx, int64(1), mock.Anything).Return(pricing.ClassFares{
		domain.TravelClassEconomy: {TotalSeats: 2, FareCents: 10000},
	}, nil)

	err := calc.CheckAvailability(ctx, 1, domain.TravelClassEconomy)

	assert.NoError(t, err)
}

func TestCalculator_CheckAvailability_FailsClosedWithoutFare(t *testing.T) {
	fares := &MockFareResolver{}
	legs := &MockLegCounter{}
	seats := &MockSeatCounter{}
	calc := newTestCalculator(fares, legs, seats)

	ctx := context.Background()
	legs.On("CountLegs", ctx, int64(1)).Return(1, nil)
	seats.On("ReservedSeatCounts", ctx, int64(1), 1).Return([]domain.ReservedSeatCount{}, nil)
	fares.On("ResolveFares", ctx, int64(1), mock.Anything).Return(pricing.ClassFares{}, nil)

	err := calc.CheckAvailability(ctx, 1, domain.TravelClassEconomy)

	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
}

func TestCalculator_AvailableClasses_OmitsExhausted(t *testing.T) {
	fares := &MockFareResolver{}
	legs := &MockLegCounter{}
	seats := &MockSeatCounter{}
	calc := newTestCalculator(fares, legs, seats)

	ctx := context.Background()
	legs.On("CountLegs", ctx, int64(1)).Return(1, nil)
	seats.On("ReservedSeatCounts", ctx, int64(1), 1).Return([]domain.ReservedSeatCount{
		{TravelClassCode: domain.TravelClassEconomy, ReservedSeats: 100},
		{TravelClassCode: domain.TravelClassBusiness, ReservedSeats: 5},
	}, nil)
	fares.On("ResolveFares", ctx, int64(1), mock.Anything).Return(pricing.ClassFares{
		domain.TravelClassEconomy:  {TotalSeats: 100, FareCents: 10000},
		domain.TravelClassBusiness: {TotalSeats: 12, FareCents: 45000},
	}, nil)

	offers, err := calc.AvailableClasses(ctx, 1)

	assert.NoError(t, err)
	assert.Len(t, offers, 1)
	assert.Equal(t, domain.TravelClassBusiness, offers[0].TravelClassCode)
	assert.Equal(t, 7, offers[0].AvailableSeats)
	assert.Equal(t, int64(45000), offers[0].FareCents)
}
