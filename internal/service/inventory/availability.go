package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/ccrew/flightinventory/internal/domain"
	"github.com/ccrew/flightinventory/internal/service/pricing"
)

// FareResolver supplies per-class seat totals and fares for a flight on a
// date. Implemented by pricing.Resolver.
type FareResolver interface {
	ResolveFares(ctx context.Context, flightNumber int64, date time.Time) (pricing.ClassFares, error)
}

// LegCounter supplies the number of legs a flight is flown in.
type LegCounter interface {
	CountLegs(ctx context.Context, flightNumber int64) (int, error)
}

// SeatCounter supplies reserved-seat counts per travel class, counting
// only reservations that link every leg of the flight.
type SeatCounter interface {
	ReservedSeatCounts(ctx context.Context, flightNumber int64, legCount int) ([]domain.ReservedSeatCount, error)
}

// Calculator derives per-class seat availability by combining resolved
// capacity with committed reservations.
type Calculator struct {
	fares FareResolver
	legs  LegCounter
	seats SeatCounter
	now   func() time.Time
}

func NewCalculator(fares FareResolver, legs LegCounter, seats SeatCounter) *Calculator {
	return &Calculator{fares: fares, legs: legs, seats: seats, now: time.Now}
}

// ReservedSeats returns the seats currently held per travel class.
func (c *Calculator) ReservedSeats(ctx context.Context, flightNumber int64) (map[domain.TravelClassCode]int, error) {
	legCount, err := c.legs.CountLegs(ctx, flightNumber)
	if err != nil {
		return nil, err
	}
	counts, err := c.seats.ReservedSeatCounts(ctx, flightNumber, legCount)
	if err != nil {
		return nil, err
	}
	reserved := make(map[domain.TravelClassCode]int, len(counts))
	for _, count := range counts {
		reserved[count.TravelClassCode] = count.ReservedSeats
	}
	return reserved, nil
}

// CheckAvailability fails with ErrCapacityExceeded when no seat is free in
// the class. The total seat count is the hard ceiling: reserved == total
// already blocks the next booking. A flight with no valid cost record has
// a total of zero, so the check fails closed on missing pricing data.
func (c *Calculator) CheckAvailability(ctx context.Context, flightNumber int64, class domain.TravelClassCode) error {
	reserved, err := c.ReservedSeats(ctx, flightNumber)
	if err != nil {
		return err
	}

	fares, err := c.fares.ResolveFares(ctx, flightNumber, c.now())
	if err != nil {
		return err
	}

	if reserved[class] >= fares[class].TotalSeats {
		return domain.NewCapacityExceededError(class)
	}
	return nil
}

// AvailableClasses returns the classes still bookable on the flight with
// their fares and free-seat counts, sorted by class code. Classes with no
// free seat are omitted, never returned as zero or negative entries.
func (c *Calculator) AvailableClasses(ctx context.Context, flightNumber int64) ([]domain.TravelClassOffer, error) {
	reserved, err := c.ReservedSeats(ctx, flightNumber)
	if err != nil {
		return nil, err
	}

	fares, err := c.fares.ResolveFares(ctx, flightNumber, c.now())
	if err != nil {
		return nil, err
	}

	offers := make([]domain.TravelClassOffer, 0, len(fares))
	for class, fare := range fares {
		available := fare.TotalSeats - reserved[class]
		if available < 1 {
			continue
		}
		offers = append(offers, domain.TravelClassOffer{
			TravelClassCode: class,
			FareCents:       fare.FareCents,
			AvailableSeats:  available,
		})
	}
	sort.Slice(offers, func(i, j int) bool { return offers[i].TravelClassCode < offers[j].TravelClassCode })
	return offers, nil
}
