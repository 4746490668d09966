package pricing

import (
	"context"
	"time"

	"github.com/ccrew/flightinventory/internal/domain"
	"github.com/ccrew/flightinventory/internal/repository"
)

// ClassFare is the resolved offer for one travel class on a flight: the
// seat total summed over every aircraft type serving the flight, and the
// fare of the first cost record that offered the class.
type ClassFare struct {
	TotalSeats int
	FareCents  int64
}

type ClassFares map[domain.TravelClassCode]ClassFare

// Resolver selects the cost records valid for a flight on a date and maps
// them onto per-class seat totals and fares.
type Resolver struct {
	fares repository.FareRepository
}

func NewResolver(fares repository.FareRepository) *Resolver {
	return &Resolver{fares: fares}
}

// ResolveFares returns the per-class fares and seat totals for the flight
// on the given date. An empty result means no fare is currently published
// for the flight; it is not an error, and callers must not read it as zero
// capacity being a fact about the aircraft.
//
// When the same class is offered by several aircraft types, seat totals
// accumulate but the fare of the first resolved cost record wins; cost
// records arrive in stable (valid_from, aircraft_type_code) order, so the
// pick is deterministic.
func (r *Resolver) ResolveFares(ctx context.Context, flightNumber int64, date time.Time) (ClassFares, error) {
	costs, err := r.fares.ValidCosts(ctx, flightNumber, date)
	if err != nil {
		return nil, err
	}

	fares := make(ClassFares)
	for _, cost := range costs {
		capacities, err := r.fares.CapacitiesByAircraftType(ctx, cost.AircraftTypeCode)
		if err != nil {
			return nil, err
		}
		for _, capacity := range capacities {
			entry, seen := fares[capacity.TravelClassCode]
			if !seen {
				entry.FareCents = cost.CostCents
			}
			entry.TotalSeats += capacity.SeatCapacity
			fares[capacity.TravelClassCode] = entry
		}
	}
	return fares, nil
}

// Quote resolves the fare and seat total for one travel class. A class no
// valid cost record offers yields ErrNotFound.
func (r *Resolver) Quote(ctx context.Context, flightNumber int64, class domain.TravelClassCode, date time.Time) (ClassFare, error) {
	fares, err := r.ResolveFares(ctx, flightNumber, date)
	if err != nil {
		return ClassFare{}, err
	}
	fare, ok := fares[class]
	if !ok {
		return ClassFare{}, domain.NewNotFoundError("flight cost for travel class " + string(class))
	}
	return fare, nil
}
