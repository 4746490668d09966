package repository

import (
	"context"
	"time"

	"github.com/ccrew/flightinventory/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FareRepository interface {
	ValidCosts(ctx context.Context, flightNumber int64, date time.Time) ([]domain.FlightCost, error)
	CapacitiesByAircraftType(ctx context.Context, aircraftTypeCode string) ([]domain.TravelClassCapacity, error)
}

type PGFareRepository struct {
	db *pgxpool.Pool
}

func NewFareRepository(db *pgxpool.Pool) FareRepository {
	return &PGFareRepository{db: db}
}

// ValidCosts returns the flight's cost records whose validity window
// contains the date, in stable (valid_from, aircraft_type_code) order so
// that fare tie-breaking downstream is deterministic. An empty result is
// not an error: it means no fare is currently published.
func (r *PGFareRepository) ValidCosts(ctx context.Context, flightNumber int64, date time.Time) ([]domain.FlightCost, error) {
	rows, err := r.db.Query(ctx, `SELECT flight_number, aircraft_type_code, valid_from, valid_to, cost_cents
		FROM flight_costs
		WHERE flight_number=$1 AND $2::date BETWEEN valid_from AND valid_to
		ORDER BY valid_from, aircraft_type_code`, flightNumber, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	costs := make([]domain.FlightCost, 0)
	for rows.Next() {
		var c domain.FlightCost
		if err := rows.Scan(&c.FlightNumber, &c.AircraftTypeCode, &c.ValidFrom, &c.ValidTo, &c.CostCents); err != nil {
			return nil, err
		}
		costs = append(costs, c)
	}
	return costs, rows.Err()
}

func (r *PGFareRepository) CapacitiesByAircraftType(ctx context.Context, aircraftTypeCode string) ([]domain.TravelClassCapacity, error) {
	rows, err := r.db.Query(ctx, `SELECT aircraft_type_code, travel_class_code, seat_capacity
		FROM travel_class_capacities WHERE aircraft_type_code=$1 ORDER BY travel_class_code`, aircraftTypeCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	capacities := make([]domain.TravelClassCapacity, 0)
	for rows.Next() {
		var c domain.TravelClassCapacity
		if err := rows.Scan(&c.AircraftTypeCode, &c.TravelClassCode, &c.SeatCapacity); err != nil {
			return nil, err
		}
		capacities = append(capacities, c)
	}
	return capacities, rows.Err()
}

var _ FareRepository = (*PGFareRepository)(nil)
