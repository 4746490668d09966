package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ccrew/flightinventory/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.FlightSchedule) error
	GetByNumber(ctx context.Context, flightNumber int64) (*domain.FlightSchedule, error)
	Delete(ctx context.Context, flightNumber int64) error
	GetAirport(ctx context.Context, code string) (*domain.Airport, error)
	Legs(ctx context.Context, flightNumber int64) ([]domain.Leg, error)
	CountLegs(ctx context.Context, flightNumber int64) (int, error)
	LegExists(ctx context.Context, flightNumber int64, origin, destination string) (bool, error)
	AddLeg(ctx context.Context, leg *domain.Leg) error
	ListOneWay(ctx context.Context, originCity, destinationCity string, date time.Time) ([]domain.FlightSchedule, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.FlightSchedule) error {
	return r.db.QueryRow(ctx, `INSERT INTO flight_schedules (origin_airport_code, destination_airport_code, departure_time, arrival_time)
		VALUES ($1, $2, $3, $4)
		RETURNING flight_number, created_at, updated_at`,
		flight.OriginAirportCode, flight.DestinationAirportCode, flight.DepartureTime, flight.ArrivalTime).
		Scan(&flight.FlightNumber, &flight.CreatedAt, &flight.UpdatedAt)
}

func (r *PGFlightRepository) GetByNumber(ctx context.Context, flightNumber int64) (*domain.FlightSchedule, error) {
	row := r.db.QueryRow(ctx, `SELECT flight_number, origin_airport_code, destination_airport_code, departure_time, arrival_time, created_at, updated_at
		FROM flight_schedules WHERE flight_number=$1`, flightNumber)
	var f domain.FlightSchedule
	if err := row.Scan(&f.FlightNumber, &f.OriginAirportCode, &f.DestinationAirportCode, &f.DepartureTime, &f.ArrivalTime, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("flight schedule")
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, flightNumber int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM flight_schedules WHERE flight_number=$1`, flightNumber)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFoundError("flight schedule")
	}
	return nil
}

func (r *PGFlightRepository) GetAirport(ctx context.Context, code string) (*domain.Airport, error) {
	row := r.db.QueryRow(ctx, `SELECT code, name, city FROM airports WHERE code=$1`, code)
	var a domain.Airport
	if err := row.Scan(&a.Code, &a.Name, &a.City); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("airport " + code)
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGFlightRepository) Legs(ctx context.Context, flightNumber int64) ([]domain.Leg, error) {
	rows, err := r.db.Query(ctx, `SELECT leg_id, flight_number, origin_airport, destination_airport, actual_departure_time, actual_arrival_time
		FROM legs WHERE flight_number=$1 ORDER BY actual_departure_time`, flightNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	legs := make([]domain.Leg, 0)
	for rows.Next() {
		var l domain.Leg
		if err := rows.Scan(&l.LegID, &l.FlightNumber, &l.OriginAirport, &l.DestinationAirport, &l.ActualDepartureTime, &l.ActualArrivalTime); err != nil {
			return nil, err
		}
		legs = append(legs, l)
	}
	return legs, rows.Err()
}

func (r *PGFlightRepository) CountLegs(ctx context.Context, flightNumber int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM legs WHERE flight_number=$1`, flightNumber).Scan(&n)
	return n, err
}

func (r *PGFlightRepository) LegExists(ctx context.Context, flightNumber int64, origin, destination string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM legs WHERE flight_number=$1 AND origin_airport=$2 AND destination_airport=$3)`,
		flightNumber, origin, destination).Scan(&exists)
	return exists, err
}

func (r *PGFlightRepository) AddLeg(ctx context.Context, leg *domain.Leg) error {
	return r.db.QueryRow(ctx, `INSERT INTO legs (flight_number, origin_airport, destination_airport, actual_departure_time, actual_arrival_time)
		VALUES ($1, $2, $3, $4, $5) RETURNING leg_id`,
		leg.FlightNumber, leg.OriginAirport, leg.DestinationAirport, leg.ActualDepartureTime, leg.ActualArrivalTime).
		Scan(&leg.LegID)
}

// ListOneWay returns flights departing on the given date between the two
// cities, restricted to flights that actually reach the destination with a
// leg and carry a cost record valid on that date, ordered by departure
// time ascending.
func (r *PGFlightRepository) ListOneWay(ctx context.Context, originCity, destinationCity string, date time.Time) ([]domain.FlightSchedule, error) {
	rows, err := r.db.Query(ctx, `SELECT fs.flight_number, fs.origin_airport_code, fs.destination_airport_code, fs.departure_time, fs.arrival_time, fs.created_at, fs.updated_at
		FROM flight_schedules fs
		JOIN airports o ON o.code = fs.origin_airport_code
		JOIN airports d ON d.code = fs.destination_airport_code
		WHERE o.city = $1
		  AND d.city = $2
		  AND fs.departure_time::date = $3::date
		  AND EXISTS (SELECT 1 FROM legs l
		               WHERE l.flight_number = fs.flight_number
		                 AND l.destination_airport = fs.destination_airport_code)
		  AND EXISTS (SELECT 1 FROM flight_costs c
		               WHERE c.flight_number = fs.flight_number
		                 AND $3::date BETWEEN c.valid_from AND c.valid_to)
		ORDER BY fs.departure_time`, originCity, destinationCity, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.FlightSchedule, 0)
	for rows.Next() {
		var f domain.FlightSchedule
		if err := rows.Scan(&f.FlightNumber, &f.OriginAirportCode, &f.DestinationAirportCode, &f.DepartureTime, &f.ArrivalTime, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)
