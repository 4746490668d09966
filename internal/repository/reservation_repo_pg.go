package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ccrew/flightinventory/internal/domain"
	"github.com/ccrew/flightinventory/internal/tracing"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// reservedSeatsSQL counts seats held per travel class by CREATED
// reservations that link every leg of the flight. Partially linked
// reservations never count.
const reservedSeatsSQL = `SELECT t.travel_class_code, count(*) FROM (
		SELECT r.reservation_id, r.travel_class_code
		FROM itinerary_reservations r
		JOIN itinerary_legs il ON il.reservation_id = r.reservation_id
		JOIN legs l ON l.leg_id = il.leg_id AND l.flight_number = $1
		WHERE r.reservation_status_code = 'CREATED'
		GROUP BY r.reservation_id, r.travel_class_code
		HAVING count(il.leg_id) = $2
	) t GROUP BY t.travel_class_code`

type CreateItineraryParams struct {
	FlightNumber    int64
	PassengerID     int64
	TicketTypeCode  domain.TicketTypeCode
	TravelClassCode domain.TravelClassCode
	LegIDs          []int64
	// TotalSeats is the class capacity resolved from the currently valid
	// cost records; the commit re-counts reserved seats against it inside
	// the transaction.
	TotalSeats int
	FareCents  int64
	Now        time.Time
}

type ReservationRepository interface {
	CreateItinerary(ctx context.Context, p CreateItineraryParams) (*domain.ItineraryReservation, *domain.Payment, error)
	GetByID(ctx context.Context, reservationID int64) (*domain.ItineraryReservation, error)
	CancelItinerary(ctx context.Context, reservationID int64) (*domain.ItineraryReservation, error)
	DeleteItineraryLegs(ctx context.Context, reservationID int64) error
	ReservedSeatCounts(ctx context.Context, flightNumber int64, legCount int) ([]domain.ReservedSeatCount, error)
	FlightByReservation(ctx context.Context, reservationID int64) (*domain.FlightSchedule, error)
	ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.ItineraryReservation, int64, error)
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

// CreateItinerary commits the reservation, its leg links, the payment and
// the reservation-payment link as one serializable transaction, then
// re-counts reserved seats for the class while still inside it. A count
// above TotalSeats rolls everything back with ErrCapacityExceeded; a lost
// serialization race surfaces as ErrSerialization for the caller to retry.
func (r *PGReservationRepository) CreateItinerary(ctx context.Context, p CreateItineraryParams) (*domain.ItineraryReservation, *domain.Payment, error) {
	ctx, span := tracing.Start(ctx, "repository.create_itinerary")
	defer span.End()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	reservation := &domain.ItineraryReservation{
		PassengerID:     p.PassengerID,
		Status:          domain.ReservationStatusCreated,
		TicketTypeCode:  p.TicketTypeCode,
		TravelClassCode: p.TravelClassCode,
		DateMade:        p.Now,
	}
	if err := tx.QueryRow(ctx, `INSERT INTO itinerary_reservations (passenger_id, reservation_status_code, ticket_type_code, travel_class_code, date_reservation_made)
		VALUES ($1, $2, $3, $4, $5) RETURNING reservation_id`,
		p.PassengerID, reservation.Status, p.TicketTypeCode, p.TravelClassCode, p.Now).
		Scan(&reservation.ReservationID); err != nil {
		return nil, nil, mapTxError(err)
	}

	for _, legID := range p.LegIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO itinerary_legs (reservation_id, leg_id) VALUES ($1, $2)`,
			reservation.ReservationID, legID); err != nil {
			return nil, nil, mapTxError(err)
		}
	}

	payment := &domain.Payment{
		AmountCents: p.FareCents,
		Status:      domain.PaymentStatusCreated,
		CreatedAt:   p.Now,
	}
	if err := tx.QueryRow(ctx, `INSERT INTO payments (amount_cents, payment_status_code, created_at)
		VALUES ($1, $2, $3) RETURNING payment_id`,
		payment.AmountCents, payment.Status, p.Now).
		Scan(&payment.PaymentID); err != nil {
		return nil, nil, mapTxError(err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO reservation_payments (reservation_id, payment_id) VALUES ($1, $2)`,
		reservation.ReservationID, payment.PaymentID); err != nil {
		return nil, nil, mapTxError(err)
	}

	var reserved int
	err = tx.QueryRow(ctx, `SELECT coalesce(sum(t.c), 0) FROM (`+
		`SELECT count(*) AS c FROM ( `+
		`SELECT r.reservation_id FROM itinerary_reservations r `+
		`JOIN itinerary_legs il ON il.reservation_id = r.reservation_id `+
		`JOIN legs l ON l.leg_id = il.leg_id AND l.flight_number = $1 `+
		`WHERE r.reservation_status_code = 'CREATED' AND r.travel_class_code = $2 `+
		`GROUP BY r.reservation_id HAVING count(il.leg_id) = $3) s) t`,
		p.FlightNumber, p.TravelClassCode, len(p.LegIDs)).Scan(&reserved)
	if err != nil {
		return nil, nil, mapTxError(err)
	}
	if reserved > p.TotalSeats {
		return nil, nil, domain.NewCapacityExceededError(p.TravelClassCode)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, mapTxError(err)
	}
	return reservation, payment, nil
}

func (r *PGReservationRepository) GetByID(ctx context.Context, reservationID int64) (*domain.ItineraryReservation, error) {
	row := r.db.QueryRow(ctx, `SELECT reservation_id, passenger_id, reservation_status_code, ticket_type_code, travel_class_code, date_reservation_made
		FROM itinerary_reservations WHERE reservation_id=$1`, reservationID)
	var res domain.ItineraryReservation
	if err := row.Scan(&res.ReservationID, &res.PassengerID, &res.Status, &res.TicketTypeCode, &res.TravelClassCode, &res.DateMade); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("reservation")
		}
		return nil, err
	}
	return &res, nil
}

// CancelItinerary flips a CREATED reservation to CANCELED and removes its
// leg links in one transaction, so the seats reappear in availability
// atomically with the status change. The WHERE guard keeps a concurrent
// double-cancel from succeeding twice.
func (r *PGReservationRepository) CancelItinerary(ctx context.Context, reservationID int64) (*domain.ItineraryReservation, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `UPDATE itinerary_reservations SET reservation_status_code=$1
		WHERE reservation_id=$2 AND reservation_status_code=$3
		RETURNING reservation_id, passenger_id, reservation_status_code, ticket_type_code, travel_class_code, date_reservation_made`,
		domain.ReservationStatusCanceled, reservationID, domain.ReservationStatusCreated)
	var res domain.ItineraryReservation
	if err := row.Scan(&res.ReservationID, &res.PassengerID, &res.Status, &res.TicketTypeCode, &res.TravelClassCode, &res.DateMade); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewValidationError("reservation status must be CREATED to cancel")
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM itinerary_legs WHERE reservation_id=$1`, reservationID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapTxError(err)
	}
	return &res, nil
}

func (r *PGReservationRepository) DeleteItineraryLegs(ctx context.Context, reservationID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM itinerary_legs WHERE reservation_id=$1`, reservationID)
	return err
}

func (r *PGReservationRepository) ReservedSeatCounts(ctx context.Context, flightNumber int64, legCount int) ([]domain.ReservedSeatCount, error) {
	rows, err := r.db.Query(ctx, reservedSeatsSQL, flightNumber, legCount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]domain.ReservedSeatCount, 0)
	for rows.Next() {
		var c domain.ReservedSeatCount
		if err := rows.Scan(&c.TravelClassCode, &c.ReservedSeats); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// FlightByReservation resolves the flight a reservation is linked to via
// its itinerary legs. A reservation whose legs were reversed away has no
// flight and yields ErrNotFound.
func (r *PGReservationRepository) FlightByReservation(ctx context.Context, reservationID int64) (*domain.FlightSchedule, error) {
	row := r.db.QueryRow(ctx, `SELECT DISTINCT fs.flight_number, fs.origin_airport_code, fs.destination_airport_code, fs.departure_time, fs.arrival_time, fs.created_at, fs.updated_at
		FROM flight_schedules fs
		JOIN legs l ON l.flight_number = fs.flight_number
		JOIN itinerary_legs il ON il.leg_id = l.leg_id
		WHERE il.reservation_id=$1`, reservationID)
	var f domain.FlightSchedule
	if err := row.Scan(&f.FlightNumber, &f.OriginAirportCode, &f.DestinationAirportCode, &f.DepartureTime, &f.ArrivalTime, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("reservation flight")
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGReservationRepository) ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.ItineraryReservation, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM itinerary_reservations r
		JOIN passengers p ON p.passenger_id = r.passenger_id
		WHERE p.customer_id=$1`, customerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `SELECT r.reservation_id, r.passenger_id, r.reservation_status_code, r.ticket_type_code, r.travel_class_code, r.date_reservation_made
		FROM itinerary_reservations r
		JOIN passengers p ON p.passenger_id = r.passenger_id
		WHERE p.customer_id=$1
		ORDER BY r.date_reservation_made DESC
		LIMIT $2 OFFSET $3`, customerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reservations := make([]domain.ItineraryReservation, 0)
	for rows.Next() {
		var res domain.ItineraryReservation
		if err := rows.Scan(&res.ReservationID, &res.PassengerID, &res.Status, &res.TicketTypeCode, &res.TravelClassCode, &res.DateMade); err != nil {
			return nil, 0, err
		}
		reservations = append(reservations, res)
	}
	return reservations, total, rows.Err()
}

// mapTxError folds Postgres serialization failures and deadlocks into
// ErrSerialization so the engine can retry them.
func mapTxError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return domain.ErrSerialization
		}
	}
	return err
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
