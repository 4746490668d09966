package repository

import (
	"context"
	"errors"

	"github.com/ccrew/flightinventory/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PassengerRepository interface {
	GetByCustomerID(ctx context.Context, customerID int64) (*domain.Passenger, error)
}

type PGPassengerRepository struct {
	db *pgxpool.Pool
}

func NewPassengerRepository(db *pgxpool.Pool) PassengerRepository {
	return &PGPassengerRepository{db: db}
}

func (r *PGPassengerRepository) GetByCustomerID(ctx context.Context, customerID int64) (*domain.Passenger, error) {
	row := r.db.QueryRow(ctx, `SELECT passenger_id, customer_id, first_name, last_name FROM passengers WHERE customer_id=$1`, customerID)
	var p domain.Passenger
	if err := row.Scan(&p.PassengerID, &p.CustomerID, &p.FirstName, &p.LastName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("passenger")
		}
		return nil, err
	}
	return &p, nil
}

var _ PassengerRepository = (*PGPassengerRepository)(nil)
