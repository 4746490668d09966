package domain

import "time"

type ReservationStatusCode string

const (
	ReservationStatusCreated  ReservationStatusCode = "CREATED"
	ReservationStatusCanceled ReservationStatusCode = "CANCELED"
)

type PaymentStatusCode string

const PaymentStatusCreated PaymentStatusCode = "CREATED"

type TicketTypeCode string

const (
	TicketTypeOneWay    TicketTypeCode = "ONE_WAY"
	TicketTypeRoundTrip TicketTypeCode = "ROUND_TRIP"
)

// ItineraryReservation is a passenger's booking of an entire flight in one
// travel class. It occupies a seat only while it holds a leg link for every
// leg of the flight and its status is CREATED.
type ItineraryReservation struct {
	ReservationID   int64
	PassengerID     int64
	Status          ReservationStatusCode
	TicketTypeCode  TicketTypeCode
	TravelClassCode TravelClassCode
	DateMade        time.Time
}

// ItineraryLeg links a reservation to one leg of its flight.
type ItineraryLeg struct {
	ReservationID int64
	LegID         int64
}

type Payment struct {
	PaymentID   int64
	AmountCents int64
	Status      PaymentStatusCode
	CreatedAt   time.Time
}

type Passenger struct {
	PassengerID int64
	CustomerID  int64
	FirstName   string
	LastName    string
}

// ReservedSeatCount is the number of seats held by fully linked CREATED
// reservations of one travel class on a flight.
type ReservedSeatCount struct {
	TravelClassCode TravelClassCode
	ReservedSeats   int
}
