package domain

import "time"

type Airport struct {
	Code string
	Name string
	City string
}

// FlightSchedule is a scheduled flight identified by its flight number.
// A flight is flown as an ordered sequence of legs; a reservation always
// covers the whole sequence.
type FlightSchedule struct {
	FlightNumber           int64
	OriginAirportCode      string
	DestinationAirportCode string
	DepartureTime          time.Time
	ArrivalTime            time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Leg is one takeoff-to-landing segment of a flight schedule.
type Leg struct {
	LegID               int64
	FlightNumber        int64
	OriginAirport       string
	DestinationAirport  string
	ActualDepartureTime time.Time
	ActualArrivalTime   time.Time
}
