package domain

import "time"

// TravelClassOffer is one bookable class on a flight: its fare and how
// many seats are still free. Classes with no free seats are never offered.
type TravelClassOffer struct {
	TravelClassCode TravelClassCode `json:"travel_class_code"`
	FareCents       int64           `json:"fare_cents"`
	AvailableSeats  int             `json:"available_seats"`
}

// OneWayOffer is a flight matched by a one-way search together with its
// currently bookable classes.
type OneWayOffer struct {
	FlightNumber           int64              `json:"flight_number"`
	OriginAirportCode      string             `json:"origin_airport_code"`
	DestinationAirportCode string             `json:"destination_airport_code"`
	DepartureTime          time.Time          `json:"departure_time"`
	ArrivalTime            time.Time          `json:"arrival_time"`
	Classes                []TravelClassOffer `json:"classes"`
}
