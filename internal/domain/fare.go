package domain

import "time"

type TravelClassCode string

const (
	TravelClassEconomy        TravelClassCode = "ECONOMY"
	TravelClassPremiumEconomy TravelClassCode = "PREMIUM_ECONOMY"
	TravelClassBusiness       TravelClassCode = "BUSINESS"
	TravelClassFirst          TravelClassCode = "FIRST"
)

// FlightCost is a fare quote for a flight flown with a given aircraft type,
// valid within [ValidFrom, ValidTo] inclusive. A flight may carry several
// cost records at once when it is served by more than one aircraft type.
type FlightCost struct {
	FlightNumber     int64
	AircraftTypeCode string
	ValidFrom        time.Time
	ValidTo          time.Time
	CostCents        int64
}

// ValidOn reports whether the fare window contains the given date.
// Both bounds are inclusive; only the calendar date matters.
func (c FlightCost) ValidOn(date time.Time) bool {
	day := date.Truncate(24 * time.Hour)
	return !day.Before(c.ValidFrom.Truncate(24*time.Hour)) && !day.After(c.ValidTo.Truncate(24*time.Hour))
}

// TravelClassCapacity is the seat total for one travel class on one
// aircraft type. When a flight's cost records reference several aircraft
// types, capacities are summed per class.
type TravelClassCapacity struct {
	AircraftTypeCode string
	TravelClassCode  TravelClassCode
	SeatCapacity     int
}
