// Package fare prices tickets from class rates, route distances, demand and booking lead time.
//
// All amounts are integer minor units (paise). Multipliers are basis points, so
// 1.25x is 12500, and every rounding step is half-up to the nearest paisa.
package fare

import (
	"fmt"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
)

const (
	DefaultDistanceKM = 500
	unitBP            = 10000
)

// ratePer100KM is the base rate in paise for each class per 100 km.
var ratePer100KM = map[domain.TravelClass]int64{
	domain.FirstAC:      2500,
	domain.SecondAC:     1850,
	domain.ThirdAC:      1275,
	domain.SleeperClass: 825,
	domain.GeneralClass: 350,
}

var routeDistancesKM = map[string]int64{
	"DELHI-MUMBAI":      1400,
	"DELHI-CHANDIGARH":  250,
	"MUMBAI-KOLKATA":    2000,
	"CHENNAI-BANGALORE": 350,
	"PUNE-MUMBAI":       150,
}

type Calculator struct {
	now func() time.Time
}

type Option func(*Calculator)

func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.now = now
	}
}

func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Distance looks the route up in either direction and falls back to DefaultDistanceKM.
func Distance(origin, destination string) int64 {
	o, d := domain.NormalizeStation(origin), domain.NormalizeStation(destination)
	if km, ok := routeDistancesKM[o+"-"+d]; ok {
		return km
	}
	if km, ok := routeDistancesKM[d+"-"+o]; ok {
		return km
	}
	return DefaultDistanceKM
}

// BaseFare is rate * distance / 100. Unknown classes are priced as GENERAL_CLASS.
func (c *Calculator) BaseFare(class domain.TravelClass, origin, destination string) int64 {
	rate, ok := ratePer100KM[class]
	if !ok {
		rate = ratePer100KM[domain.GeneralClass]
	}
	return divRound(rate*Distance(origin, destination), 100)
}

// DynamicFare applies the occupancy surge and the lead-time factor to the base fare.
func (c *Calculator) DynamicFare(class domain.TravelClass, origin, destination string, travelDate time.Time, seatsRemaining, totalCapacity int) int64 {
	base := c.BaseFare(class, origin, destination)
	surge := SurgeFactor(seatsRemaining, totalCapacity)
	timing := TimeFactor(domain.DaysBetween(c.now(), travelDate))
	return divRound(base*surge*timing, unitBP*unitBP)
}

// SurgeFactor: occupancy >= 90% 1.5x, >= 70% 1.25x, >= 50% 1.1x, else 1.0x.
func SurgeFactor(seatsRemaining, totalCapacity int) int64 {
	if totalCapacity <= 0 {
		return unitBP
	}
	booked := int64(totalCapacity - seatsRemaining)
	total := int64(totalCapacity)
	switch {
	case booked*100 >= 90*total:
		return 15000
	case booked*100 >= 70*total:
		return 12500
	case booked*100 >= 50*total:
		return 11000
	default:
		return unitBP
	}
}

// TimeFactor: 30+ days 0.85x, 7+ days 0.95x, one day or less 1.2x, else 1.0x.
func TimeFactor(daysUntilTravel int) int64 {
	switch {
	case daysUntilTravel >= 30:
		return 8500
	case daysUntilTravel >= 7:
		return 9500
	case daysUntilTravel <= 1:
		return 12000
	default:
		return unitBP
	}
}

func ApplyPassengerDiscount(fare int64, category domain.PassengerCategory) int64 {
	switch category {
	case domain.PassengerSenior:
		return domain.PercentOf(fare, 6000)
	case domain.PassengerChild:
		return domain.PercentOf(fare, 5000)
	case domain.PassengerStudent:
		return domain.PercentOf(fare, 7500)
	default:
		return fare
	}
}

type ClassFare struct {
	Class     domain.TravelClass `json:"class"`
	FareCents int64              `json:"fare_cents"`
}

// ClassFares lists the base fare of every class on a route.
func (c *Calculator) ClassFares(origin, destination string) []ClassFare {
	classes := domain.AllTravelClasses()
	out := make([]ClassFare, 0, len(classes))
	for _, class := range classes {
		out = append(out, ClassFare{Class: class, FareCents: c.BaseFare(class, origin, destination)})
	}
	return out
}

func Format(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, cents/100, cents%100)
}

func divRound(num, den int64) int64 {
	return (num + den/2) / den
}
