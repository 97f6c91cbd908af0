package domain

import "strings"

type Train struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	DepartureTime  string `json:"departure_time"`
	ArrivalTime    string `json:"arrival_time"`
	TotalCapacity  int    `json:"total_capacity"`
	SeatsRemaining int    `json:"seats_remaining"`
	TrainType      string `json:"train_type"`
	Operational    bool   `json:"operational"`
}

// NewTrain returns an operational train with every seat free.
func NewTrain(id int64, name, origin, destination, departure, arrival string, capacity int, trainType string) *Train {
	return &Train{
		ID:             id,
		Name:           strings.TrimSpace(name),
		Origin:         NormalizeStation(origin),
		Destination:    NormalizeStation(destination),
		DepartureTime:  departure,
		ArrivalTime:    arrival,
		TotalCapacity:  capacity,
		SeatsRemaining: capacity,
		TrainType:      trainType,
		Operational:    true,
	}
}

func NormalizeStation(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (t *Train) HasAvailableSeats(n int) bool {
	return t.Operational && n > 0 && t.SeatsRemaining >= n
}

// ReserveSeats decrements the remaining seats by n. Nothing changes when it returns false.
func (t *Train) ReserveSeats(n int) bool {
	if !t.HasAvailableSeats(n) {
		return false
	}
	t.SeatsRemaining -= n
	return true
}

// ReleaseSeats returns n seats to the inventory, never exceeding TotalCapacity.
func (t *Train) ReleaseSeats(n int) {
	if n <= 0 {
		return
	}
	t.SeatsRemaining += n
	if t.SeatsRemaining > t.TotalCapacity {
		t.SeatsRemaining = t.TotalCapacity
	}
}

func (t *Train) BookedSeats() int {
	return t.TotalCapacity - t.SeatsRemaining
}

func (t *Train) OccupancyRate() float64 {
	if t.TotalCapacity <= 0 {
		return 0
	}
	return float64(t.BookedSeats()) / float64(t.TotalCapacity)
}
