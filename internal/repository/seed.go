package repository

import "github.com/Domenick1991/railbooking/internal/domain"

// SeedTrains is the fixed timetable loaded at startup.
func SeedTrains() []domain.Train {
	seeds := []*domain.Train{
		domain.NewTrain(12345, "Rajdhani Express", "DELHI", "MUMBAI", "06:00", "20:30", 100, "EXPRESS"),
		domain.NewTrain(67890, "Shatabdi Express", "CHENNAI", "BANGALORE", "14:00", "19:45", 80, "SUPERFAST"),
		domain.NewTrain(11111, "Duronto Express", "KOLKATA", "DELHI", "22:15", "12:30", 120, "EXPRESS"),
		domain.NewTrain(22222, "Garib Rath", "MUMBAI", "AHMEDABAD", "08:30", "14:15", 150, "EXPRESS"),
		domain.NewTrain(33333, "Jan Shatabdi", "PUNE", "MUMBAI", "07:00", "10:30", 200, "PASSENGER"),
		domain.NewTrain(44444, "Kalka Shatabdi", "DELHI", "CHANDIGARH", "07:40", "11:05", 90, "SUPERFAST"),
		domain.NewTrain(55555, "Gitanjali Express", "MUMBAI", "KOLKATA", "06:00", "12:30", 140, "SUPERFAST"),
		domain.NewTrain(66666, "Punjab Mail", "MUMBAI", "DELHI", "19:35", "07:10", 110, "EXPRESS"),
	}
	out := make([]domain.Train, 0, len(seeds))
	for _, t := range seeds {
		out = append(out, *t)
	}
	return out
}
