package domain

import (
	"fmt"
	"strings"
)

type TravelClass string

const (
	FirstAC      TravelClass = "FIRST_AC"
	SecondAC     TravelClass = "SECOND_AC"
	ThirdAC      TravelClass = "THIRD_AC"
	SleeperClass TravelClass = "SLEEPER_CLASS"
	GeneralClass TravelClass = "GENERAL_CLASS"
)

// AllTravelClasses lists classes from most to least expensive.
func AllTravelClasses() []TravelClass {
	return []TravelClass{FirstAC, SecondAC, ThirdAC, SleeperClass, GeneralClass}
}

func (c TravelClass) Valid() bool {
	switch c {
	case FirstAC, SecondAC, ThirdAC, SleeperClass, GeneralClass:
		return true
	}
	return false
}

// ParseTravelClass accepts "first ac", "FIRST_AC", "sleeper_class" and similar spellings.
func ParseTravelClass(s string) (TravelClass, error) {
	norm := strings.ToUpper(strings.Join(strings.Fields(s), "_"))
	c := TravelClass(norm)
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown travel class %q", ErrValidation, s)
	}
	return c, nil
}

type PassengerCategory string

const (
	PassengerAdult   PassengerCategory = "ADULT"
	PassengerSenior  PassengerCategory = "SENIOR_CITIZEN"
	PassengerChild   PassengerCategory = "CHILD"
	PassengerStudent PassengerCategory = "STUDENT"
)

// ParsePassengerCategory treats an empty string as ADULT.
func ParsePassengerCategory(s string) (PassengerCategory, error) {
	norm := strings.ToUpper(strings.Join(strings.Fields(s), "_"))
	switch PassengerCategory(norm) {
	case "":
		return PassengerAdult, nil
	case PassengerAdult, PassengerSenior, PassengerChild, PassengerStudent:
		return PassengerCategory(norm), nil
	}
	return "", fmt.Errorf("%w: unknown passenger category %q", ErrValidation, s)
}
