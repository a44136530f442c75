// Package domain holds the write-side aggregates and their events.
package domain

// Gender of a player.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// LicenseType is the federation license category of a player.
type LicenseType string

const (
	LicenseTypeA LicenseType = "A"
	LicenseTypeB LicenseType = "B"
	LicenseTypeC LicenseType = "C"
)

// Season identifies a sporting season, e.g. "2025/2026".
type Season string

// TrainingSessionPlayerStatus is a player's attendance status for a session.
type TrainingSessionPlayerStatus string

const (
	StatusPresent TrainingSessionPlayerStatus = "PRESENT"
	StatusAbsent  TrainingSessionPlayerStatus = "ABSENT"
	StatusLate    TrainingSessionPlayerStatus = "LATE"
)
