// Package services holds the command handlers, one per aggregate kind.
package services

import (
	"time"

	"github.com/ffhb/clubstore/pkg/cqrs"
	"github.com/ffhb/clubstore/pkg/domain"
)

// CreateClub creates a club owned by OwnerID.
type CreateClub struct {
	cqrs.CommandModel
	Name               string `json:"name"`
	OwnerID            string `json:"owner_id"`
	RegistrationNumber string `json:"registration_number,omitempty"`
}

func (CreateClub) CommandType() string { return "CreateClub" }

// ChangeClubOwner transfers club ownership.
type ChangeClubOwner struct {
	cqrs.CommandModel
	ClubID     string `json:"club_id"`
	NewOwnerID string `json:"new_owner_id"`
}

func (ChangeClubOwner) CommandType() string { return "ChangeClubOwner" }

// AddClubCoach makes a user a coach of the club.
type AddClubCoach struct {
	cqrs.CommandModel
	ClubID string `json:"club_id"`
	UserID string `json:"user_id"`
}

func (AddClubCoach) CommandType() string { return "AddClubCoach" }

// SignUpUser records a user account from the identity provider.
type SignUpUser struct {
	cqrs.CommandModel
	UserID    string `json:"user_id"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

func (SignUpUser) CommandType() string { return "SignUpUser" }

// UpdateUserName updates a user's names.
type UpdateUserName struct {
	cqrs.CommandModel
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
}

func (UpdateUserName) CommandType() string { return "UpdateUserName" }

// UpdateUserEmail updates a user's email address.
type UpdateUserEmail struct {
	cqrs.CommandModel
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (UpdateUserEmail) CommandType() string { return "UpdateUserEmail" }

// RegisterPlayer registers a player with the federation and to a club for a
// season, claiming the license number when one is given.
type RegisterPlayer struct {
	cqrs.CommandModel
	ClubID        string             `json:"club_id"`
	FirstName     string             `json:"first_name"`
	LastName      string             `json:"last_name"`
	Gender        domain.Gender      `json:"gender"`
	DateOfBirth   time.Time          `json:"date_of_birth"`
	Season        domain.Season      `json:"season"`
	LicenseNumber string             `json:"license_number,omitempty"`
	LicenseType   domain.LicenseType `json:"license_type,omitempty"`
}

func (RegisterPlayer) CommandType() string { return "RegisterPlayer" }

// UnregisterPlayerFromClub removes a player from a club.
type UnregisterPlayerFromClub struct {
	cqrs.CommandModel
	PlayerID string `json:"player_id"`
	ClubID   string `json:"club_id"`
}

func (UnregisterPlayerFromClub) CommandType() string { return "UnregisterPlayerFromClub" }

// CreateCollective creates a collective inside a club.
type CreateCollective struct {
	cqrs.CommandModel
	ClubID      string `json:"club_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (CreateCollective) CommandType() string { return "CreateCollective" }

// AddPlayerToCollective adds a player to a collective.
type AddPlayerToCollective struct {
	cqrs.CommandModel
	CollectiveID string `json:"collective_id"`
	PlayerID     string `json:"player_id"`
}

func (AddPlayerToCollective) CommandType() string { return "AddPlayerToCollective" }

// RemovePlayerFromCollective removes a player from a collective.
type RemovePlayerFromCollective struct {
	cqrs.CommandModel
	CollectiveID string `json:"collective_id"`
	PlayerID     string `json:"player_id"`
}

func (RemovePlayerFromCollective) CommandType() string { return "RemovePlayerFromCollective" }

// CreateTrainingSession schedules a training session for a club.
type CreateTrainingSession struct {
	cqrs.CommandModel
	ClubID    string    `json:"club_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (CreateTrainingSession) CommandType() string { return "CreateTrainingSession" }

// CancelTrainingSession cancels a session.
type CancelTrainingSession struct {
	cqrs.CommandModel
	TrainingSessionID string `json:"training_session_id"`
}

func (CancelTrainingSession) CommandType() string { return "CancelTrainingSession" }

// RemovePlayerFromTrainingSession takes a player off a session's list.
type RemovePlayerFromTrainingSession struct {
	cqrs.CommandModel
	TrainingSessionID string `json:"training_session_id"`
	PlayerID          string `json:"player_id"`
}

func (RemovePlayerFromTrainingSession) CommandType() string {
	return "RemovePlayerFromTrainingSession"
}

// ChangeTrainingSessionPlayerStatus sets a player's attendance status.
type ChangeTrainingSessionPlayerStatus struct {
	cqrs.CommandModel
	TrainingSessionID string                             `json:"training_session_id"`
	PlayerID          string                             `json:"player_id"`
	Status            domain.TrainingSessionPlayerStatus `json:"status"`
	Reason            string                             `json:"reason,omitempty"`
	WithReason        bool                               `json:"with_reason"`
	ArrivalTime       time.Time                          `json:"arrival_time,omitempty"`
}

func (ChangeTrainingSessionPlayerStatus) CommandType() string {
	return "ChangeTrainingSessionPlayerStatus"
}
