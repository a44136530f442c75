package domain

import (
	"fmt"

	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

// UserSignedUp is emitted when a user account first appears.
type UserSignedUp struct {
	eventsourcing.EventModel
	UserID    string `json:"user_id"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

func (UserSignedUp) EventType() string { return "UserSignedUp" }

// UserNameUpdated is emitted when a user changes their name.
type UserNameUpdated struct {
	eventsourcing.EventModel
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
}

func (UserNameUpdated) EventType() string { return "UserNameUpdated" }

// UserEmailUpdated is emitted when a user changes their email address.
type UserEmailUpdated struct {
	eventsourcing.EventModel
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (UserEmailUpdated) EventType() string { return "UserEmailUpdated" }

// UserStreamID maps a user id to its stream id.
func UserStreamID(id string) string { return "user-" + id }

// User is an account holder. The user id comes from the identity provider,
// so sign-up takes it as input instead of generating one.
type User struct {
	eventsourcing.AggregateRoot
	id        string
	Name      string
	FirstName string
	LastName  string
	Email     string
}

// NewUser creates an empty user ready for replay.
func NewUser() *User {
	return &User{AggregateRoot: eventsourcing.NewAggregateRoot()}
}

// SignUpUser creates a user aggregate for an externally issued user id.
func SignUpUser(actorID, userID, name, firstName, lastName, email string) (*User, error) {
	if userID == "" {
		return nil, eventsourcing.NewInvalidOperation("user id is required")
	}
	u := NewUser()
	err := eventsourcing.Record(u, &UserSignedUp{
		EventModel: eventsourcing.NewEventModel(actorID),
		UserID:     userID,
		Name:       name,
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) ID() string { return u.id }

// UpdateName replaces the user's display and legal names.
func (u *User) UpdateName(actorID, firstName, lastName, name string) error {
	return eventsourcing.Record(u, &UserNameUpdated{
		EventModel: eventsourcing.NewEventModel(actorID),
		UserID:     u.id,
		FirstName:  firstName,
		LastName:   lastName,
		Name:       name,
	})
}

// UpdateEmail replaces the user's email address.
func (u *User) UpdateEmail(actorID, email string) error {
	if email == "" {
		return eventsourcing.NewInvalidOperation("email is required")
	}
	return eventsourcing.Record(u, &UserEmailUpdated{
		EventModel: eventsourcing.NewEventModel(actorID),
		UserID:     u.id,
		Email:      email,
	})
}

// ApplyEvent folds an event into the user's state.
func (u *User) ApplyEvent(event eventsourcing.Event) error {
	switch e := event.(type) {
	case *UserSignedUp:
		u.id = e.UserID
		u.Name = e.Name
		u.FirstName = e.FirstName
		u.LastName = e.LastName
		u.Email = e.Email
	case *UserNameUpdated:
		u.FirstName = e.FirstName
		u.LastName = e.LastName
		u.Name = e.Name
	case *UserEmailUpdated:
		u.Email = e.Email
	default:
		return fmt.Errorf("user: unexpected event %s", event.EventType())
	}
	return nil
}
