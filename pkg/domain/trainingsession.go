package domain

import (
	"fmt"
	"time"

	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

// TrainingSessionCreated is emitted when a training session is scheduled.
// Times travel as RFC 3339 strings.
type TrainingSessionCreated struct {
	eventsourcing.EventModel
	TrainingSessionID string `json:"training_session_id"`
	ClubID            string `json:"club_id"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
}

func (TrainingSessionCreated) EventType() string { return "TrainingSessionCreated" }

// TrainingSessionCanceled is emitted when a session is cancelled; the
// attendance list is discarded with it.
type TrainingSessionCanceled struct {
	eventsourcing.EventModel
	TrainingSessionID string `json:"training_session_id"`
	ClubID            string `json:"club_id"`
}

func (TrainingSessionCanceled) EventType() string { return "TrainingSessionCanceled" }

// PlayerRemovedFromTrainingSession is emitted when a player is taken off the
// attendance list.
type PlayerRemovedFromTrainingSession struct {
	eventsourcing.EventModel
	TrainingSessionID string `json:"training_session_id"`
	PlayerID          string `json:"player_id"`
	ClubID            string `json:"club_id"`
}

func (PlayerRemovedFromTrainingSession) EventType() string {
	return "PlayerRemovedFromTrainingSession"
}

// PlayerTrainingSessionStatusChangedToPresent marks a player present.
type PlayerTrainingSessionStatusChangedToPresent struct {
	eventsourcing.EventModel
	TrainingSessionID string `json:"training_session_id"`
	PlayerID          string `json:"player_id"`
	ClubID            string `json:"club_id"`
}

func (PlayerTrainingSessionStatusChangedToPresent) EventType() string {
	return "PlayerTrainingSessionStatusChangedToPresent"
}

// PlayerTrainingSessionStatusChangedToAbsent marks a player absent, with an
// optional reason.
type PlayerTrainingSessionStatusChangedToAbsent struct {
	eventsourcing.EventModel
	TrainingSessionID string `json:"training_session_id"`
	PlayerID          string `json:"player_id"`
	ClubID            string `json:"club_id"`
	Reason            string `json:"reason,omitempty"`
	WithReason        bool   `json:"with_reason"`
}

func (PlayerTrainingSessionStatusChangedToAbsent) EventType() string {
	return "PlayerTrainingSessionStatusChangedToAbsent"
}

// PlayerTrainingSessionStatusChangedToLate marks a player late with their
// arrival time.
type PlayerTrainingSessionStatusChangedToLate struct {
	eventsourcing.EventModel
	TrainingSessionID string `json:"training_session_id"`
	PlayerID          string `json:"player_id"`
	ClubID            string `json:"club_id"`
	ArrivalTime       string `json:"arrival_time"`
	Reason            string `json:"reason,omitempty"`
	WithReason        bool   `json:"with_reason"`
}

func (PlayerTrainingSessionStatusChangedToLate) EventType() string {
	return "PlayerTrainingSessionStatusChangedToLate"
}

// TrainingSessionStreamID maps a training session id to its stream id.
func TrainingSessionStreamID(id string) string { return "training_session-" + id }

// TrainingSession is a scheduled club training with a per-player attendance
// status. A cancelled session rejects every further mutation.
type TrainingSession struct {
	eventsourcing.AggregateRoot
	id        string
	ClubID    string
	StartTime time.Time
	EndTime   time.Time
	Players   map[string]TrainingSessionPlayerStatus
	Cancelled bool
}

// NewTrainingSession creates an empty session ready for replay.
func NewTrainingSession() *TrainingSession {
	return &TrainingSession{
		AggregateRoot: eventsourcing.NewAggregateRoot(),
		Players:       make(map[string]TrainingSessionPlayerStatus),
	}
}

// CreateTrainingSession schedules a session for a club.
func CreateTrainingSession(actorID, clubID string, startTime, endTime time.Time) (*TrainingSession, error) {
	if !endTime.After(startTime) {
		return nil, eventsourcing.NewInvalidOperation("training session must end after it starts")
	}
	s := NewTrainingSession()
	err := eventsourcing.Record(s, &TrainingSessionCreated{
		EventModel:        eventsourcing.NewEventModel(actorID),
		TrainingSessionID: NewID(),
		ClubID:            clubID,
		StartTime:         startTime.Format(time.RFC3339),
		EndTime:           endTime.Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *TrainingSession) ID() string { return s.id }

// Cancel cancels the session.
func (s *TrainingSession) Cancel(actorID string) error {
	if s.Cancelled {
		return eventsourcing.NewInvalidOperation("training session %s is already cancelled", s.id)
	}
	return eventsourcing.Record(s, &TrainingSessionCanceled{
		EventModel:        eventsourcing.NewEventModel(actorID),
		TrainingSessionID: s.id,
		ClubID:            s.ClubID,
	})
}

// RemovePlayer takes a player off the attendance list.
func (s *TrainingSession) RemovePlayer(actorID, playerID string) error {
	if s.Cancelled {
		return eventsourcing.NewInvalidOperation("training session %s is cancelled", s.id)
	}
	if _, ok := s.Players[playerID]; !ok {
		return eventsourcing.NewInvalidOperation("player %s not in training session %s", playerID, s.id)
	}
	return eventsourcing.Record(s, &PlayerRemovedFromTrainingSession{
		EventModel:        eventsourcing.NewEventModel(actorID),
		TrainingSessionID: s.id,
		PlayerID:          playerID,
		ClubID:            s.ClubID,
	})
}

// StatusChange carries the optional fields of ChangePlayerStatus.
type StatusChange struct {
	Reason      string
	WithReason  bool
	ArrivalTime time.Time
}

// ChangePlayerStatus sets a player's attendance status. LATE requires an
// arrival time within the session's time window.
func (s *TrainingSession) ChangePlayerStatus(actorID, playerID string, status TrainingSessionPlayerStatus, change StatusChange) error {
	if s.Cancelled {
		return eventsourcing.NewInvalidOperation("training session %s is cancelled", s.id)
	}
	switch status {
	case StatusPresent:
		return eventsourcing.Record(s, &PlayerTrainingSessionStatusChangedToPresent{
			EventModel:        eventsourcing.NewEventModel(actorID),
			TrainingSessionID: s.id,
			PlayerID:          playerID,
			ClubID:            s.ClubID,
		})
	case StatusAbsent:
		return eventsourcing.Record(s, &PlayerTrainingSessionStatusChangedToAbsent{
			EventModel:        eventsourcing.NewEventModel(actorID),
			TrainingSessionID: s.id,
			PlayerID:          playerID,
			ClubID:            s.ClubID,
			Reason:            change.Reason,
			WithReason:        change.WithReason,
		})
	case StatusLate:
		if change.ArrivalTime.IsZero() {
			return eventsourcing.NewInvalidOperation("arrival time is required")
		}
		if change.ArrivalTime.Before(s.StartTime) || change.ArrivalTime.After(s.EndTime) {
			return eventsourcing.NewInvalidOperation("arrival time is outside the training session time")
		}
		return eventsourcing.Record(s, &PlayerTrainingSessionStatusChangedToLate{
			EventModel:        eventsourcing.NewEventModel(actorID),
			TrainingSessionID: s.id,
			PlayerID:          playerID,
			ClubID:            s.ClubID,
			ArrivalTime:       change.ArrivalTime.Format(time.RFC3339),
			Reason:            change.Reason,
			WithReason:        change.WithReason,
		})
	default:
		return eventsourcing.NewInvalidOperation("unknown status %s", status)
	}
}

// ApplyEvent folds an event into the session's state.
func (s *TrainingSession) ApplyEvent(event eventsourcing.Event) error {
	switch e := event.(type) {
	case *TrainingSessionCreated:
		s.id = e.TrainingSessionID
		s.ClubID = e.ClubID
		start, err := time.Parse(time.RFC3339, e.StartTime)
		if err != nil {
			return fmt.Errorf("training session %s: bad start time %q: %w", e.TrainingSessionID, e.StartTime, err)
		}
		end, err := time.Parse(time.RFC3339, e.EndTime)
		if err != nil {
			return fmt.Errorf("training session %s: bad end time %q: %w", e.TrainingSessionID, e.EndTime, err)
		}
		s.StartTime = start
		s.EndTime = end
	case *TrainingSessionCanceled:
		s.Players = make(map[string]TrainingSessionPlayerStatus)
		s.Cancelled = true
	case *PlayerRemovedFromTrainingSession:
		delete(s.Players, e.PlayerID)
	case *PlayerTrainingSessionStatusChangedToPresent:
		s.Players[e.PlayerID] = StatusPresent
	case *PlayerTrainingSessionStatusChangedToAbsent:
		s.Players[e.PlayerID] = StatusAbsent
	case *PlayerTrainingSessionStatusChangedToLate:
		s.Players[e.PlayerID] = StatusLate
	default:
		return fmt.Errorf("training session: unexpected event %s", event.EventType())
	}
	return nil
}
