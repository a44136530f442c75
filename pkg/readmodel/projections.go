package readmodel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ffhb/clubstore/pkg/domain"
	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

// WebSocket message types pushed to club subscribers when their read model
// changes.
const (
	MsgClubPlayerListUpdated          = "club_player_list_updated"
	MsgClubCollectiveListUpdated      = "club_collective_list_updated"
	MsgClubTrainingSessionListUpdated = "club_training_session_list_updated"
	MsgClubTrainingSessionUpdated     = "club_training_session_updated"
)

// Notification is a read-model change signal for one club. Notifications
// are collected while projecting an event and delivered only after its
// transaction commits.
type Notification struct {
	ClubID string
	Type   string
}

// Projector applies one event's worth of read-model writes inside a caller
// supplied transaction.
type Projector struct {
	logger *slog.Logger
}

// NewProjector creates a projector.
func NewProjector(logger *slog.Logger) *Projector {
	return &Projector{logger: logger}
}

// Apply projects a single event. Event types with no projection rule are
// logged at debug level and skipped. The returned notifications must not be
// delivered before the transaction commits.
func (p *Projector) Apply(ctx context.Context, tx *sql.Tx, event eventsourcing.Event) ([]Notification, error) {
	switch e := event.(type) {
	case *domain.ClubCreated:
		return nil, p.clubCreated(ctx, tx, e)
	case *domain.ClubOwnerChanged:
		return nil, p.clubOwnerChanged(ctx, tx, e)
	case *domain.UserSignedUp:
		return nil, p.userSignedUp(ctx, tx, e)
	case *domain.UserNameUpdated:
		return nil, p.userNameUpdated(ctx, tx, e)
	case *domain.UserEmailUpdated:
		return nil, p.userEmailUpdated(ctx, tx, e)
	case *domain.PlayerRegistered:
		return nil, p.playerRegistered(ctx, tx, e)
	case *domain.PlayerRegisteredToClub:
		return p.playerRegisteredToClub(ctx, tx, e)
	case *domain.PlayerUnregisteredFromClub:
		return p.playerUnregisteredFromClub(ctx, tx, e)
	case *domain.CollectiveCreated:
		return p.collectiveCreated(ctx, tx, e)
	case *domain.PlayerAddedToCollective:
		return p.playerAddedToCollective(ctx, tx, e)
	case *domain.PlayerRemovedFromCollective:
		return p.playerRemovedFromCollective(ctx, tx, e)
	case *domain.TrainingSessionCreated:
		return p.trainingSessionCreated(ctx, tx, e)
	case *domain.TrainingSessionCanceled:
		return p.trainingSessionCanceled(ctx, tx, e)
	case *domain.PlayerRemovedFromTrainingSession:
		return p.playerRemovedFromTrainingSession(ctx, tx, e)
	case *domain.PlayerTrainingSessionStatusChangedToPresent:
		return p.statusChanged(ctx, tx, e.TrainingSessionID, e.PlayerID, e.ClubID, domain.StatusPresent, "", false, "")
	case *domain.PlayerTrainingSessionStatusChangedToAbsent:
		return p.statusChanged(ctx, tx, e.TrainingSessionID, e.PlayerID, e.ClubID, domain.StatusAbsent, e.Reason, e.WithReason, "")
	case *domain.PlayerTrainingSessionStatusChangedToLate:
		return p.statusChanged(ctx, tx, e.TrainingSessionID, e.PlayerID, e.ClubID, domain.StatusLate, e.Reason, e.WithReason, e.ArrivalTime)
	default:
		p.logger.Debug("no projection for event", "event_type", event.EventType(), "event_id", event.EventID())
		return nil, nil
	}
}

func (p *Projector) clubCreated(ctx context.Context, tx *sql.Tx, e *domain.ClubCreated) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO club (id, name, registration_number, owner_id, number_of_players) VALUES (?, ?, ?, ?, 0)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, registration_number = excluded.registration_number, owner_id = excluded.owner_id`,
		e.ClubID, e.Name, nullable(e.RegistrationNumber), nullable(e.OwnerID))
	return err
}

func (p *Projector) clubOwnerChanged(ctx context.Context, tx *sql.Tx, e *domain.ClubOwnerChanged) error {
	_, err := tx.ExecContext(ctx, `UPDATE club SET owner_id = ? WHERE id = ?`, e.NewOwnerID, e.ClubID)
	return err
}

func (p *Projector) userSignedUp(ctx context.Context, tx *sql.Tx, e *domain.UserSignedUp) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO user (id, email, first_name, last_name, name) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET email = excluded.email, first_name = excluded.first_name, last_name = excluded.last_name, name = excluded.name`,
		e.UserID, nullable(e.Email), nullable(e.FirstName), nullable(e.LastName), nullable(e.Name))
	return err
}

func (p *Projector) userNameUpdated(ctx context.Context, tx *sql.Tx, e *domain.UserNameUpdated) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE user SET name = ?, first_name = ?, last_name = ? WHERE id = ?`,
		e.Name, e.FirstName, e.LastName, e.UserID)
	return err
}

func (p *Projector) userEmailUpdated(ctx context.Context, tx *sql.Tx, e *domain.UserEmailUpdated) error {
	_, err := tx.ExecContext(ctx, `UPDATE user SET email = ? WHERE id = ?`, e.Email, e.UserID)
	return err
}

func (p *Projector) playerRegistered(ctx context.Context, tx *sql.Tx, e *domain.PlayerRegistered) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO player (id, first_name, last_name, gender, date_of_birth, license_number) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET first_name = excluded.first_name, last_name = excluded.last_name, gender = excluded.gender, date_of_birth = excluded.date_of_birth, license_number = excluded.license_number`,
		e.PlayerID, e.FirstName, e.LastName, string(e.Gender), e.DateOfBirth, nullable(e.LicenseNumber))
	return err
}

func (p *Projector) playerRegisteredToClub(ctx context.Context, tx *sql.Tx, e *domain.PlayerRegisteredToClub) ([]Notification, error) {
	_, err := tx.ExecContext(ctx,
		`UPDATE player SET club_id = ?, season = ?, license_type = ? WHERE id = ?`,
		e.ClubID, string(e.Season), string(e.LicenseType), e.PlayerID)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE club SET number_of_players = number_of_players + 1 WHERE id = ?`, e.ClubID); err != nil {
		return nil, err
	}
	return []Notification{{ClubID: e.ClubID, Type: MsgClubPlayerListUpdated}}, nil
}

func (p *Projector) playerUnregisteredFromClub(ctx context.Context, tx *sql.Tx, e *domain.PlayerUnregisteredFromClub) ([]Notification, error) {
	if _, err := tx.ExecContext(ctx, `UPDATE player SET club_id = NULL WHERE id = ?`, e.PlayerID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE club SET number_of_players = number_of_players - 1 WHERE id = ?`, e.ClubID); err != nil {
		return nil, err
	}
	return []Notification{{ClubID: e.ClubID, Type: MsgClubPlayerListUpdated}}, nil
}

func (p *Projector) collectiveCreated(ctx context.Context, tx *sql.Tx, e *domain.CollectiveCreated) ([]Notification, error) {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO collective (id, club_id, name, description, number_of_players) VALUES (?, ?, ?, ?, 0)
		 ON CONFLICT (id) DO UPDATE SET club_id = excluded.club_id, name = excluded.name, description = excluded.description`,
		e.CollectiveID, e.ClubID, e.Name, nullable(e.Description))
	if err != nil {
		return nil, err
	}
	return []Notification{{ClubID: e.ClubID, Type: MsgClubCollectiveListUpdated}}, nil
}

func (p *Projector) playerAddedToCollective(ctx context.Context, tx *sql.Tx, e *domain.PlayerAddedToCollective) ([]Notification, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO collective_player (collective_id, player_id) VALUES (?, ?)
		 ON CONFLICT (collective_id, player_id) DO NOTHING`,
		e.CollectiveID, e.PlayerID)
	if err != nil {
		return nil, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if inserted > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE collective SET number_of_players = number_of_players + 1 WHERE id = ?`, e.CollectiveID); err != nil {
			return nil, err
		}
	}
	clubID, err := collectiveClub(ctx, tx, e.CollectiveID)
	if err != nil {
		return nil, err
	}
	return []Notification{{ClubID: clubID, Type: MsgClubCollectiveListUpdated}}, nil
}

func (p *Projector) playerRemovedFromCollective(ctx context.Context, tx *sql.Tx, e *domain.PlayerRemovedFromCollective) ([]Notification, error) {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM collective_player WHERE collective_id = ? AND player_id = ?`,
		e.CollectiveID, e.PlayerID)
	if err != nil {
		return nil, err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if deleted > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE collective SET number_of_players = number_of_players - 1 WHERE id = ?`, e.CollectiveID); err != nil {
			return nil, err
		}
	}
	clubID, err := collectiveClub(ctx, tx, e.CollectiveID)
	if err != nil {
		return nil, err
	}
	return []Notification{{ClubID: clubID, Type: MsgClubCollectiveListUpdated}}, nil
}

func (p *Projector) trainingSessionCreated(ctx context.Context, tx *sql.Tx, e *domain.TrainingSessionCreated) ([]Notification, error) {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO training_session (id, club_id, start_time, end_time) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET club_id = excluded.club_id, start_time = excluded.start_time, end_time = excluded.end_time`,
		e.TrainingSessionID, e.ClubID, e.StartTime, e.EndTime)
	if err != nil {
		return nil, err
	}
	return []Notification{{ClubID: e.ClubID, Type: MsgClubTrainingSessionListUpdated}}, nil
}

func (p *Projector) trainingSessionCanceled(ctx context.Context, tx *sql.Tx, e *domain.TrainingSessionCanceled) ([]Notification, error) {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM training_session_player WHERE training_session_id = ?`, e.TrainingSessionID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE training_session SET cancelled = 1, number_of_players_present = 0, number_of_players_absent = 0, number_of_players_late = 0 WHERE id = ?`,
		e.TrainingSessionID); err != nil {
		return nil, err
	}
	return []Notification{
		{ClubID: e.ClubID, Type: MsgClubTrainingSessionUpdated},
		{ClubID: e.ClubID, Type: MsgClubTrainingSessionListUpdated},
	}, nil
}

func (p *Projector) playerRemovedFromTrainingSession(ctx context.Context, tx *sql.Tx, e *domain.PlayerRemovedFromTrainingSession) ([]Notification, error) {
	previous, found, err := sessionPlayerStatus(ctx, tx, e.TrainingSessionID, e.PlayerID)
	if err != nil {
		return nil, err
	}
	if found {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM training_session_player WHERE training_session_id = ? AND player_id = ?`,
			e.TrainingSessionID, e.PlayerID); err != nil {
			return nil, err
		}
		if err := adjustCounter(ctx, tx, e.TrainingSessionID, previous, -1); err != nil {
			return nil, err
		}
	}
	return []Notification{
		{ClubID: e.ClubID, Type: MsgClubTrainingSessionUpdated},
		{ClubID: e.ClubID, Type: MsgClubTrainingSessionListUpdated},
	}, nil
}

func (p *Projector) statusChanged(ctx context.Context, tx *sql.Tx, sessionID, playerID, clubID string, status domain.TrainingSessionPlayerStatus, reason string, withReason bool, arrivalTime string) ([]Notification, error) {
	notifications := []Notification{
		{ClubID: clubID, Type: MsgClubTrainingSessionUpdated},
		{ClubID: clubID, Type: MsgClubTrainingSessionListUpdated},
	}

	previous, found, err := sessionPlayerStatus(ctx, tx, sessionID, playerID)
	if err != nil {
		return nil, err
	}
	if found {
		// A repeated PRESENT or ABSENT changes nothing. A repeated LATE
		// still rewrites the row, since the arrival time may differ.
		if previous == status && status != domain.StatusLate {
			return notifications, nil
		}
		if err := adjustCounter(ctx, tx, sessionID, previous, -1); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE training_session_player SET status = ?, reason = ?, with_reason = ?, arrival_time = ? WHERE training_session_id = ? AND player_id = ?`,
			string(status), nullable(reason), withReason, nullable(arrivalTime), sessionID, playerID); err != nil {
			return nil, err
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO training_session_player (training_session_id, player_id, status, reason, with_reason, arrival_time) VALUES (?, ?, ?, ?, ?, ?)`,
			sessionID, playerID, string(status), nullable(reason), withReason, nullable(arrivalTime)); err != nil {
			return nil, err
		}
	}
	if err := adjustCounter(ctx, tx, sessionID, status, +1); err != nil {
		return nil, err
	}
	return notifications, nil
}

func sessionPlayerStatus(ctx context.Context, tx *sql.Tx, sessionID, playerID string) (domain.TrainingSessionPlayerStatus, bool, error) {
	var status string
	err := tx.QueryRowContext(ctx,
		`SELECT status FROM training_session_player WHERE training_session_id = ? AND player_id = ?`,
		sessionID, playerID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return domain.TrainingSessionPlayerStatus(status), true, nil
}

func adjustCounter(ctx context.Context, tx *sql.Tx, sessionID string, status domain.TrainingSessionPlayerStatus, delta int) error {
	var column string
	switch status {
	case domain.StatusPresent:
		column = "number_of_players_present"
	case domain.StatusAbsent:
		column = "number_of_players_absent"
	case domain.StatusLate:
		column = "number_of_players_late"
	default:
		return fmt.Errorf("unknown attendance status %q", status)
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE training_session SET `+column+` = `+column+` + ? WHERE id = ?`, delta, sessionID)
	return err
}

func collectiveClub(ctx context.Context, tx *sql.Tx, collectiveID string) (string, error) {
	var clubID string
	err := tx.QueryRowContext(ctx, `SELECT club_id FROM collective WHERE id = ?`, collectiveID).Scan(&clubID)
	if err != nil {
		return "", fmt.Errorf("club of collective %s: %w", collectiveID, err)
	}
	return clubID, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
