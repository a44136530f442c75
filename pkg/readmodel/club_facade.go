package readmodel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a read-model row does not exist.
var ErrNotFound = errors.New("not found")

// ClubReadFacade serves the club-scoped queries. Every query is bound to a
// club id so a caller can only see rows of the club it was authorized for.
type ClubReadFacade struct {
	db *DB
}

// NewClubReadFacade creates the club-scoped query facade.
func NewClubReadFacade(db *DB) *ClubReadFacade {
	return &ClubReadFacade{db: db}
}

// CollectiveList returns the club's collectives ordered by name.
func (f *ClubReadFacade) CollectiveList(ctx context.Context, clubID string) ([]CollectiveSummary, error) {
	rows, err := f.db.Conn().QueryContext(ctx,
		`SELECT id, name, number_of_players, COALESCE(description, '')
		 FROM collective WHERE club_id = ? ORDER BY name`, clubID)
	if err != nil {
		return nil, fmt.Errorf("collective list: %w", err)
	}
	defer rows.Close()

	var collectives []CollectiveSummary
	for rows.Next() {
		var c CollectiveSummary
		if err := rows.Scan(&c.CollectiveID, &c.Name, &c.NbPlayers, &c.Description); err != nil {
			return nil, err
		}
		collectives = append(collectives, c)
	}
	return collectives, rows.Err()
}

// GetCollective returns one collective of the club.
func (f *ClubReadFacade) GetCollective(ctx context.Context, clubID, collectiveID string) (*CollectiveSummary, error) {
	var c CollectiveSummary
	err := f.db.Conn().QueryRowContext(ctx,
		`SELECT id, name, number_of_players, COALESCE(description, '')
		 FROM collective WHERE id = ? AND club_id = ?`, collectiveID, clubID).
		Scan(&c.CollectiveID, &c.Name, &c.NbPlayers, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: collective %s", ErrNotFound, collectiveID)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const playerColumns = `p.id, p.first_name, p.last_name, p.gender, p.date_of_birth, COALESCE(p.license_number, ''), COALESCE(p.license_type, '')`

func scanPlayer(rows *sql.Rows) (PlayerSummary, error) {
	var p PlayerSummary
	err := rows.Scan(&p.PlayerID, &p.FirstName, &p.LastName, &p.Gender, &p.DateOfBirth, &p.LicenseNumber, &p.LicenseType)
	return p, err
}

// ClubPlayers returns a page of the club's players with the collectives
// each belongs to.
func (f *ClubReadFacade) ClubPlayers(ctx context.Context, clubID string, page, perPage int) (Paginated[ClubPlayer], error) {
	var zero Paginated[ClubPlayer]
	var total int
	if err := f.db.Conn().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM player WHERE club_id = ?`, clubID).Scan(&total); err != nil {
		return zero, err
	}

	rows, err := f.db.Conn().QueryContext(ctx,
		`SELECT `+playerColumns+` FROM player p WHERE p.club_id = ?
		 ORDER BY p.last_name, p.first_name LIMIT ? OFFSET ?`,
		clubID, perPage, page*perPage)
	if err != nil {
		return zero, fmt.Errorf("club players: %w", err)
	}
	defer rows.Close()

	var players []ClubPlayer
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return zero, err
		}
		players = append(players, ClubPlayer{PlayerSummary: p, Collectives: []CollectiveSummary{}})
	}
	if err := rows.Err(); err != nil {
		return zero, err
	}
	if err := f.attachCollectives(ctx, players); err != nil {
		return zero, err
	}
	return NewPaginated(players, total, page, perPage), nil
}

// attachCollectives fills in the collective memberships of the given players.
func (f *ClubReadFacade) attachCollectives(ctx context.Context, players []ClubPlayer) error {
	if len(players) == 0 {
		return nil
	}
	index := make(map[string]*ClubPlayer, len(players))
	placeholders := make([]string, 0, len(players))
	args := make([]any, 0, len(players))
	for i := range players {
		index[players[i].PlayerID] = &players[i]
		placeholders = append(placeholders, "?")
		args = append(args, players[i].PlayerID)
	}

	rows, err := f.db.Conn().QueryContext(ctx,
		`SELECT cp.player_id, c.id, c.name, c.number_of_players, COALESCE(c.description, '')
		 FROM collective_player cp JOIN collective c ON c.id = cp.collective_id
		 WHERE cp.player_id IN (`+strings.Join(placeholders, ", ")+`)`, args...)
	if err != nil {
		return fmt.Errorf("player collectives: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var playerID string
		var c CollectiveSummary
		if err := rows.Scan(&playerID, &c.CollectiveID, &c.Name, &c.NbPlayers, &c.Description); err != nil {
			return err
		}
		if p, ok := index[playerID]; ok {
			p.Collectives = append(p.Collectives, c)
		}
	}
	return rows.Err()
}

// CollectivePlayers returns a page of the players of one collective.
func (f *ClubReadFacade) CollectivePlayers(ctx context.Context, clubID, collectiveID string, page, perPage int) (Paginated[PlayerSummary], error) {
	var zero Paginated[PlayerSummary]
	var total int
	if err := f.db.Conn().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM player p JOIN collective_player cp ON cp.player_id = p.id
		 WHERE cp.collective_id = ? AND p.club_id = ?`, collectiveID, clubID).Scan(&total); err != nil {
		return zero, err
	}

	rows, err := f.db.Conn().QueryContext(ctx,
		`SELECT `+playerColumns+` FROM player p JOIN collective_player cp ON cp.player_id = p.id
		 WHERE cp.collective_id = ? AND p.club_id = ?
		 ORDER BY p.last_name, p.first_name LIMIT ? OFFSET ?`,
		collectiveID, clubID, perPage, page*perPage)
	if err != nil {
		return zero, fmt.Errorf("collective players: %w", err)
	}
	defer rows.Close()

	var players []PlayerSummary
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return zero, err
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return zero, err
	}
	return NewPaginated(players, total, page, perPage), nil
}

// searchFilter is the case-insensitive match on first name, last name or
// license number used by every player search.
const searchFilter = `(LOWER(p.first_name) LIKE ? OR LOWER(p.last_name) LIKE ? OR LOWER(COALESCE(p.license_number, '')) LIKE ?)`

func searchArgs(query string) []any {
	pattern := "%" + strings.ToLower(query) + "%"
	return []any{pattern, pattern, pattern}
}

// SearchPlayers finds the club's players matching the query by name or
// license number.
func (f *ClubReadFacade) SearchPlayers(ctx context.Context, clubID, query string) ([]PlayerSummary, error) {
	args := append([]any{clubID}, searchArgs(query)...)
	rows, err := f.db.Conn().QueryContext(ctx,
		`SELECT `+playerColumns+` FROM player p
		 WHERE p.club_id = ? AND `+searchFilter+`
		 ORDER BY p.last_name, p.first_name`, args...)
	if err != nil {
		return nil, fmt.Errorf("search players: %w", err)
	}
	defer rows.Close()

	var players []PlayerSummary
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// SearchUnassignedPlayersInCollective finds club players matching the query
// who are not in the given collective.
func (f *ClubReadFacade) SearchUnassignedPlayersInCollective(ctx context.Context, clubID, collectiveID, query string) ([]PlayerSummary, error) {
	args := append([]any{clubID, collectiveID}, searchArgs(query)...)
	rows, err := f.db.Conn().QueryContext(ctx,
		`SELECT `+playerColumns+` FROM player p
		 WHERE p.club_id = ?
		   AND p.id NOT IN (SELECT player_id FROM collective_player WHERE collective_id = ?)
		   AND `+searchFilter+`
		 ORDER BY p.last_name, p.first_name`, args...)
	if err != nil {
		return nil, fmt.Errorf("search unassigned players: %w", err)
	}
	defer rows.Close()

	var players []PlayerSummary
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// SearchPlayersNotInTrainingSession finds club players who are not on a
// session's attendance list, optionally restricted to one collective and a
// search query. Results include each player's collectives.
func (f *ClubReadFacade) SearchPlayersNotInTrainingSession(ctx context.Context, clubID, trainingSessionID, collectiveID, query string) ([]ClubPlayer, error) {
	q := `SELECT ` + playerColumns + ` FROM player p
		 WHERE p.club_id = ?
		   AND p.id NOT IN (SELECT player_id FROM training_session_player WHERE training_session_id = ?)`
	args := []any{clubID, trainingSessionID}
	if collectiveID != "" {
		q += ` AND p.id IN (SELECT player_id FROM collective_player WHERE collective_id = ?)`
		args = append(args, collectiveID)
	}
	if query != "" {
		q += ` AND ` + searchFilter
		args = append(args, searchArgs(query)...)
	}
	q += ` ORDER BY p.last_name, p.first_name`

	rows, err := f.db.Conn().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search players not in session: %w", err)
	}
	defer rows.Close()

	var players []ClubPlayer
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, ClubPlayer{PlayerSummary: p, Collectives: []CollectiveSummary{}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := f.attachCollectives(ctx, players); err != nil {
		return nil, err
	}
	return players, nil
}

const sessionColumns = `id, start_time, end_time, cancelled, number_of_players_present, number_of_players_absent, number_of_players_late`

// GetTrainingSession returns one training session of the club.
func (f *ClubReadFacade) GetTrainingSession(ctx context.Context, clubID, trainingSessionID string) (*TrainingSessionSummary, error) {
	var s TrainingSessionSummary
	err := f.db.Conn().QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM training_session WHERE id = ? AND club_id = ?`,
		trainingSessionID, clubID).
		Scan(&s.TrainingSessionID, &s.StartTime, &s.EndTime, &s.Cancelled,
			&s.NumberOfPlayersPresent, &s.NumberOfPlayersAbsent, &s.NumberOfPlayersLate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: training session %s", ErrNotFound, trainingSessionID)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// TrainingSessionList returns a page of the club's sessions, newest first.
func (f *ClubReadFacade) TrainingSessionList(ctx context.Context, clubID string, page, perPage int) (Paginated[TrainingSessionSummary], error) {
	var zero Paginated[TrainingSessionSummary]
	var total int
	if err := f.db.Conn().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM training_session WHERE club_id = ?`, clubID).Scan(&total); err != nil {
		return zero, err
	}

	rows, err := f.db.Conn().QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM training_session WHERE club_id = ?
		 ORDER BY start_time DESC LIMIT ? OFFSET ?`,
		clubID, perPage, page*perPage)
	if err != nil {
		return zero, fmt.Errorf("training session list: %w", err)
	}
	defer rows.Close()

	var sessions []TrainingSessionSummary
	for rows.Next() {
		var s TrainingSessionSummary
		if err := rows.Scan(&s.TrainingSessionID, &s.StartTime, &s.EndTime, &s.Cancelled,
			&s.NumberOfPlayersPresent, &s.NumberOfPlayersAbsent, &s.NumberOfPlayersLate); err != nil {
			return zero, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return zero, err
	}
	return NewPaginated(sessions, total, page, perPage), nil
}

// TrainingSessionPlayers returns a page of a session's attendance rows with
// the player details joined in.
func (f *ClubReadFacade) TrainingSessionPlayers(ctx context.Context, clubID, trainingSessionID string, page, perPage int) (Paginated[TrainingSessionPlayer], error) {
	var zero Paginated[TrainingSessionPlayer]
	var total int
	if err := f.db.Conn().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM training_session_player tsp
		 JOIN training_session ts ON ts.id = tsp.training_session_id
		 WHERE tsp.training_session_id = ? AND ts.club_id = ?`,
		trainingSessionID, clubID).Scan(&total); err != nil {
		return zero, err
	}

	rows, err := f.db.Conn().QueryContext(ctx,
		`SELECT tsp.training_session_id, tsp.status, COALESCE(tsp.reason, ''), tsp.with_reason, COALESCE(tsp.arrival_time, ''), `+playerColumns+`
		 FROM training_session_player tsp
		 JOIN training_session ts ON ts.id = tsp.training_session_id
		 JOIN player p ON p.id = tsp.player_id
		 WHERE tsp.training_session_id = ? AND ts.club_id = ?
		 ORDER BY p.last_name, p.first_name LIMIT ? OFFSET ?`,
		trainingSessionID, clubID, perPage, page*perPage)
	if err != nil {
		return zero, fmt.Errorf("training session players: %w", err)
	}
	defer rows.Close()

	var results []TrainingSessionPlayer
	for rows.Next() {
		var r TrainingSessionPlayer
		if err := rows.Scan(&r.TrainingSessionID, &r.Status, &r.Reason, &r.WithReason, &r.ArrivalTime,
			&r.Player.PlayerID, &r.Player.FirstName, &r.Player.LastName, &r.Player.Gender,
			&r.Player.DateOfBirth, &r.Player.LicenseNumber, &r.Player.LicenseType); err != nil {
			return zero, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return zero, err
	}
	return NewPaginated(results, total, page, perPage), nil
}

// UserClubAccess reports whether a user can manage a club. Only owners can
// manage for now.
func (f *ClubReadFacade) UserClubAccess(ctx context.Context, userID, clubID string) (*UserClubAccess, error) {
	var a UserClubAccess
	err := f.db.Conn().QueryRowContext(ctx,
		`SELECT id, name FROM club WHERE id = ? AND owner_id = ?`, clubID, userID).
		Scan(&a.ClubID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no access to club %s", ErrNotFound, clubID)
	}
	if err != nil {
		return nil, err
	}
	a.AccessLevel = "owner"
	a.CanManage = true
	return &a, nil
}
