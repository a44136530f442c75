package readmodel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PublicReadFacade serves the queries that need no club authorization.
type PublicReadFacade struct {
	db *DB
}

// NewPublicReadFacade creates the public query facade.
func NewPublicReadFacade(db *DB) *PublicReadFacade {
	return &PublicReadFacade{db: db}
}

// ClubList returns all clubs ordered by name.
func (f *PublicReadFacade) ClubList(ctx context.Context) ([]ClubSummary, error) {
	rows, err := f.db.Conn().QueryContext(ctx,
		`SELECT id, name, COALESCE(registration_number, ''), number_of_players
		 FROM club ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("club list: %w", err)
	}
	defer rows.Close()

	var clubs []ClubSummary
	for rows.Next() {
		var c ClubSummary
		if err := rows.Scan(&c.ClubID, &c.Name, &c.RegistrationNumber, &c.NbPlayers); err != nil {
			return nil, err
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

// ClubExists reports whether a club is present in the read model.
func (f *PublicReadFacade) ClubExists(ctx context.Context, clubID string) (bool, error) {
	var one int
	err := f.db.Conn().QueryRowContext(ctx, `SELECT 1 FROM club WHERE id = ?`, clubID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PlayerCard returns the public card of one player, with their club when
// registered.
func (f *PublicReadFacade) PlayerCard(ctx context.Context, playerID string) (*PlayerCard, error) {
	var card PlayerCard
	err := f.db.Conn().QueryRowContext(ctx,
		`SELECT p.id, p.first_name, p.last_name, p.gender, p.date_of_birth,
		        COALESCE(p.license_number, ''), COALESCE(p.license_type, ''),
		        COALESCE(p.club_id, ''), COALESCE(c.name, ''), COALESCE(p.season, '')
		 FROM player p LEFT JOIN club c ON c.id = p.club_id
		 WHERE p.id = ?`, playerID).
		Scan(&card.PlayerID, &card.FirstName, &card.LastName, &card.Gender, &card.DateOfBirth,
			&card.LicenseNumber, &card.LicenseType, &card.ClubID, &card.ClubName, &card.Season)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: player %s", ErrNotFound, playerID)
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// UserClubs returns the clubs a user owns.
func (f *PublicReadFacade) UserClubs(ctx context.Context, userID string) ([]ClubSummary, error) {
	rows, err := f.db.Conn().QueryContext(ctx,
		`SELECT id, name, COALESCE(registration_number, ''), number_of_players
		 FROM club WHERE owner_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("user clubs: %w", err)
	}
	defer rows.Close()

	var clubs []ClubSummary
	for rows.Next() {
		var c ClubSummary
		if err := rows.Scan(&c.ClubID, &c.Name, &c.RegistrationNumber, &c.NbPlayers); err != nil {
			return nil, err
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}
