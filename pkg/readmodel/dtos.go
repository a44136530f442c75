package readmodel

// CollectiveSummary is a collective as shown in club-side lists.
type CollectiveSummary struct {
	CollectiveID string `json:"collective_id"`
	Name         string `json:"name"`
	NbPlayers    int    `json:"nb_players"`
	Description  string `json:"description,omitempty"`
}

// PlayerSummary is a player row without collective membership.
type PlayerSummary struct {
	PlayerID      string `json:"player_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Gender        string `json:"gender"`
	DateOfBirth   string `json:"date_of_birth"`
	LicenseNumber string `json:"license_number,omitempty"`
	LicenseType   string `json:"license_type,omitempty"`
}

// ClubPlayer is a player row enriched with the collectives they belong to.
type ClubPlayer struct {
	PlayerSummary
	Collectives []CollectiveSummary `json:"collectives"`
}

// TrainingSessionSummary is a training session row with attendance counters.
type TrainingSessionSummary struct {
	TrainingSessionID      string `json:"training_session_id"`
	StartTime              string `json:"start_time"`
	EndTime                string `json:"end_time"`
	Cancelled              bool   `json:"cancelled"`
	NumberOfPlayersPresent int    `json:"number_of_players_present"`
	NumberOfPlayersAbsent  int    `json:"number_of_players_absent"`
	NumberOfPlayersLate    int    `json:"number_of_players_late"`
}

// TrainingSessionPlayer is one attendance row joined with its player.
type TrainingSessionPlayer struct {
	TrainingSessionID string        `json:"training_session_id"`
	Player            PlayerSummary `json:"player"`
	Status            string        `json:"status"`
	Reason            string        `json:"reason,omitempty"`
	WithReason        bool          `json:"with_reason"`
	ArrivalTime       string        `json:"arrival_time,omitempty"`
}

// UserClubAccess describes what a user may do in a club.
type UserClubAccess struct {
	ClubID      string `json:"club_id"`
	Name        string `json:"name"`
	AccessLevel string `json:"access_level"`
	CanManage   bool   `json:"can_manage"`
}

// ClubSummary is a club as shown in public lists.
type ClubSummary struct {
	ClubID             string `json:"club_id"`
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	NbPlayers          int    `json:"nb_players"`
}

// PlayerCard is the public view of a single player.
type PlayerCard struct {
	PlayerSummary
	ClubID   string `json:"club_id,omitempty"`
	ClubName string `json:"club_name,omitempty"`
	Season   string `json:"season,omitempty"`
}
