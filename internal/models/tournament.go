package models

import "time"

// Tournament formats. Enforced both by the store schema and request validation.
const (
	FormatSolo = "SOLO"
	FormatDuo  = "DUO"
	FormatTeam = "TEAM"
)

// ValidFormat reports whether f is one of the supported tournament formats.
func ValidFormat(f string) bool {
	return f == FormatSolo || f == FormatDuo || f == FormatTeam
}

type Tournament struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Game                string       `json:"game"`
	Format              string       `json:"format"`
	Date                time.Time    `json:"date"`
	MaxParticipants     int          `json:"maxParticipants"`
	CurrentParticipants int          `json:"currentParticipants"`
	Organizer           PublicUser   `json:"organizer"`
	Participants        []PublicUser `json:"participants"`
	CreatedAt           time.Time    `json:"-"`
}

// Full reports whether the participant set has reached capacity.
func (t *Tournament) Full() bool {
	return t.CurrentParticipants >= t.MaxParticipants
}
