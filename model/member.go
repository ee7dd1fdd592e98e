package model

import (
	"database/sql"
	"strings"
)

// StatusAccepted marks a member whose application was accepted.
const StatusAccepted = "Accepted"

// Member is a row of the member table maintained by the auth site.
type Member struct {
	CharacterName string         `db:"character_name"`
	Main          sql.NullString `db:"main"`
	CharacterID   sql.NullInt64  `db:"character_id"`
	Corporation   string         `db:"corporation"`
	Reddit        sql.NullString `db:"reddit"`
	Status        string         `db:"status"`
	Knowledge
}

// IsMain reports whether the member is its own main.
func (m Member) IsMain() bool {
	return m.Main.Valid && strings.EqualFold(m.Main.String, m.CharacterName)
}

// Knowledge holds the ten knowledge tag flags of a member.
type Knowledge struct {
	Scanning     bool `db:"know_scanning"`
	Rolling      bool `db:"know_rolling"`
	PvP          bool `db:"know_pvp"`
	Logistics    bool `db:"know_logistics"`
	Capitals     bool `db:"know_capitals"`
	Hacking      bool `db:"know_hacking"`
	Industry     bool `db:"know_industry"`
	Doctrine     bool `db:"know_doctrine"`
	FleetCommand bool `db:"know_fleet_command"`
	Bookmarks    bool `db:"know_bookmarks"`
}

// KnowledgeTag is a single labelled knowledge flag.
type KnowledgeTag struct {
	Label string
	Known bool
}

// Tags returns the knowledge flags in display order.
func (k Knowledge) Tags() []KnowledgeTag {
	return []KnowledgeTag{
		{"Scanning", k.Scanning},
		{"Rolling", k.Rolling},
		{"PvP", k.PvP},
		{"Logistics", k.Logistics},
		{"Capitals", k.Capitals},
		{"Hacking", k.Hacking},
		{"Industry", k.Industry},
		{"Doctrine", k.Doctrine},
		{"Fleet command", k.FleetCommand},
		{"Bookmarks", k.Bookmarks},
	}
}
