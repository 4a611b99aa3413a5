package models

import (
	"encoding/json"
	"time"
)

// FlexString decodes a JSON value that may arrive as either a string or a
// number. TempleOSRS returns player identifiers both ways.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// PlayerProgress is one player's pet summary in the collection-log style:
// a flag per pet name, where any count >= 1 means obtained.
type PlayerProgress struct {
	Player   FlexString     `json:"player"`
	Pets     map[string]int `json:"pets"`
	PetCount int            `json:"pet_count"`
	PetHours float64        `json:"pet_hours"`
	Rank     int            `json:"rank"`
}

// Summary is the aggregate view rendered by progress rings.
type Summary struct {
	Player     string  `json:"player,omitempty"`
	Obtained   int     `json:"obtained"`
	TotalPets  int     `json:"total_pets"`
	Hours      float64 `json:"hours"`
	TotalHours float64 `json:"total_hours"`
	ManualMode bool    `json:"manual_mode"`
}

// ProgressRecord is one historical data point for a player.
type ProgressRecord struct {
	Player    string    `json:"player"`
	PetCount  int       `json:"pet_count"`
	PetHours  float64   `json:"pet_hours"`
	UpdatedAt time.Time `json:"updated_at"`
}
