package teamcfg

import "github.com/easternstar/quiz/internal/models"

// Info holds the display metadata for one team
type Info struct {
	ID     models.Team `json:"id"`
	Name   string      `json:"name"`
	Color  string      `json:"color"`
	Virtue string      `json:"virtue"`
}

// teams is the fixed five-team registry, in star-point order
var teams = []Info{
	{ID: models.TeamAdah, Name: "Adah", Color: "#1e40af", Virtue: "Fidelity"},
	{ID: models.TeamRuth, Name: "Ruth", Color: "#ca8a04", Virtue: "Constancy"},
	{ID: models.TeamEsther, Name: "Esther", Color: "#f8fafc", Virtue: "Loyalty"},
	{ID: models.TeamMartha, Name: "Martha", Color: "#15803d", Virtue: "Faith"},
	{ID: models.TeamElecta, Name: "Electa", Color: "#b91c1c", Virtue: "Love"},
}

// All returns every team in fixed display order
func All() []Info {
	out := make([]Info, len(teams))
	copy(out, teams)
	return out
}

// Lookup returns the metadata for a team identifier
func Lookup(id models.Team) (Info, bool) {
	for _, t := range teams {
		if t.ID == id {
			return t, true
		}
	}
	return Info{}, false
}

// Valid reports whether id names one of the five teams
func Valid(id models.Team) bool {
	_, ok := Lookup(id)
	return ok
}
