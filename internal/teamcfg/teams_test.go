package teamcfg

import (
	"testing"

	"github.com/easternstar/quiz/internal/models"
)

func TestAllReturnsFiveTeams(t *testing.T) {
	all := All()
	if len(all) != 5 {
		t.Fatalf("expected 5 teams, got %d", len(all))
	}

	seen := make(map[models.Team]bool)
	for _, info := range all {
		if seen[info.ID] {
			t.Errorf("duplicate team %s", info.ID)
		}
		seen[info.ID] = true
		if info.Name == "" || info.Color == "" || info.Virtue == "" {
			t.Errorf("team %s has incomplete metadata: %+v", info.ID, info)
		}
	}
}

func TestLookup(t *testing.T) {
	info, ok := Lookup(models.TeamRuth)
	if !ok {
		t.Fatal("expected ruth to exist")
	}
	if info.Name != "Ruth" {
		t.Errorf("Name = %q, want Ruth", info.Name)
	}

	if _, ok := Lookup(models.Team("nobody")); ok {
		t.Error("expected lookup of unknown team to fail")
	}
}

func TestValid(t *testing.T) {
	for _, id := range []models.Team{models.TeamAdah, models.TeamRuth, models.TeamEsther, models.TeamMartha, models.TeamElecta} {
		if !Valid(id) {
			t.Errorf("expected %s to be valid", id)
		}
	}
	if Valid(models.Team("purple")) {
		t.Error("expected purple to be invalid")
	}
}

func TestAllIsACopy(t *testing.T) {
	all := All()
	all[0].Name = "mutated"
	if All()[0].Name == "mutated" {
		t.Error("All must return a copy of the registry")
	}
}
