package memory

import (
	"context"
	"testing"
)

func TestNewLeagueCatalog(t *testing.T) {
	t.Parallel()

	repo, err := NewLeagueCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	leagues, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list leagues: %v", err)
	}
	if len(leagues) != 25 {
		t.Fatalf("expected 25 leagues, got %d", len(leagues))
	}
	if leagues[0].Name != "EPL" {
		t.Fatalf("expected yaml order to be kept, got first %q", leagues[0].Name)
	}

	fbref := 0
	for _, l := range leagues {
		if l.HasFBref() {
			fbref++
		}
	}
	if fbref != 7 {
		t.Fatalf("expected 7 fbref leagues, got %d", fbref)
	}

	mls, ok, err := repo.GetByName(context.Background(), "MLS")
	if err != nil || !ok {
		t.Fatalf("expected MLS, ok=%v err=%v", ok, err)
	}
	if got := mls.SeasonLabel(2023); got != "2023" {
		t.Fatalf("expected calendar-year label, got %q", got)
	}

	if _, ok, _ := repo.GetByName(context.Background(), "Unknown"); ok {
		t.Fatalf("expected unknown league to be missing")
	}
}

func TestParseLeagues_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	raw := []byte(`
- name: EPL
  whoscored_url: https://example.test/a
- name: EPL
  whoscored_url: https://example.test/b
`)
	if _, err := ParseLeagues(raw); err == nil {
		t.Fatalf("expected duplicate league to fail")
	}
}
