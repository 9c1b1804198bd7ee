package stats

import "testing"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetUser(t *testing.T) {
	s := openTestStore(t)

	id, err := s.CreateUser("sniper")
	if err != nil {
		t.Fatal(err)
	}

	u, err := s.GetUser(id)
	if err != nil {
		t.Fatal(err)
	}
	if u.Name != "sniper" {
		t.Fatalf("got name %q, want sniper", u.Name)
	}
}

func TestGetUserMissingReturnsErrUserNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetUser(999); err != ErrUserNotFound {
		t.Fatalf("got %v, want ErrUserNotFound", err)
	}
}

func TestRecordKillUpdatesBothUsers(t *testing.T) {
	s := openTestStore(t)

	killer, _ := s.CreateUser("killer")
	victim, _ := s.CreateUser("victim")
	s.RecordKill(killer, victim)

	board, err := s.GetLeaderboard(10)
	if err != nil {
		t.Fatal(err)
	}

	var killerKills, victimDeaths int
	for _, row := range board {
		if row.UserID == killer {
			killerKills = row.Kills
		}
		if row.UserID == victim {
			victimDeaths = row.Deaths
		}
	}
	if killerKills != 1 {
		t.Fatalf("got killer kills %d, want 1", killerKills)
	}
	if victimDeaths != 1 {
		t.Fatalf("got victim deaths %d, want 1", victimDeaths)
	}
}
