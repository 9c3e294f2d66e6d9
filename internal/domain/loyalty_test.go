package domain

import "testing"

func ladder() []LoyaltyLevel {
	return []LoyaltyLevel{
		{ID: "l1", Name: "Fan", PointsRequired: 10},
		{ID: "l2", Name: "Supporter", PointsRequired: 50},
		{ID: "l3", Name: "Champion", PointsRequired: 200},
	}
}

func TestResolveBelowFirstThreshold(t *testing.T) {
	current, next := Resolve(ladder(), 5)
	if current != nil {
		t.Fatalf("current = %v, want nil", current)
	}
	if next == nil || next.ID != "l1" {
		t.Fatalf("next = %v, want l1", next)
	}
}

func TestResolveMidLadder(t *testing.T) {
	current, next := Resolve(ladder(), 50)
	if current == nil || current.ID != "l2" {
		t.Fatalf("current = %v, want l2", current)
	}
	if next == nil || next.ID != "l3" {
		t.Fatalf("next = %v, want l3", next)
	}
}

func TestResolveMaxedOut(t *testing.T) {
	current, next := Resolve(ladder(), 1000)
	if current == nil || current.ID != "l3" {
		t.Fatalf("current = %v, want l3", current)
	}
	if next != nil {
		t.Fatalf("next = %v, want nil", next)
	}
}

func TestResolveEmptyLadder(t *testing.T) {
	current, next := Resolve(nil, 100)
	if current != nil || next != nil {
		t.Fatalf("got (%v, %v), want (nil, nil)", current, next)
	}
}

func TestResolveExactThreshold(t *testing.T) {
	current, _ := Resolve(ladder(), 10)
	if current == nil || current.ID != "l1" {
		t.Fatalf("current = %v, want l1 at exact threshold", current)
	}
}

func TestRank(t *testing.T) {
	levels := ladder()
	if got := Rank(levels, "l1"); got != 0 {
		t.Fatalf("Rank(l1) = %d, want 0", got)
	}
	if got := Rank(levels, "l3"); got != 2 {
		t.Fatalf("Rank(l3) = %d, want 2", got)
	}
	if got := Rank(levels, "missing"); got != -1 {
		t.Fatalf("Rank(missing) = %d, want -1", got)
	}
}

func TestSortLevels(t *testing.T) {
	levels := []LoyaltyLevel{
		{ID: "b", PointsRequired: 50},
		{ID: "a", PointsRequired: 10},
		{ID: "c", PointsRequired: 200},
	}
	SortLevels(levels)
	if levels[0].ID != "a" || levels[1].ID != "b" || levels[2].ID != "c" {
		t.Fatalf("order = %s,%s,%s, want a,b,c", levels[0].ID, levels[1].ID, levels[2].ID)
	}
}

func TestProgressForNoLevels(t *testing.T) {
	p := ProgressFor(nil, 42)
	if p.Current != 42 || p.Max != 42 || p.Label != "points" {
		t.Fatalf("progress = %+v", p)
	}
}

func TestProgressForTowardsNext(t *testing.T) {
	p := ProgressFor(ladder(), 30)
	if p.Current != 30 || p.Max != 50 {
		t.Fatalf("progress = %+v, want current 30 max 50", p)
	}
	if p.Label != "points to Supporter" {
		t.Fatalf("label = %q", p.Label)
	}
}

func TestProgressForMaxLevel(t *testing.T) {
	p := ProgressFor(ladder(), 500)
	if p.Max != 500 {
		t.Fatalf("progress = %+v, want capped at balance", p)
	}
	if p.Label != "max level: Champion" {
		t.Fatalf("label = %q", p.Label)
	}
}
