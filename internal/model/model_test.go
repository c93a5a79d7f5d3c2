package model

import (
	"reflect"
	"testing"
	"time"
)

func TestGenresRoundTrip(t *testing.T) {
	cases := [][]string{
		{},
		{"Jazz"},
		{"Jazz", "Reggae", "Swing", "Classical", "Folk"},
		{"Rock n Roll", "R&B", "Hip-Hop"},
	}
	for _, genres := range cases {
		got := SplitGenres(JoinGenres(genres))
		if !reflect.DeepEqual(got, genres) {
			t.Fatalf("round trip of %v gave %v", genres, got)
		}
	}
}

func TestSplitGenres_Empty(t *testing.T) {
	got := SplitGenres("")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestChoicesHaveNoDelimiter(t *testing.T) {
	for _, g := range Genres {
		if SplitGenres(g)[0] != g {
			t.Fatalf("genre %q contains the delimiter", g)
		}
	}
	if !IsGenre("Jazz") || IsGenre("jazz") || IsGenre("Jazz,Blues") {
		t.Fatalf("IsGenre mismatch")
	}
	if !IsState("CA") || IsState("ZZ") {
		t.Fatalf("IsState mismatch")
	}
}

func TestGroupByArea(t *testing.T) {
	venues := []VenueSummary{
		{ID: 1, Name: "The Musical Hop", City: "San Francisco", State: "CA"},
		{ID: 3, Name: "Park Square Live Music & Coffee", City: "San Francisco", State: "CA"},
		{ID: 2, Name: "The Dueling Pianos Bar", City: "New York", State: "NY"},
	}
	areas := GroupByArea(venues)
	if len(areas) != 2 {
		t.Fatalf("expected 2 areas, got %d", len(areas))
	}
	if areas[0].State != "CA" || areas[0].City != "San Francisco" || len(areas[0].Venues) != 2 {
		t.Fatalf("unexpected first area: %+v", areas[0])
	}
	if areas[1].State != "NY" || areas[1].Venues[0].ID != 2 {
		t.Fatalf("unexpected second area: %+v", areas[1])
	}
}

func TestPartitionShows(t *testing.T) {
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	shows := []ShowListing{
		{ID: 1, StartTime: now.Add(-48 * time.Hour)},
		{ID: 2, StartTime: now},
		{ID: 3, StartTime: now.Add(time.Second)},
		{ID: 4, StartTime: now.Add(72 * time.Hour)},
	}
	past, upcoming := PartitionShows(shows, now)
	if len(past) != 2 || past[0].ID != 1 || past[1].ID != 2 {
		t.Fatalf("unexpected past shows: %+v", past)
	}
	if len(upcoming) != 2 || upcoming[0].ID != 3 || upcoming[1].ID != 4 {
		t.Fatalf("unexpected upcoming shows: %+v", upcoming)
	}
}
