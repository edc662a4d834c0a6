package models

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/desertthunder/cinedb/internal/shared"
)

func TestMovieValidate(t *testing.T) {
	tc := []struct {
		name    string
		movie   Movie
		wantErr bool
	}{
		{name: "valid", movie: Movie{Title: "Dune", DurationMinutes: 155, Budget: 165000000}},
		{name: "valid with release date", movie: Movie{Title: "Dune", ReleaseDate: "2021-10-22", DurationMinutes: 155}},
		{name: "empty title", movie: Movie{Title: "", DurationMinutes: 90}, wantErr: true},
		{name: "whitespace title", movie: Movie{Title: "   ", DurationMinutes: 90}, wantErr: true},
		{name: "negative duration", movie: Movie{Title: "X", DurationMinutes: -5}, wantErr: true},
		{name: "zero duration", movie: Movie{Title: "X", DurationMinutes: 0}, wantErr: true},
		{name: "negative budget", movie: Movie{Title: "X", DurationMinutes: 90, Budget: -1}, wantErr: true},
		{name: "zero budget", movie: Movie{Title: "X", DurationMinutes: 90, Budget: 0}},
		{name: "NaN budget", movie: Movie{Title: "X", DurationMinutes: 90, Budget: math.NaN()}, wantErr: true},
		{name: "infinite budget", movie: Movie{Title: "X", DurationMinutes: 90, Budget: math.Inf(1)}, wantErr: true},
		{name: "malformed date", movie: Movie{Title: "X", DurationMinutes: 90, ReleaseDate: "22/10/2021"}, wantErr: true},
		{name: "impossible date", movie: Movie{Title: "X", DurationMinutes: 90, ReleaseDate: "2021-02-30"}, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.movie.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestReviewValidate(t *testing.T) {
	tc := []struct {
		name    string
		rating  float64
		date    string
		wantErr bool
	}{
		{name: "lower bound", rating: 0},
		{name: "upper bound", rating: 10},
		{name: "fractional", rating: 7.5, date: "2024-01-02"},
		{name: "below range", rating: -0.1, wantErr: true},
		{name: "above range", rating: 10.5, wantErr: true},
		{name: "NaN", rating: math.NaN(), wantErr: true},
		{name: "infinite", rating: math.Inf(1), wantErr: true},
		{name: "bad date", rating: 5, date: "yesterday", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := Review{Rating: tt.rating, ReviewDate: tt.date}.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestUserValidate(t *testing.T) {
	if err := (User{Username: "ana", Email: "ana@example.com"}).Validate(); err != nil {
		t.Errorf("expected valid user, got %v", err)
	}
	if err := (User{Username: "ana", Email: "ana@example.com", JoinDate: "2024-05-01"}).Validate(); err != nil {
		t.Errorf("expected valid join date, got %v", err)
	}
	for _, u := range []User{
		{Username: "", Email: "ana@example.com"},
		{Username: "ana", Email: ""},
		{Username: "ana", Email: "not-an-email"},
		{Username: "ana", Email: "ana@example.com", JoinDate: "last week"},
	} {
		if err := u.Validate(); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation for %+v, got %v", u, err)
		}
	}
}

func TestValidateName(t *testing.T) {
	if err := ValidateName(Genre, "Drama"); err != nil {
		t.Errorf("expected valid name, got %v", err)
	}
	if err := ValidateName(Genre, "  "); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestKind(t *testing.T) {
	t.Run("ParseKind", func(t *testing.T) {
		tc := map[string]Kind{
			"genre":     Genre,
			"Genres":    Genre,
			"DIRECTOR":  Director,
			"actors":    Actor,
			" studio ":  Studio,
			"directors": Director,
		}
		for input, want := range tc {
			got, err := ParseKind(input)
			if err != nil {
				t.Errorf("ParseKind(%q) error = %v", input, err)
				continue
			}
			if got != want {
				t.Errorf("ParseKind(%q) = %v, want %v", input, got, want)
			}
		}

		if _, err := ParseKind("composer"); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation for unknown kind, got %v", err)
		}
	})

	t.Run("text round trip in JSON map keys", func(t *testing.T) {
		in := Associations{Genre: {"Drama"}, Studio: {}}
		data, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}

		var out Associations
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("failed to unmarshal %s: %v", data, err)
		}

		if !reflect.DeepEqual(out[Genre], []string{"Drama"}) {
			t.Errorf("expected genre Drama, got %v", out[Genre])
		}
		if names, ok := out[Studio]; !ok || len(names) != 0 {
			t.Errorf("expected explicit empty studio list, got %v (present=%v)", names, ok)
		}
	})

	t.Run("invalid kind", func(t *testing.T) {
		if Kind(42).Valid() {
			t.Error("expected kind 42 to be invalid")
		}
		if _, err := Kind(42).MarshalText(); err == nil {
			t.Error("expected MarshalText to fail for invalid kind")
		}
	})
}

func TestAssociations(t *testing.T) {
	t.Run("AssociationSet.Map keeps only non-nil lists", func(t *testing.T) {
		set := AssociationSet{Genres: []string{"Sci-Fi"}, Actors: []string{}}
		a := set.Map()

		if len(a) != 2 {
			t.Fatalf("expected 2 kinds, got %v", a)
		}
		if _, ok := a[Director]; ok {
			t.Error("nil directors should be absent")
		}
		if names, ok := a[Actor]; !ok || len(names) != 0 {
			t.Error("empty actors should be present and empty")
		}
		if !reflect.DeepEqual(a.Kinds(), []Kind{Genre, Actor}) {
			t.Errorf("unexpected kinds order %v", a.Kinds())
		}
	})

	t.Run("AssociationSet from JSON distinguishes missing from empty", func(t *testing.T) {
		var set AssociationSet
		if err := json.Unmarshal([]byte(`{"genres":[],"studios":["Legendary"]}`), &set); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}
		a := set.Map()
		if _, ok := a[Genre]; !ok {
			t.Error("explicit empty genres should be present")
		}
		if _, ok := a[Director]; ok {
			t.Error("missing directors should be absent")
		}
	})

	t.Run("Dedupe", func(t *testing.T) {
		got := Dedupe([]string{"Drama", "Sci-Fi", "Drama", "sci-fi", "Sci-Fi"})
		want := []string{"Drama", "Sci-Fi", "sci-fi"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Dedupe() = %v, want %v", got, want)
		}
	})
}

func TestMovieDetailsNames(t *testing.T) {
	var d MovieDetails
	for i, k := range Kinds {
		d.SetNames(k, []string{k.String(), string(rune('a' + i))})
	}
	for _, k := range Kinds {
		if got := d.Names(k); len(got) != 2 || got[0] != k.String() {
			t.Errorf("Names(%v) = %v", k, got)
		}
	}
}
