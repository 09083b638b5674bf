package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRecordString(t *testing.T) {
	rec := Record{
		"id":     "  A00012 ",
		"points": float64(1200),
		"ratio":  1.5,
		"count":  int64(7),
		"raw":    []byte("bytes"),
		"date":   time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
		"nil":    nil,
	}

	cases := []struct {
		col  string
		want string
	}{
		{"id", "A00012"},
		{"points", "1200"},
		{"ratio", "1.5"},
		{"count", "7"},
		{"raw", "bytes"},
		{"date", "2025-05-01"},
		{"nil", ""},
		{"missing", ""},
	}

	for _, c := range cases {
		if got := rec.String(c.col); got != c.want {
			t.Fatalf("String(%q)=%q; want %q", c.col, got, c.want)
		}
	}
}

func TestQueryKindIsPoint(t *testing.T) {
	if !QueryMemberByID.IsPoint() || !QueryFacilityByExactName.IsPoint() {
		t.Fatal("member and exact facility lookups are point lookups")
	}
	if QueryFaqByCategory.IsPoint() || QueryFitnessLogByNameAndPhone.IsPoint() {
		t.Fatal("categorical lookups must not be point lookups")
	}
}

func TestBackendErrorMatchesSentinel(t *testing.T) {
	cause := errors.New("403 forbidden")
	err := fmt.Errorf("lookup: %w", &BackendError{Sheet: "Members", Err: cause})

	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatal("expected errors.Is to match ErrBackendUnavailable")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected the cause to stay reachable")
	}
	var be *BackendError
	if !errors.As(err, &be) || be.Sheet != "Members" {
		t.Fatalf("errors.As failed: %v", be)
	}
}

func TestConversationState(t *testing.T) {
	if !Idle.IsIdle() {
		t.Fatal("Idle must be idle")
	}
	if AwaitingInput(ExpectMemberID).IsIdle() {
		t.Fatal("awaiting state must not be idle")
	}
}
