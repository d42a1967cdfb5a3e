package learning

import (
	"testing"

	"github.com/google/uuid"
)

func TestComputeProgress(t *testing.T) {
	cases := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 4, 0},
		{1, 4, 25},
		{2, 4, 50},
		{4, 4, 100},
		{5, 4, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
	}
	for _, tc := range cases {
		if got := ComputeProgress(tc.completed, tc.total); got != tc.want {
			t.Fatalf("ComputeProgress(%d,%d)=%d want %d", tc.completed, tc.total, got, tc.want)
		}
	}
}

func TestEncodeLessonSetKeepsFirstOccurrenceOrder(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	e := Enrollment{CompletedLessonIDs: EncodeLessonSet([]uuid.UUID{b, a, b, c, a})}
	got := e.CompletedLessons()
	if len(got) != 3 || got[0] != b || got[1] != a || got[2] != c {
		t.Fatalf("unexpected set: %v", got)
	}
}

func TestCompletedLessonsMalformed(t *testing.T) {
	e := Enrollment{CompletedLessonIDs: []byte(`{"nope":1}`)}
	if got := e.CompletedLessons(); len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}
}
