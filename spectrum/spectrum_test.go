package spectrum

import (
	"errors"
	"testing"
)

func TestNewValidates(t *testing.T) {
	for _, tc := range []struct {
		name    string
		wl      []float64
		counts  []float64
		wantErr error
	}{
		{name: "ok", wl: []float64{400, 500, 600}, counts: []float64{1, 2, 3}},
		{name: "mismatch", wl: []float64{400, 500}, counts: []float64{1}, wantErr: ErrLengthMismatch},
		{name: "empty", wl: nil, counts: nil, wantErr: ErrEmpty},
		{name: "duplicate", wl: []float64{400, 400}, counts: []float64{1, 2}, wantErr: ErrNotAscending},
		{name: "descending", wl: []float64{500, 400}, counts: []float64{1, 2}, wantErr: ErrNotAscending},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(tc.wl, tc.counts)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("got err %v, want %v", err, tc.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if s.Len() != len(tc.wl) {
				t.Fatalf("Len = %d, want %d", s.Len(), len(tc.wl))
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s, err := New([]float64{400, 500}, []float64{10, 20})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c := s.Clone()
	c.Counts[0] = -1

	if s.Counts[0] != 10 {
		t.Fatalf("Clone shares backing array with original")
	}
}
