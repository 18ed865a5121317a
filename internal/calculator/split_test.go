package calculator

import (
	"errors"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name         string
		amount       int64
		participants []string
		want         []int64
		wantErr      error
	}{
		{
			name:         "even split",
			amount:       900,
			participants: []string{"a", "b", "c"},
			want:         []int64{300, 300, 300},
		},
		{
			name:         "remainder goes to first participants in input order",
			amount:       1000,
			participants: []string{"a", "b", "c"},
			want:         []int64{334, 333, 333},
		},
		{
			name:         "two cents remainder",
			amount:       1001,
			participants: []string{"c", "a", "b"},
			want:         []int64{334, 334, 333},
		},
		{
			name:         "single participant takes everything",
			amount:       777,
			participants: []string{"a"},
			want:         []int64{777},
		},
		{
			name:         "amount smaller than participant count",
			amount:       2,
			participants: []string{"a", "b", "c"},
			want:         []int64{1, 1, 0},
		},
		{
			name:         "no participants",
			amount:       100,
			participants: []string{},
			wantErr:      ErrNoParticipants,
		},
		{
			name:         "zero amount",
			amount:       0,
			participants: []string{"a"},
			wantErr:      ErrInvalidAmount,
		},
		{
			name:         "negative amount",
			amount:       -100,
			participants: []string{"a"},
			wantErr:      ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.amount, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Split() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Split() unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Split() returned %d shares, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("share[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// Shares must sum back to the amount exactly, for any amount and
// participant count.
func TestSplit_Conservation(t *testing.T) {
	participants := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		participants = append(participants, string(rune('a'+i)))
		for amount := int64(1); amount <= 500; amount++ {
			shares, err := Split(amount, participants)
			if err != nil {
				t.Fatalf("Split(%d, %d participants) error: %v", amount, len(participants), err)
			}
			var sum int64
			for _, s := range shares {
				sum += s
			}
			if sum != amount {
				t.Fatalf("Split(%d, %d participants) sums to %d", amount, len(participants), sum)
			}
		}
	}
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		major float64
		want  int64
	}{
		{0, 0},
		{1, 100},
		{12.34, 1234},
		{10.125, 1013}, // half rounds up
		{10.124, 1012},
		{0.999, 100},
		{99.99, 9999},
	}
	for _, tt := range tests {
		if got := MinorUnits(tt.major); got != tt.want {
			t.Errorf("MinorUnits(%v) = %d, want %d", tt.major, got, tt.want)
		}
	}
}
