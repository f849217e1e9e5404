package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djacobfi/8bit-poker/poker"
)

func TestParseHands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   []string
		want    int
		wantErr bool
	}{
		{"single hand", []string{"AcKh"}, 1, false},
		{"multiple hands", []string{"AcKh", "KdQs"}, 2, false},
		{"hand with spaces", []string{"Ac Kh"}, 1, false},
		{"too many cards", []string{"AcKhQd"}, 0, true},
		{"too few cards", []string{"Ac"}, 0, true},
		{"invalid card", []string{"AcXy"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hands, err := parseHands(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, hands, tt.want)
		})
	}
}

func TestMade(t *testing.T) {
	t.Parallel()

	hand := poker.MustParseCards("AsAh")
	assert.Equal(t, "Premium", made(hand, nil))
	assert.Equal(t, "Three of a Kind", made(hand, poker.MustParseCards("Ad 7c 2h")))
}

func TestRun(t *testing.T) {
	t.Parallel()

	seed := int64(5)
	var out bytes.Buffer
	err := run(context.Background(), &out, CLI{
		Hands:         []string{"AsAh", "KdKc"},
		Board:         "2c 7d 9h",
		Iterations:    2000,
		Seed:          &seed,
		Possibilities: true,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "2000 iterations")
	assert.Contains(t, out.String(), "One Pair")
}

func TestRunRejectsDuplicates(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, CLI{
		Hands:      []string{"AsAh", "AsKc"},
		Iterations: 10,
	})
	require.ErrorIs(t, err, poker.ErrInvalidHand)
}
