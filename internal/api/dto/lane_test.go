package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaneRequestToDomain(t *testing.T) {
	req := LaneRequest{
		ID:             " L-1 ",
		Origin:         PlaceRequest{City: "Chicago", State: "IL"},
		Destination:    PlaceRequest{City: "Atlanta", State: "GA"},
		Equipment:      " fd ",
		PickupEarliest: "2026-10-20",
	}

	lane, err := req.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, "L-1", lane.ID)
	assert.Equal(t, "FD", lane.Equipment)
	assert.Equal(t, 20, lane.PickupEarliest.Day())

	req.PickupLatest = "10/21/2026"
	_, err = req.ToDomain()
	assert.ErrorContains(t, err, "pickup_latest")
}
