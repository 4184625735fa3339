package domain

import "time"

// Lifecycle states of a lane.
type LaneStatus string

const (
	LaneStatusPending  LaneStatus = "pending"
	LaneStatusPosted   LaneStatus = "posted"
	LaneStatusArchived LaneStatus = "archived"
)

// Load size flags accepted by the marketplace.
const (
	LoadFull    = "full"
	LoadPartial = "partial"
)

// Place is a free-text location as entered on a lane.
type Place struct {
	City  string
	State string
	Zip   string
}

// Weight policy of a lane: either a fixed weight or a per-row random
// draw from [Min, Max].
type WeightSpec struct {
	Randomize bool
	Fixed     int
	Min       int
	Max       int
}

// Represents a single freight shipment request to be posted.
// A Lane is owned by an organization and only mutated by the generation
// pipeline (reference id, status, posted_at) inside a transaction.
type Lane struct {
	ID             string
	OrganizationID string
	Origin         Place
	Destination    Place
	Equipment      string
	Weight         WeightSpec
	LengthFt       int
	FullPartial    string
	PickupEarliest time.Time
	PickupLatest   time.Time
	Commodity      string
	Comment        string
	Status         LaneStatus
	ReferenceID    string
	PostedAt       *time.Time
}
