package domain

import "time"

// RoomType is one bookable room category with shared pricing and inventory.
// Field names mirror the upstream hotel API payload.
type RoomType struct {
	ID             string `json:"_id"`
	Hotel          string `json:"hotel"`
	Type           string `json:"type"`
	Description    string `json:"roomDescription"`
	TotalRooms     int    `json:"totalRooms"`
	PricePerNight  int64  `json:"pricePerNight"`
	BedType        string `json:"bedType"`
	PerAdultPrice  int64  `json:"perAdultPrice"`
	PerChildPrice  int64  `json:"perChildPrice"`
	Discount       int64  `json:"discount"`
	TaxPercentage  int    `json:"taxPercentage"` // carried from upstream; aggregate totals use a fixed rate
	MaxGuests      int    `json:"maxGuests"`
	RoomSize       string `json:"roomSize"`
	Availability   string `json:"availability"`
	Image          string `json:"image"`
	AvailableCount int    `json:"availableCount"`
}

// SoldOut reports whether the room is marked available but has no
// remaining inventory.
func (r RoomType) SoldOut() bool {
	return r.Availability == "Available" && r.AvailableCount == 0
}

// CatalogSource tells whether a snapshot came from the upstream API or
// from the built-in fallback dataset.
type CatalogSource string

const (
	SourceLive     CatalogSource = "live"
	SourceFallback CatalogSource = "fallback"
)

// CatalogSnapshot is the room catalog as of one fetch, partitioned for
// display. It is replaced wholesale on every refresh, never merged.
type CatalogSnapshot struct {
	Available   []RoomType    `json:"available"`
	SoldOut     []RoomType    `json:"soldOut"`
	Unavailable []RoomType    `json:"unavailable"`
	Source      CatalogSource `json:"source"`
	FetchedAt   time.Time     `json:"fetchedAt"`
}

// UsingFallback reports whether the snapshot is backed by the built-in
// dataset rather than a live upstream response.
func (s CatalogSnapshot) UsingFallback() bool { return s.Source == SourceFallback }

// Find locates a room type by id across all partitions.
func (s CatalogSnapshot) Find(id string) (RoomType, bool) {
	for _, part := range [][]RoomType{s.Available, s.SoldOut, s.Unavailable} {
		for _, r := range part {
			if r.ID == id {
				return r, true
			}
		}
	}
	return RoomType{}, false
}

// All returns every room in the snapshot in partition order.
func (s CatalogSnapshot) All() []RoomType {
	out := make([]RoomType, 0, len(s.Available)+len(s.SoldOut)+len(s.Unavailable))
	out = append(out, s.Available...)
	out = append(out, s.SoldOut...)
	out = append(out, s.Unavailable...)
	return out
}

// PartitionRooms splits an upstream room list into the three display
// partitions: available (inventory left), sold out (marked available but
// none left), and everything else.
func PartitionRooms(rooms []RoomType, source CatalogSource, at time.Time) CatalogSnapshot {
	snap := CatalogSnapshot{Source: source, FetchedAt: at}
	for _, r := range rooms {
		switch {
		case r.Availability == "Available" && r.AvailableCount > 0:
			snap.Available = append(snap.Available, r)
		case r.SoldOut():
			snap.SoldOut = append(snap.SoldOut, r)
		default:
			snap.Unavailable = append(snap.Unavailable, r)
		}
	}
	return snap
}

// Hotel is the descriptive record shown in the page header.
type Hotel struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Contact     string `json:"contact"`
	Address     string `json:"address"`
	Stars       int    `json:"stars,omitempty"`
}
