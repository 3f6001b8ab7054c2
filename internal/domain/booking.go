package domain

import "time"

// Selection is a visitor's chosen quantity and guest mix for one room type.
type Selection struct {
	RoomID        string `json:"roomId"`
	RoomCount     int    `json:"roomCount"`
	Adults        int    `json:"adults"`
	ChildAge5to12 int    `json:"childAge5to12"`
	ChildBelow5   int    `json:"childBelow5"`
}

// Normalize enforces the selection invariant: zero rooms means zero
// guests. Returns the adjusted selection.
func (s Selection) Normalize() Selection {
	if s.RoomCount == 0 {
		s.Adults, s.ChildAge5to12, s.ChildBelow5 = 0, 0, 0
	}
	return s
}

// Valid reports whether all counts are non-negative. Upper bounds
// against availableCount are a presentation concern and are not
// checked here.
func (s Selection) Valid() bool {
	return s.RoomCount >= 0 && s.Adults >= 0 && s.ChildAge5to12 >= 0 && s.ChildBelow5 >= 0
}

// StayWindow is the check-in/check-out date pair. Zero values mean the
// date has not been chosen yet.
type StayWindow struct {
	CheckIn  time.Time `json:"checkIn"`
	CheckOut time.Time `json:"checkOut"`
}

func (w StayWindow) Complete() bool { return !w.CheckIn.IsZero() && !w.CheckOut.IsZero() }

// GuestInfo holds the six required guest fields.
type GuestInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

// MissingFields returns the names of required fields that are empty,
// in a stable order.
func (g GuestInfo) MissingFields() []string {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"firstName", g.FirstName},
		{"lastName", g.LastName},
		{"email", g.Email},
		{"phone", g.Phone},
		{"city", g.City},
		{"country", g.Country},
	} {
		if f.val == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// AmountBreakdown is the derived pricing for the current selections.
// It is recomputed from scratch on every change, never mutated.
type AmountBreakdown struct {
	RoomCharges   int64 `json:"roomCharges"`
	GuestCharges  int64 `json:"guestCharges"`
	Subtotal      int64 `json:"subtotal"`
	Taxes         int64 `json:"taxesAndFees"`
	Discount      int64 `json:"discount"`
	GrandTotal    int64 `json:"grandTotal"`
	TotalRooms    int   `json:"totalRooms"`
	TotalAdults   int   `json:"totalAdults"`
	TotalChildren int   `json:"totalChildren"`
	Nights        int   `json:"nights"`
}

// ProofFile is the uploaded payment proof attachment.
type ProofFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// BookingRequest is assembled once at submission time from the session
// state and the computed totals.
type BookingRequest struct {
	HotelID       string
	Guest         GuestInfo
	Stay          StayWindow
	Selections    map[string]Selection
	FirstRoom     RoomType // first selected room, echoed upstream as roomDetails
	Amounts       AmountBreakdown
	PaymentMethod string
	Proof         ProofFile
	TransactionID string
	CorrelationID string // client-generated; display fallback only
	UserAgent     string
	ClientIP      string
}

// BookingResult reports the upstream outcome of a submission.
type BookingResult struct {
	ConfirmationID string `json:"confirmationId"`
	// FromServer is false when the upstream response carried no
	// identifier and the client correlation id was used instead.
	FromServer bool `json:"fromServer"`
}
