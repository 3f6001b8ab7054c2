package domain

import "time"

// AggregateTaxRate is applied to the whole subtotal. Individual room
// records carry their own taxPercentage field, but the aggregate path
// has always used the flat rate.
const AggregateTaxRate = 18

// Nights returns the billed night count for a stay window:
// ceil of the elapsed whole days, floored at one night. An incomplete
// window also bills one night.
func Nights(w StayWindow) int {
	if !w.Complete() {
		return 1
	}
	d := w.CheckOut.Sub(w.CheckIn)
	if d < 0 {
		d = -d
	}
	nights := int((d + 24*time.Hour - time.Nanosecond) / (24 * time.Hour))
	if nights < 1 {
		nights = 1
	}
	return nights
}

// ComputeBreakdown derives the full amount breakdown from the current
// selections, the room catalog, and the stay window. Selections whose
// room id is not in the catalog are skipped; that tolerates selections
// left stale by a catalog refresh. Pure function: same inputs, same
// output.
func ComputeBreakdown(w StayWindow, selections map[string]Selection, rooms []RoomType) AmountBreakdown {
	nights := Nights(w)

	byID := make(map[string]RoomType, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}

	var b AmountBreakdown
	b.Nights = nights
	for id, sel := range selections {
		if sel.RoomCount <= 0 {
			continue
		}
		room, ok := byID[id]
		if !ok {
			continue
		}
		b.RoomCharges += room.PricePerNight * int64(nights) * int64(sel.RoomCount)
		b.GuestCharges += int64(sel.Adults) * room.PerAdultPrice
		// both child bands share the per-child rate
		b.GuestCharges += int64(sel.ChildAge5to12+sel.ChildBelow5) * room.PerChildPrice
		b.TotalRooms += sel.RoomCount
		b.TotalAdults += sel.Adults
		b.TotalChildren += sel.ChildAge5to12 + sel.ChildBelow5
	}

	b.Subtotal = b.RoomCharges + b.GuestCharges
	b.Taxes = roundPercent(b.Subtotal, AggregateTaxRate)
	b.Discount = 0
	b.GrandTotal = b.Subtotal + b.Taxes - b.Discount
	return b
}

// roundPercent computes amount*pct/100 rounded half-up.
func roundPercent(amount int64, pct int64) int64 {
	return (amount*pct + 50) / 100
}
