package upstream

import "sonachala/internal/domain"

// FallbackHotel is served when the hotel record cannot be fetched.
func FallbackHotel() domain.Hotel {
	return domain.Hotel{
		Name:        "Sonachala Hotel",
		Location:    "Friends Colony, Tiruvannamalai",
		Description: "A peaceful retreat in the foothills of Arunachala. Experience spiritual rejuvenation amidst serene surroundings.",
		Contact:     "+91-XXXX-XXXXXX",
		Address:     "Friends Colony, Tiruvannamalai, Tamil Nadu, India - 606601",
		Stars:       5,
	}
}

// FallbackRooms is the fixed six-room dataset used when the catalog
// cannot be fetched. The page must always have something to show, so a
// backend outage degrades to this deterministic inventory instead of
// an error. Callers are told via CatalogSource that the data is not live.
func FallbackRooms(hotelID string) []domain.RoomType {
	return []domain.RoomType{
		{
			ID:             "room1",
			Hotel:          hotelID,
			Type:           "Deluxe Room",
			Description:    "Elegant room with comfortable amenities and stunning views of Arunachala hill.",
			TotalRooms:     10,
			PricePerNight:  2500,
			BedType:        "King Bed",
			PerAdultPrice:  100,
			PerChildPrice:  50,
			Discount:       200,
			TaxPercentage:  18,
			MaxGuests:      2,
			RoomSize:       "35 sq m",
			Availability:   "Available",
			Image:          "/assets/deluxe-room.jpg",
			AvailableCount: 8,
		},
		{
			ID:             "room2",
			Hotel:          hotelID,
			Type:           "Executive Room",
			Description:    "Premium room with modern amenities and work desk perfect for business travelers.",
			TotalRooms:     6,
			PricePerNight:  3500,
			BedType:        "Queen Bed",
			PerAdultPrice:  120,
			PerChildPrice:  60,
			Discount:       300,
			TaxPercentage:  18,
			MaxGuests:      2,
			RoomSize:       "45 sq m",
			Availability:   "Available",
			Image:          "/assets/executive-room.jpg",
			AvailableCount: 5,
		},
		{
			ID:             "room3",
			Hotel:          hotelID,
			Type:           "Manor Suite",
			Description:    "Spacious suite with separate living area, perfect for families or extended stays.",
			TotalRooms:     4,
			PricePerNight:  5500,
			BedType:        "King Bed + Sofa",
			PerAdultPrice:  150,
			PerChildPrice:  75,
			Discount:       500,
			TaxPercentage:  18,
			MaxGuests:      4,
			RoomSize:       "65 sq m",
			Availability:   "Available",
			Image:          "/assets/manor-suite.jpg",
			AvailableCount: 3,
		},
		{
			ID:             "room4",
			Hotel:          hotelID,
			Type:           "Signature Room",
			Description:    "Luxury room with premium amenities and personalized services.",
			TotalRooms:     2,
			PricePerNight:  4500,
			BedType:        "King Bed",
			PerAdultPrice:  140,
			PerChildPrice:  70,
			Discount:       400,
			TaxPercentage:  18,
			MaxGuests:      2,
			RoomSize:       "55 sq m",
			Availability:   "Available",
			Image:          "/assets/signature-room.jpg",
			AvailableCount: 2,
		},
		{
			ID:             "room5",
			Hotel:          hotelID,
			Type:           "Standard Room",
			Description:    "Comfortable room with essential amenities at affordable rates.",
			TotalRooms:     15,
			PricePerNight:  1500,
			BedType:        "Twin Beds",
			PerAdultPrice:  80,
			PerChildPrice:  40,
			Discount:       100,
			TaxPercentage:  18,
			MaxGuests:      2,
			RoomSize:       "25 sq m",
			Availability:   "Available",
			Image:          "/assets/standard-room.jpg",
			AvailableCount: 12,
		},
		{
			ID:             "room6",
			Hotel:          hotelID,
			Type:           "Studio Suite",
			Description:    "Contemporary suite with modern design and kitchenette.",
			TotalRooms:     3,
			PricePerNight:  4000,
			BedType:        "Queen Bed",
			PerAdultPrice:  130,
			PerChildPrice:  65,
			Discount:       350,
			TaxPercentage:  18,
			MaxGuests:      3,
			RoomSize:       "50 sq m",
			Availability:   "Available",
			Image:          "/assets/studio-suite.jpg",
			AvailableCount: 2,
		},
	}
}
