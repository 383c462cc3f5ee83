package service

import (
	"context"
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a hotel or booking does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable marks a failed call to an external travel provider.
	ErrUnavailable = errors.New("travel provider unavailable")
)

// VendorPrice is one vendor's nightly offer. Missing values are nil.
type VendorPrice struct {
	Vendor *string  `json:"vendor"`
	Price  *float64 `json:"price"`
	Tax    *float64 `json:"tax"`
}

type Hotel struct {
	HotelName   string        `json:"hotelName"`
	HotelID     string        `json:"hotelId"`
	Location    string        `json:"location,omitempty"`
	Description string        `json:"description,omitempty"`
	Vendors     []VendorPrice `json:"vendors,omitempty"`
}

// HotelSearcher finds hotels in a city. An unknown city yields an empty list,
// not an error.
type HotelSearcher interface {
	SearchHotels(ctx context.Context, city string) ([]Hotel, error)
}

// StaticHotels is a simulated hotel provider backed by a fixed catalog.
type StaticHotels struct {
	byCity map[string][]Hotel
}

func NewStaticHotels(hotels []Hotel) *StaticHotels {
	s := &StaticHotels{byCity: make(map[string][]Hotel)}
	for _, h := range hotels {
		city := cityOf(h.Location)
		s.byCity[city] = append(s.byCity[city], h)
	}
	return s
}

// NewDefaultStaticHotels returns the built-in catalog.
func NewDefaultStaticHotels() *StaticHotels {
	return NewStaticHotels(DefaultHotelCatalog())
}

func (s *StaticHotels) SearchHotels(ctx context.Context, city string) ([]Hotel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hotels := s.byCity[normalizeCity(city)]
	out := make([]Hotel, len(hotels))
	copy(out, hotels)
	return out, nil
}

// Cities lists the catalog's cities, sorted.
func (s *StaticHotels) Cities() []string {
	cities := make([]string, 0, len(s.byCity))
	for c := range s.byCity {
		cities = append(cities, c)
	}
	sort.Strings(cities)
	return cities
}

// cityOf takes "Lagos, Lagos State" to "lagos".
func cityOf(location string) string {
	city, _, _ := strings.Cut(location, ",")
	return normalizeCity(city)
}

func normalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

func str(s string) *string   { return &s }
func num(f float64) *float64 { return &f }
func offer(v string, p, t float64) VendorPrice {
	return VendorPrice{Vendor: str(v), Price: num(p), Tax: num(t)}
}

// DefaultHotelCatalog lists well-known hotels in major Nigerian cities with
// indicative nightly prices in Naira.
func DefaultHotelCatalog() []Hotel {
	return []Hotel{
		{
			HotelName:   "Eko Hotels & Suites",
			HotelID:     "ng-lag-eko",
			Location:    "Lagos, Lagos State",
			Description: "Beachside landmark on Victoria Island with four towers, pools and a conference centre.",
			Vendors:     []VendorPrice{offer("Booking.com", 185000, 13875), offer("Hotels.com", 192500, 14437.5)},
		},
		{
			HotelName:   "The Wheatbaker",
			HotelID:     "ng-lag-wheatbaker",
			Location:    "Lagos, Lagos State",
			Description: "Boutique hotel in Ikoyi with a curated art collection and quiet garden terrace.",
			Vendors:     []VendorPrice{offer("Expedia", 210000, 15750)},
		},
		{
			HotelName:   "Radisson Blu Anchorage",
			HotelID:     "ng-lag-radisson",
			Location:    "Lagos, Lagos State",
			Description: "Lagoon-front rooms on Victoria Island, close to the Lekki-Ikoyi Link Bridge.",
			Vendors:     []VendorPrice{offer("Booking.com", 158000, 11850), offer("Agoda", 151200, 11340)},
		},
		{
			HotelName:   "Transcorp Hilton",
			HotelID:     "ng-abv-transcorp",
			Location:    "Abuja, FCT",
			Description: "Maitama institution with views of Aso Rock, several restaurants and a large outdoor pool.",
			Vendors:     []VendorPrice{offer("Hilton.com", 175000, 13125), offer("Booking.com", 181000, 13575)},
		},
		{
			HotelName:   "Fraser Suites",
			HotelID:     "ng-abv-fraser",
			Location:    "Abuja, FCT",
			Description: "Serviced apartments in the Central Business District suited to longer stays.",
			Vendors:     []VendorPrice{offer("Expedia", 142000, 10650)},
		},
		{
			HotelName:   "Nike Lake Resort",
			HotelID:     "ng-enu-nikelake",
			Location:    "Enugu, Enugu State",
			Description: "Lakeside resort with chalets, walking trails and a golf course.",
			Vendors:     []VendorPrice{offer("Booking.com", 68000, 5100)},
		},
		{
			HotelName:   "Transcorp Hotels Calabar",
			HotelID:     "ng-cbq-transcorp",
			Location:    "Calabar, Cross River State",
			Description: "Garden hotel a short drive from Marina Resort and the Calabar Carnival route.",
			Vendors:     []VendorPrice{offer("Hotels.com", 72000, 5400), {Vendor: str("Walk-in"), Price: nil, Tax: nil}},
		},
		{
			HotelName:   "Hotel Presidential",
			HotelID:     "ng-phc-presidential",
			Location:    "Port Harcourt, Rivers State",
			Description: "Long-standing GRA hotel with a pool, tennis courts and conference halls.",
			Vendors:     []VendorPrice{offer("Booking.com", 85000, 6375)},
		},
		{
			HotelName:   "Premier Hotel",
			HotelID:     "ng-ibd-premier",
			Location:    "Ibadan, Oyo State",
			Description: "Hilltop hotel on Mokola Hill overlooking the city.",
			Vendors:     []VendorPrice{offer("Agoda", 45000, 3375)},
		},
		{
			HotelName:   "Bristol Palace Hotel",
			HotelID:     "ng-kan-bristol",
			Location:    "Kano, Kano State",
			Description: "Central Kano hotel near the ancient city walls and Kurmi Market.",
			Vendors:     []VendorPrice{offer("Booking.com", 52000, 3900)},
		},
	}
}
