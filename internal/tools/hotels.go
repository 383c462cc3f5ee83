package tools

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tournaija/tournaija/internal/schema"
	"github.com/tournaija/tournaija/internal/service"
)

// Hotel schemas shared with the hotel search flow.
var (
	VendorPriceSchema = schema.Object("VendorPrice", "One vendor's nightly offer.",
		schema.Optional("vendor", schema.String("The booking site or vendor offering the price.").OrNull()),
		schema.Optional("price", schema.Number("Nightly price, excluding tax.").Min(0).OrNull()),
		schema.Optional("tax", schema.Number("Tax added to the nightly price.").Min(0).OrNull()),
	)

	HotelSchema = schema.Object("Hotel", "A hotel returned by the hotel search service.",
		schema.Required("hotelName", schema.String("The full name of the hotel.").NonEmpty()),
		schema.Required("hotelId", schema.String("Identifier used to book the hotel.").NonEmpty()),
		schema.Optional("location", schema.String("The city and state where the hotel is located.")),
		schema.Optional("description", schema.String("A short description of the hotel.")),
		schema.Optional("vendors", schema.Array(VendorPriceSchema, "Price options from different vendors.")),
	)

	SearchHotelsInputSchema = schema.Object("SearchHotelsInput", "Arguments for searchHotels.",
		schema.Required("city", schema.String("The city to search hotels in, e.g. Lagos.").NonEmpty()),
	)

	SearchHotelsOutputSchema = schema.Object("SearchHotelsOutput", "Hotels found in the requested city.",
		schema.Required("hotels", schema.Array(HotelSchema, "Hotels in the city. Empty when none were found.")),
	)
)

type SearchHotelsInput struct {
	City string `json:"city"`
}

type SearchHotelsOutput struct {
	Hotels []service.Hotel `json:"hotels"`
}

// SearchHotels returns the searchHotels tool backed by searcher.
func SearchHotels(searcher service.HotelSearcher) Tool {
	return New(NameSearchHotels,
		"Search for hotels in a specific city using a live API.",
		SearchHotelsInputSchema, SearchHotelsOutputSchema,
		func(ctx context.Context, in SearchHotelsInput) (SearchHotelsOutput, error) {
			city := strings.TrimSpace(in.City)
			if city == "" {
				return SearchHotelsOutput{}, &Failure{Code: string(CodeInvalidInput), Message: "city is required"}
			}
			hotels, err := searcher.SearchHotels(ctx, city)
			if err != nil {
				return SearchHotelsOutput{}, err
			}
			if hotels == nil {
				hotels = []service.Hotel{}
			}
			log.Info().Str("city", city).Int("hotels", len(hotels)).Msg("hotel search")
			return SearchHotelsOutput{Hotels: hotels}, nil
		})
}
