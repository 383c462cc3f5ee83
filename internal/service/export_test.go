package service

import (
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// NewTestElasticsearchHotels points a client at addr without TLS or retries.
func NewTestElasticsearchHotels(addr, index string) (*ElasticsearchHotels, error) {
	return newElasticsearchHotels(elasticsearch.Config{Addresses: []string{addr}}, index)
}

// SetClock replaces the booking clock.
func (s *SimulatedBookings) SetClock(now func() time.Time) {
	s.now = now
}

var ParsePrice = parsePrice

var NewAuditRow = newAuditRow
