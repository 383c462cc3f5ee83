package service_test

import (
	"testing"

	"github.com/tournaija/tournaija/internal/service"
)

func TestIntentRouter(t *testing.T) {
	r := service.NewIntentRouter()

	tests := []struct {
		query string
		want  service.Intent
	}{
		{"Find me hotels in Lagos", service.IntentHotelSearch},
		{"where can I stay in Calabar?", service.IntentHotelSearch},
		{"Book the Eko Hotel for Ada Obi", service.IntentBooking},
		{"what's the status of TOURNAIJA-1A2B3C4D", service.IntentBooking},
		{"How do I get from Lagos to Abuja by bus", service.IntentRoute},
		{"Plan my 3 days in Calabar", service.IntentItinerary},
		{"Can you recommend tourist attractions in Enugu", service.IntentRecommendations},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res := r.Route(tt.query)
			if res.Intent != tt.want {
				t.Errorf("Route(%q) = %q, want %q (confidence %.2f: %s)",
					tt.query, res.Intent, tt.want, res.Confidence, res.Reasoning)
			}
			if res.Confidence <= 0 || res.Confidence > 1 {
				t.Errorf("confidence out of range: %.2f", res.Confidence)
			}
			if res.Reasoning == "" {
				t.Error("reasoning should not be empty")
			}
		})
	}
}

func TestIntentRouter_WordBoundaries(t *testing.T) {
	r := service.NewIntentRouter()
	// "bookshop" and "roomy" must not count as booking or hotel keywords
	res := r.Route("is there a nice bookshop that feels roomy")
	if res.Intent != service.IntentChat {
		t.Errorf("expected chat, got %s (%v)", res.Intent, res.Scores)
	}
}

func TestIntentRouter_NoKeywords(t *testing.T) {
	r := service.NewIntentRouter()
	res := r.Route("what is jollof rice?")
	if res.Intent != service.IntentChat {
		t.Errorf("default should be chat, got %s", res.Intent)
	}
	if res.Confidence != 0.5 {
		t.Errorf("default confidence = %.2f, want 0.5", res.Confidence)
	}
}
