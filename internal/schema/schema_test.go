package schema_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tournaija/tournaija/internal/schema"
)

func tripSchema() *schema.Schema {
	activity := schema.Object("Activity", "One activity.",
		schema.Required("activityName", schema.String("Name.").NonEmpty()),
		schema.Required("time", schema.String("When.")),
	)
	return schema.Object("Trip", "A trip request.",
		schema.Required("destination", schema.String("Where to.").NonEmpty()),
		schema.Required("durationDays", schema.Integer("Days.").Min(1)),
		schema.Optional("rank", schema.Integer("Rank.").Min(1).Max(10)),
		schema.Optional("budget", schema.String("Budget.").OneOf("low", "medium", "high").WithDefault("medium")),
		schema.Optional("email", schema.String("Contact.").WithFormat(schema.FormatEmail)),
		schema.Optional("activities", schema.Array(activity, "Activities.")),
		schema.Optional("price", schema.Number("Price.").OrNull()),
	)
}

func TestValidateAcceptsValidInput(t *testing.T) {
	v, err := schema.Validate(tripSchema(), map[string]any{
		"destination":  "Lagos",
		"durationDays": 1,
	})
	require.NoError(t, err)

	m := v.(map[string]any)
	assert.Equal(t, "Lagos", m["destination"])
	assert.Equal(t, json.Number("1"), m["durationDays"])
	assert.Equal(t, "medium", m["budget"], "default should be applied")
}

func TestValidateReportsEveryOffendingField(t *testing.T) {
	_, err := schema.Validate(tripSchema(), map[string]any{
		"durationDays": 0,
		"rank":         11,
		"budget":       "luxury",
		"email":        "not-an-email",
	})
	require.Error(t, err)

	ve, ok := schema.AsValidationError(err)
	require.True(t, ok, "expected *schema.ValidationError, got %T", err)
	assert.Equal(t, "Trip", ve.Schema)
	for _, f := range []string{"destination", "durationDays", "rank", "budget", "email"} {
		assert.True(t, ve.Has(f), "missing issue for %q in %v", f, ve.Fields())
	}
}

func TestValidateTypeMismatch(t *testing.T) {
	_, err := schema.Validate(tripSchema(), `{"destination": 42, "durationDays": "two"}`)
	require.Error(t, err)
	ve, ok := schema.AsValidationError(err)
	require.True(t, ok)
	assert.True(t, ve.Has("destination"))
	assert.True(t, ve.Has("durationDays"))
}

func TestValidateNestedFieldPaths(t *testing.T) {
	_, err := schema.Validate(tripSchema(), map[string]any{
		"destination":  "Abuja",
		"durationDays": 2,
		"activities": []any{
			map[string]any{"activityName": "Zuma Rock", "time": "Morning"},
			map[string]any{"time": "Evening"},
		},
	})
	require.Error(t, err)
	ve, _ := schema.AsValidationError(err)
	assert.Equal(t, []string{"activities[1].activityName"}, ve.Fields())
}

func TestValidateDropsNullOptionalFields(t *testing.T) {
	v, err := schema.Validate(tripSchema(), `{"destination":"Calabar","durationDays":3,"activities":null,"price":null}`)
	require.NoError(t, err)
	m := v.(map[string]any)
	_, hasActivities := m["activities"]
	assert.False(t, hasActivities, "null optional list should be treated as absent")
	price, hasPrice := m["price"]
	assert.True(t, hasPrice, "nullable field keeps its explicit null")
	assert.Nil(t, price)
}

func TestValidateNormalizesIntegralNumbers(t *testing.T) {
	v, err := schema.Validate(tripSchema(), []byte(`{"destination":"Jos","durationDays":2.0}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("2"), v.(map[string]any)["durationDays"])

	_, err = schema.Validate(tripSchema(), []byte(`{"destination":"Jos","durationDays":2.5}`))
	require.Error(t, err)
}

func TestValidateMalformedJSON(t *testing.T) {
	_, err := schema.Validate(tripSchema(), []byte(`{"destination":`))
	require.Error(t, err)
	ve, ok := schema.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"(root)"}, ve.Fields())
}

func TestDecodePreservesNumbers(t *testing.T) {
	s := schema.Object("Route", "",
		schema.Required("durationMinutes", schema.Number("")),
		schema.Required("priceEstimate", schema.Number("")),
	)
	var out struct {
		DurationMinutes float64 `json:"durationMinutes"`
		PriceEstimate   float64 `json:"priceEstimate"`
	}
	require.NoError(t, schema.Decode(s, []byte(`{"durationMinutes": 482.5, "priceEstimate": 12345678.91}`), &out))
	assert.Equal(t, 482.5, out.DurationMinutes)
	assert.Equal(t, 12345678.91, out.PriceEstimate)
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ok   bool
	}{
		{"plain", `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":1}\n```", true},
		{"prose", `Here you go: {"a":1} enjoy!`, true},
		{"empty", "   ", false},
		{"no json", "I could not find anything", false},
		{"broken", `{"a":`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := schema.ParseJSON(tt.in)
			if !tt.ok {
				require.Error(t, err)
				assert.True(t, errors.Is(err, schema.ErrMalformedJSON))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, json.Number("1"), v.(map[string]any)["a"])
		})
	}
}

func TestDescribe(t *testing.T) {
	doc := schema.Describe(tripSchema())
	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, "Trip", doc["title"])
	assert.Equal(t, []any{"destination", "durationDays"}, doc["required"])

	props := doc["properties"].(map[string]any)
	duration := props["durationDays"].(map[string]any)
	assert.Equal(t, "integer", duration["type"])
	assert.Equal(t, 1.0, duration["minimum"])

	price := props["price"].(map[string]any)
	assert.Equal(t, []any{"number", "null"}, price["type"])

	raw, err := schema.DescribeJSON(tripSchema())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"format":"email"`)
}

func TestRegistry(t *testing.T) {
	r := schema.NewRegistry()
	trip := tripSchema()
	require.NoError(t, r.Register(trip))
	require.NoError(t, r.Register(trip), "re-registering the same schema is a no-op")
	require.Error(t, r.Register(tripSchema()), "a different schema with the same name is rejected")
	require.Error(t, r.Register(schema.String("unnamed")))

	got, ok := r.Lookup("Trip")
	require.True(t, ok)
	assert.Same(t, trip, got)
	assert.Equal(t, []string{"Trip"}, r.Names())
}
