package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// MakcorpsHotels searches the Makcorps free hotel API. Each search
// authenticates for a JWT and then fetches /free/{city}.
type MakcorpsHotels struct {
	baseURL  string
	username string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewMakcorpsHotels throttles outbound calls to perMinute requests. A nil
// client uses one with a 15 second timeout.
func NewMakcorpsHotels(baseURL, username, apiKey string, perMinute int, client *http.Client) *MakcorpsHotels {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if perMinute <= 0 {
		perMinute = 30
	}
	return &MakcorpsHotels{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		apiKey:   apiKey,
		client:   client,
		limiter:  rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute),
	}
}

func (m *MakcorpsHotels) SearchHotels(ctx context.Context, city string) ([]Hotel, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("makcorps rate limit: %w", err)
	}

	token, err := m.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/free/"+url.PathEscape(strings.TrimSpace(city)), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "JWT "+token)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: hotel search: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []Hotel{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: hotel search status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read hotel search: %v", ErrUnavailable, err)
	}
	hotels, err := parseMakcorpsHotels(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	log.Debug().Str("city", city).Int("hotels", len(hotels)).Msg("makcorps search")
	return hotels, nil
}

func (m *MakcorpsHotels) authenticate(ctx context.Context) (string, error) {
	payload, err := json.Marshal(map[string]string{"username": m.username, "password": m.apiKey})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/security/authenticate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: authenticate: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: authenticate status %d", ErrUnavailable, resp.StatusCode)
	}

	var auth struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", fmt.Errorf("%w: decode token: %v", ErrUnavailable, err)
	}
	if auth.AccessToken == "" {
		return "", fmt.Errorf("%w: access token missing from response", ErrUnavailable)
	}
	return auth.AccessToken, nil
}

// parseMakcorpsHotels decodes [[{hotelName, hotelId}, [{price1, tax1, vendor1, ...}]], ...].
func parseMakcorpsHotels(body []byte) ([]Hotel, error) {
	var entries [][]json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decode hotels: %w", err)
	}

	hotels := make([]Hotel, 0, len(entries))
	for _, entry := range entries {
		if len(entry) == 0 {
			continue
		}
		var info struct {
			HotelName string          `json:"hotelName"`
			HotelID   json.RawMessage `json:"hotelId"`
		}
		if err := json.Unmarshal(entry[0], &info); err != nil || info.HotelName == "" {
			continue
		}
		h := Hotel{HotelName: info.HotelName, HotelID: strings.Trim(string(info.HotelID), `"`)}
		if len(entry) > 1 {
			var vendors []map[string]any
			if err := json.Unmarshal(entry[1], &vendors); err == nil {
				h.Vendors = parseVendors(vendors)
			}
		}
		hotels = append(hotels, h)
	}
	return hotels, nil
}

func parseVendors(vendors []map[string]any) []VendorPrice {
	var out []VendorPrice
	for _, v := range vendors {
		var suffixes []string
		for k := range v {
			if strings.HasPrefix(k, "price") {
				suffixes = append(suffixes, strings.TrimPrefix(k, "price"))
			}
		}
		sort.Strings(suffixes)
		for _, idx := range suffixes {
			vp := VendorPrice{
				Price: parsePrice(v["price"+idx]),
				Tax:   parsePrice(v["tax"+idx]),
			}
			if name, ok := v["vendor"+idx].(string); ok && name != "" {
				vp.Vendor = &name
			}
			out = append(out, vp)
		}
	}
	return out
}

// parsePrice reads values like "120", 120 or "$1,234.50". Anything else is nil.
func parsePrice(v any) *float64 {
	switch p := v.(type) {
	case float64:
		return &p
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' {
				return r
			}
			return -1
		}, p)
		if cleaned == "" {
			return nil
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}
