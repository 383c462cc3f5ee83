package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const maxHotelHits = 20

// ElasticsearchHotels searches a hotel catalog index. Documents use the Hotel
// JSON shape; location is matched against the requested city.
type ElasticsearchHotels struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticsearchHotels creates an ES client using go-elasticsearch/v8
func NewElasticsearchHotels(scheme, host string, port int, user, password string, verifyCerts bool, maxRetries int, index string) (*ElasticsearchHotels, error) {
	return newElasticsearchHotels(elasticsearchConfig(scheme, host, port, user, password, verifyCerts, maxRetries), index)
}

func elasticsearchConfig(scheme, host string, port int, user, password string, verifyCerts bool, maxRetries int) elasticsearch.Config {
	cfg := elasticsearch.Config{
		Addresses:  []string{fmt.Sprintf("%s://%s:%d", scheme, host, port)},
		MaxRetries: maxRetries,
	}
	if user != "" {
		cfg.Username = user
		cfg.Password = password
	}
	if !verifyCerts {
		cfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402 - user explicitly disabled cert verification
			},
		}
	}
	return cfg
}

func newElasticsearchHotels(cfg elasticsearch.Config, index string) (*ElasticsearchHotels, error) {
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch.NewClient: %w", err)
	}
	return &ElasticsearchHotels{client: client, index: index}, nil
}

// TestConnection pings the cluster
func (s *ElasticsearchHotels) TestConnection(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping error: %s", res.Status())
	}
	return nil
}

func (s *ElasticsearchHotels) SearchHotels(ctx context.Context, city string) ([]Hotel, error) {
	body, err := json.Marshal(map[string]any{
		"size": maxHotelHits,
		"query": map[string]any{
			"match": map[string]any{
				"location": map[string]any{"query": strings.TrimSpace(city), "operator": "and"},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: elasticsearch search: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	raw, err := decodeBody(res.Body, res.Status())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return parseHotelHits(raw), nil
}

// IndexHotels writes hotels into the catalog index, keyed by hotel id.
func (s *ElasticsearchHotels) IndexHotels(ctx context.Context, hotels []Hotel) error {
	for _, h := range hotels {
		doc, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("marshal hotel %s: %w", h.HotelID, err)
		}
		opts := []func(*esapi.IndexRequest){
			s.client.Index.WithContext(ctx),
			s.client.Index.WithDocumentID(h.HotelID),
			s.client.Index.WithRefresh("true"),
		}
		res, err := s.client.Index(s.index, bytes.NewReader(doc), opts...)
		if err != nil {
			return fmt.Errorf("index hotel %s: %w", h.HotelID, err)
		}
		_, err = decodeBody(res.Body, res.Status())
		res.Body.Close()
		if err != nil {
			return fmt.Errorf("index hotel %s: %w", h.HotelID, err)
		}
	}
	return nil
}

func decodeBody(r io.Reader, status string) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if strings.HasPrefix(status, "4") || strings.HasPrefix(status, "5") {
		if errObj, ok := result["error"]; ok {
			return nil, fmt.Errorf("elasticsearch error [%s]: %v", status, errObj)
		}
		return nil, fmt.Errorf("elasticsearch error: %s", status)
	}
	return result, nil
}

func parseHotelHits(raw map[string]interface{}) []Hotel {
	hotels := []Hotel{}
	hitsObj, ok := raw["hits"].(map[string]interface{})
	if !ok {
		return hotels
	}
	hits, _ := hitsObj["hits"].([]interface{})
	for _, h := range hits {
		hm, ok := h.(map[string]interface{})
		if !ok {
			continue
		}
		src, err := json.Marshal(hm["_source"])
		if err != nil {
			continue
		}
		var hotel Hotel
		if err := json.Unmarshal(src, &hotel); err != nil || hotel.HotelName == "" {
			continue
		}
		if hotel.HotelID == "" {
			hotel.HotelID, _ = hm["_id"].(string)
		}
		hotels = append(hotels, hotel)
	}
	return hotels
}
