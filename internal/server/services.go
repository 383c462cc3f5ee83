package server

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/tournaija/tournaija/internal/config"
	"github.com/tournaija/tournaija/internal/flows"
	"github.com/tournaija/tournaija/internal/handler"
	"github.com/tournaija/tournaija/internal/llm"
	"github.com/tournaija/tournaija/internal/security"
	"github.com/tournaija/tournaija/internal/service"
)

// Services holds the collaborators built from config. Close releases the
// ones holding connections.
type Services struct {
	Flows    *flows.Service
	Bookings service.BookingStore
	Masker   *security.DataMasker

	Catalog *service.ElasticsearchHotels
	Audit   *service.BigQueryAudit
	Health  map[string]handler.HealthChecker

	closers []func()
}

func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// NewServices builds the language model client, providers and flow service.
// Optional warehouses that fail to connect are logged and left disabled.
func NewServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	s := &Services{Health: make(map[string]handler.HealthChecker)}

	client, err := llm.Default()
	if err != nil {
		c, err := llm.New(ctx, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("llm client: %w", err)
		}
		if err := llm.SetDefault(c); err != nil {
			return nil, fmt.Errorf("llm client: %w", err)
		}
		client = c
	}
	if hc, ok := client.(handler.HealthChecker); ok {
		s.Health["llm"] = hc
	}
	if c, ok := client.(io.Closer); ok {
		s.closers = append(s.closers, func() {
			if err := c.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing LLM client")
			}
		})
	}

	hotels, err := s.hotelSearcher(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	bookings, err := s.bookingStore(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Bookings = bookings
	s.auditWarehouse(ctx, cfg)

	s.Masker = security.NewDataMasker(cfg.EnableDataMasking)
	var sink security.AuditSink
	if s.Audit != nil {
		sink = s.Audit
	}
	var pii *security.PIIDetector
	if cfg.EnablePIIDetection {
		pii = security.NewPIIDetector(cfg.PIIKeywords)
	}

	svc, err := flows.New(flows.Deps{
		Client:   client,
		Hotels:   hotels,
		Bookings: bookings,
		Prompts:  security.NewPromptValidator(cfg.MaxPromptLength),
		PII:      pii,
		Masker:   s.Masker,
		Audit:    security.NewAuditLogger(cfg.EnableAuditLogging, sink),
		Costs:    security.NewCostTracker(cfg.LLM.InputCostPerMillion, cfg.LLM.OutputCostPerMillion),
		Timeout:  cfg.AgentTimeoutDuration(),
		CacheTTL: cfg.ResponseCacheDuration(),
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Flows = svc

	log.Info().
		Str("llm_provider", client.Name()).
		Str("hotel_provider", cfg.HotelProvider).
		Str("booking_provider", cfg.BookingProvider).
		Bool("bigquery_audit", s.Audit != nil).
		Bool("auth_enabled", cfg.EnableAuth && len(cfg.APIKeys) > 0).
		Bool("data_masking", cfg.EnableDataMasking).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Bool("pii_detection", cfg.EnablePIIDetection).
		Bool("response_cache", cfg.ResponseCacheTTL > 0).
		Msg("service configuration")
	return s, nil
}

func (s *Services) hotelSearcher(cfg *config.Config) (service.HotelSearcher, error) {
	switch cfg.HotelProvider {
	case config.HotelProviderMakcorps:
		httpClient := &http.Client{Timeout: config.DefaultHotelRequestTimeout}
		return service.NewMakcorpsHotels(cfg.MakcorpsBaseURL, cfg.MakcorpsUsername, cfg.HotelAPIKey, cfg.MakcorpsRatePerMin, httpClient), nil
	case config.HotelProviderElasticsearch:
		es, err := service.NewElasticsearchHotels(
			cfg.ElasticsearchScheme,
			cfg.ElasticsearchHost,
			cfg.ElasticsearchPort,
			cfg.ElasticsearchUser,
			cfg.ElasticsearchPassword,
			cfg.ElasticsearchVerifyCerts,
			cfg.ElasticsearchMaxRetries,
			cfg.ElasticsearchIndex,
		)
		if err != nil {
			return nil, fmt.Errorf("hotel catalog: %w", err)
		}
		s.Catalog = es
		s.Health["elasticsearch"] = es
		return es, nil
	default:
		return service.NewDefaultStaticHotels(), nil
	}
}

func (s *Services) bookingStore(ctx context.Context, cfg *config.Config) (service.BookingStore, error) {
	if cfg.BookingProvider != config.BookingProviderPostgres {
		return service.NewSimulatedBookings(), nil
	}
	pg, err := service.NewPostgresBookings(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, func() {
		pg.Close()
		log.Info().Msg("Postgres pool closed")
	})
	if err := pg.Migrate(ctx); err != nil {
		return nil, err
	}
	s.Health["postgres"] = pg
	return pg, nil
}

func (s *Services) auditWarehouse(ctx context.Context, cfg *config.Config) {
	if cfg.GCPProjectID == "" {
		log.Warn().Msg("GCP_PROJECT_ID not set - BigQuery audit sink disabled")
		s.Health["bigquery"] = nil
		return
	}
	bq, err := service.NewBigQueryAudit(ctx, cfg.GCPProjectID, cfg.GoogleApplicationCredentials,
		cfg.BigQueryLocation, cfg.BigQueryDataset, cfg.BigQueryTable)
	if err != nil {
		log.Warn().Err(err).Msg("BigQuery audit sink unavailable")
		s.Health["bigquery"] = nil
		return
	}
	if err := bq.EnsureTable(ctx); err != nil {
		log.Warn().Err(err).Msg("BigQuery audit table unavailable")
		bq.Close()
		s.Health["bigquery"] = nil
		return
	}
	s.Audit = bq
	s.Health["bigquery"] = bq
	s.closers = append(s.closers, func() {
		if err := bq.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing BigQuery client")
			return
		}
		log.Info().Msg("BigQuery client closed")
	})
}
