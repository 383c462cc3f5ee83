package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tournaija/tournaija/internal/config"
	"github.com/tournaija/tournaija/internal/flows"
	"github.com/tournaija/tournaija/internal/server"
	"github.com/tournaija/tournaija/internal/tracer"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "tournaija",
	Short:         "tournaija - Nigerian travel planning assistant",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		setupLogging(cfg, os.Stderr)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

var (
	destinationFlag string
	daysFlag        int
	interestsFlag   []string
	queryFlag       string
	hotelFlag       string
	originFlag      string
	modesFlag       []string
	budgetFlag      float64
	departureFlag   string
	messageFlag     string
	cityFlag        string
	tierFlag        string
	contextFlag     string
)

var itineraryCmd = &cobra.Command{
	Use:   "itinerary",
	Short: "Plan a day-by-day itinerary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFlow(cmd, func(ctx context.Context, svc *flows.Service) (*flows.ItineraryOutput, error) {
			return svc.PlanItinerary(ctx, flows.ItineraryInput{
				Destination:  destinationFlag,
				DurationDays: daysFlag,
				Interests:    interestsFlag,
			})
		})
	},
}

var hotelsCmd = &cobra.Command{
	Use:   "hotels",
	Short: "Search hotels with a natural language query",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFlow(cmd, func(ctx context.Context, svc *flows.Service) (*flows.HotelSearchOutput, error) {
			return svc.SearchHotels(ctx, flows.HotelSearchInput{Query: queryFlag})
		})
	},
}

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book a hotel through the booking assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFlow(cmd, func(ctx context.Context, svc *flows.Service) (*flows.HotelBookingOutput, error) {
			return svc.BookHotel(ctx, flows.HotelBookingInput{HotelID: hotelFlag, Query: queryFlag})
		})
	},
}

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Plan transport options between two places",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := flows.RouteInput{
			Origin:         originFlag,
			Destination:    destinationFlag,
			TransportModes: modesFlag,
			DepartureTime:  departureFlag,
		}
		if cmd.Flags().Changed("budget") {
			in.Budget = &budgetFlag
		}
		return runFlow(cmd, func(ctx context.Context, svc *flows.Service) (*flows.RouteOutput, error) {
			return svc.PlanRoute(ctx, in)
		})
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend destinations for a traveller",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFlow(cmd, func(ctx context.Context, svc *flows.Service) (*flows.RecommendationOutput, error) {
			return svc.RecommendDestinations(ctx, flows.RecommendationInput{
				City:        cityFlag,
				Budget:      tierFlag,
				Preferences: interestsFlag,
			})
		})
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the travel assistant (single message or REPL)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := server.NewServices(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		if messageFlag != "" {
			out, err := svc.Flows.Chat(ctx, flows.ChatInput{Query: messageFlag, DestinationContext: contextFlag})
			if out != nil {
				fmt.Fprintln(cmd.OutOrStdout(), out.Response)
			}
			return err
		}
		return chatREPL(ctx, svc.Flows, contextFlag, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	itineraryCmd.Flags().StringVarP(&destinationFlag, "destination", "d", "", "Destination city or region")
	itineraryCmd.Flags().IntVar(&daysFlag, "days", 1, "Trip length in days")
	itineraryCmd.Flags().StringSliceVar(&interestsFlag, "interests", nil, "Comma separated interests")

	hotelsCmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Hotel search query")

	bookCmd.Flags().StringVar(&hotelFlag, "hotel", "", "Hotel ID to book")
	bookCmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Booking request including guest details")

	routeCmd.Flags().StringVar(&originFlag, "origin", "", "Starting point")
	routeCmd.Flags().StringVarP(&destinationFlag, "destination", "d", "", "Destination")
	routeCmd.Flags().StringSliceVar(&modesFlag, "modes", nil, "Preferred transport modes")
	routeCmd.Flags().Float64Var(&budgetFlag, "budget", 0, "Budget in naira")
	routeCmd.Flags().StringVar(&departureFlag, "departure", "", "Preferred departure time")

	recommendCmd.Flags().StringVar(&cityFlag, "city", "", "Traveller's home city")
	recommendCmd.Flags().StringVar(&tierFlag, "budget", "", "Budget tier: low, medium or high")
	recommendCmd.Flags().StringSliceVar(&interestsFlag, "interests", nil, "Comma separated interests")

	chatCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Single message to send")
	chatCmd.Flags().StringVar(&contextFlag, "context", "", "Destination the user is viewing")

	rootCmd.AddCommand(serveCmd, itineraryCmd, hotelsCmd, bookCmd, routeCmd, recommendCmd, chatCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setupLogging configures the global zerolog logger: console output in
// development, JSON otherwise.
func setupLogging(cfg *config.Config, w io.Writer) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.IsProduction() {
		log.Logger = zerolog.New(w).With().Timestamp().Str("service", "tournaija").Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	srv, err := server.New(ctx, cfg)
	if err != nil {
		return err
	}
	log.Info().Str("environment", cfg.Environment).Msg("starting tournaija")
	return srv.Run(ctx)
}

// runFlow builds the services, runs one flow and prints its output as JSON.
// A fallback output is printed even when the flow also reports an error.
func runFlow[Out any](cmd *cobra.Command, run func(context.Context, *flows.Service) (*Out, error)) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := server.NewServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	out, err := run(ctx, svc.Flows)
	if out != nil {
		if perr := printJSON(cmd.OutOrStdout(), out); perr != nil {
			return perr
		}
	}
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// chatREPL reads queries line by line, carrying the conversation forward so
// follow-up questions keep their context.
func chatREPL(ctx context.Context, svc *flows.Service, destination string, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "tournaija chat (type 'exit' to quit)")
	var history []flows.Turn
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			break
		}

		resp, err := svc.Chat(ctx, flows.ChatInput{Query: query, DestinationContext: destination, History: history})
		if err != nil {
			if fe, ok := flows.AsError(err); ok && fe.Kind == flows.KindRejected {
				fmt.Fprintln(out, fe.Message)
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
		}
		if resp == nil {
			return err
		}
		fmt.Fprintln(out, resp.Response)
		history = append(history,
			flows.Turn{Role: "user", Text: query},
			flows.Turn{Role: "assistant", Text: resp.Response},
		)
	}
	fmt.Fprintln(out)
	return scanner.Err()
}
