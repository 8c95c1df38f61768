package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/clinicore/department-service/internal/auth"
	"github.com/clinicore/department-service/internal/config"
	"github.com/clinicore/department-service/internal/gateway"
	internalhttp "github.com/clinicore/department-service/internal/http"
	"github.com/clinicore/department-service/internal/messaging"
	"github.com/clinicore/department-service/internal/telemetry"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Initialize OpenTelemetry
	provider, err := telemetry.InitProvider(ctx, telemetry.LoadConfig())
	if err != nil {
		log.Printf("Warning: Failed to initialize telemetry: %v", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				log.Printf("Warning: Failed to shut down telemetry: %v", err)
			}
		}()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Connect to RabbitMQ for event publishing
	publisher, err := messaging.NewPublisher(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to RabbitMQ, events will not be published: %v", err)
	}
	defer publisher.Close()

	gw, closeGateway, err := openGateway(cfg)
	if err != nil {
		log.Fatalf("Failed to open data gateway: %v", err)
	}
	defer closeGateway()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	verifier := auth.NewVerifier(cfg.JWTSecret, 0)

	perms, err := auth.LoadPermissions(cfg.PermissionsFile)
	if err != nil {
		log.Printf("Warning: Failed to load %s, using default permissions: %v", cfg.PermissionsFile, err)
		perms = auth.DefaultPermissions()
	}

	router := internalhttp.SetupRouter(gw, publisher, verifier, perms, metrics)
	handler := internalhttp.CORSMiddleware(strings.Join(cfg.AllowedOrigins, ","))(router)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("department-service starting on %s (gateway driver: %s)", cfg.ListenAddr, cfg.GatewayDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: Server shutdown: %v", err)
	}
	log.Println("✓ Server stopped")
}

// openGateway builds the configured gateway backend. The returned
// close func is a no-op for backends without a connection to release.
func openGateway(cfg *config.Config) (gateway.Gateway, func(), error) {
	switch cfg.GatewayDriver {
	case config.DriverPostgres:
		pg, err := gateway.OpenPostgres(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { pg.Close() }, nil
	case config.DriverPostgREST:
		rest, err := gateway.NewPostgREST(cfg.SupabaseURL, cfg.SupabaseServiceKey)
		if err != nil {
			return nil, nil, err
		}
		return rest, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown gateway driver %q", cfg.GatewayDriver)
	}
}
