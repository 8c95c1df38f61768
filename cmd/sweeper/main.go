package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/clinicore/department-service/internal/appointment"
	"github.com/clinicore/department-service/internal/config"
	"github.com/clinicore/department-service/internal/gateway"
	"github.com/clinicore/department-service/internal/messaging"
)

func main() {
	log.Println("Appointment Sweep Job - Starting")
	log.Printf("Expiry Policy: %s", appointment.ExpiryWindow)

	cfg := config.Load()

	gw, closeGateway, err := openGateway(cfg)
	if err != nil {
		log.Fatalf("Failed to open data gateway: %v", err)
	}
	defer closeGateway()

	publisher, err := messaging.NewPublisher(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to RabbitMQ, events will not be published: %v", err)
	}
	defer publisher.Close()

	store := appointment.NewStore(gw, publisher)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result := store.Sweep(ctx)
	if result.Failed() {
		if result.DeleteErr != nil {
			log.Fatalf("Sweep failed: %v", result.DeleteErr)
		}
		log.Printf("Warning: Sweep deleted expired appointments but refresh failed: %v", result.RefreshErr)
		os.Exit(0)
	}

	log.Printf("✓ Sweep completed successfully: appointments older than %s removed", result.CutOff.Format(time.RFC3339))
	log.Println("Sweep Job - Finished")
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
