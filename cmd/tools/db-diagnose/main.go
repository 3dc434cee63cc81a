// cmd/tools/db-diagnose/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/lib/pq"

	"order-chatbot/internal/common/config"
	"order-chatbot/internal/common/database"
	"order-chatbot/internal/common/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file (defaults to configs/config.yaml)")
	timeout := flag.Duration("timeout", 10*time.Second, "Connection timeout")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	pgCfg := cfg.Database.Postgres

	fmt.Printf("--- Connecting to PostgreSQL at %s:%d/%s as %s ---\n", pgCfg.Host, pgCfg.Port, pgCfg.Database, pgCfg.User)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, pgCfg); err != nil {
		fmt.Println("\nCONNECTION FAILED")
		fmt.Printf("Error: %v\n", err)
		if hint := diagnose(err); hint != "" {
			fmt.Printf("\nDiagnosis: %s\n", hint)
		}
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func run(ctx context.Context, cfg config.PostgresConfig) error {
	pg, err := database.NewPostgres(cfg, logger.NewNoOpLogger())
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := pg.Ping(ctx); err != nil {
		return err
	}
	fmt.Println("CONNECTED")

	var serverTime time.Time
	var currentUser string
	if err := pg.QueryRow(ctx, "SELECT NOW(), current_user").Scan(&serverTime, &currentUser); err != nil {
		return err
	}

	fmt.Println("\n--- Query results ---")
	fmt.Printf("Server time:  %s\n", serverTime.Format(time.RFC3339))
	fmt.Printf("Current user: %s\n", currentUser)
	return nil
}

// diagnose maps common connection failures to a hint for the operator.
func diagnose(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "28P01", "28000":
			return fmt.Sprintf("login failed (%s). Check DB_USERNAME and DB_PASSWORD.", pqErr.Code)
		case "3D000":
			return "the database does not exist. Check DB_DATABASE."
		}
		return ""
	}

	// context.DeadlineExceeded satisfies net.Error too.
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "connection timed out. Check DB_SERVER and firewall rules."
		}
		return "server unreachable. Check DB_SERVER and the port."
	}

	return ""
}
