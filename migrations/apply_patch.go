package main

import (
	"context"
	"fmt"
	"os"

	"registrar-factura/internal/config"
	"registrar-factura/internal/db"
)

func main() {
	dbCfg, err := databaseConfig(os.Getenv("FACTURAS_CONFIG"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dbCfg)
	if err != nil {
		fmt.Printf("Failed to connect to DB: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	version, err := db.Migrate(pool)
	if err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Migration successful (schema version %d).\n", version)
}

// databaseConfig resolves the database settings the same way the server does:
// FACTURAS_DATABASE_URL, then the config file, then DATABASE_URL.
func databaseConfig(configFile string) (config.DatabaseConfig, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return config.DatabaseConfig{}, err
	}
	return cfg.Database, nil
}
