package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var databaseURL, migrationsPath string
	flag.StringVar(&databaseURL, "database-url", "", "database connection string (without the postgres:// prefix)")
	flag.StringVar(&migrationsPath, "migrations-path", "./migrations", "directory with migration files")
	flag.Parse()

	if databaseURL == "" {
		log.Fatal("-database-url is required")
	}

	m, err := migrate.New("file://"+migrationsPath, fmt.Sprintf("postgres://%s", databaseURL))
	if err != nil {
		log.Fatalf("open migrations: %v", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("no migrations to apply")
			return
		}
		log.Fatalf("apply migrations: %v", err)
	}

	log.Println("migrations applied")
}
