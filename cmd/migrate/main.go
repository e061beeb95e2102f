package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/license-monitor/internal/config"
	"github.com/jwalitptl/license-monitor/internal/repository/postgres"
)

var seedLicenseTypes = []struct {
	Name        string
	Description string
}{
	{"WHIMS / GHS Training", "Workplace Hazardous Materials Information System / Globally Harmonized System"},
	{"Working at Heights", "Working at Heights training certification"},
	{"Swing Stage Operator", "Swing stage / suspended access equipment operator"},
	{"Fall Arrest Training", "Fall arrest systems and fall protection training"},
	{"Confined Space Entry", "Confined space entry and rescue training"},
	{"Scaffolding Erection", "Scaffold erection, use, and dismantling"},
	{"Crane Operator", "Mobile or tower crane operator certification"},
	{"First Aid / CPR", "First Aid and CPR certification"},
	{"WHMIS 2015", "Workplace Hazardous Materials Information System 2015"},
	{"Forklift Operator", "Forklift / powered industrial truck operator"},
	{"Aerial Work Platform", "Boom lift, scissor lift, and aerial work platform operator"},
	{"Propane Handling", "Propane handling and safety training"},
}

func main() {
	migrationsDir := flag.String("dir", "migrations", "directory containing migration files")
	flag.Parse()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if action == "seed" {
		if err := runSeed(cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		log.Printf("seed completed")
		return
	}

	if err := runMigration(action, *migrationsDir, cfg.Database.URL()); err != nil {
		log.Fatalf("migration %s failed: %v", action, err)
	}
	log.Printf("migration %s completed", action)
}

func runMigration(action, dir, dsn string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve path for %s: %w", dir, err)
	}
	absDir = filepath.ToSlash(absDir)

	m, err := migrate.New(fmt.Sprintf("file://%s", absDir), dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	switch action {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			return err
		}
		return nil
	case "down":
		if err := m.Down(); err != nil && err != migrate.ErrNoChange {
			return err
		}
		return nil
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if err == migrate.ErrNilVersion {
				log.Printf("no migration applied")
				return nil
			}
			return err
		}
		log.Printf("version=%d dirty=%t", version, dirty)
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

// runSeed upserts the standard safety license types and makes sure the
// alert settings row exists. Safe to run repeatedly.
func runSeed(cfg *config.Config) error {
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := seedTypes(ctx, db); err != nil {
		return err
	}
	return seedSettings(ctx, db)
}

func seedTypes(ctx context.Context, db *sqlx.DB) error {
	for _, lt := range seedLicenseTypes {
		_, err := db.ExecContext(ctx, `
			INSERT INTO license_types (name, description)
			VALUES ($1, $2)
			ON CONFLICT ((LOWER(name))) DO NOTHING`,
			lt.Name, lt.Description)
		if err != nil {
			return fmt.Errorf("seed license type %q: %w", lt.Name, err)
		}
	}
	log.Printf("seeded %d license types", len(seedLicenseTypes))
	return nil
}

func seedSettings(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO alert_settings (email_enabled, sms_enabled, warning_90_days, warning_60_days, warning_30_days)
		SELECT FALSE, FALSE, TRUE, TRUE, TRUE
		WHERE NOT EXISTS (SELECT 1 FROM alert_settings)`)
	if err != nil {
		return fmt.Errorf("seed alert settings: %w", err)
	}
	return nil
}
