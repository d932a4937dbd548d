package main

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"parkhub/internal/config"
	"parkhub/internal/database"
	"parkhub/internal/models"

	"github.com/google/uuid"
)

var (
	clearExisting = flag.Bool("clear", false, "Clear existing spaces before generating new ones")
	floors        = flag.Int("floors", 3, "Number of parking floors to generate")
	perSection    = flag.Int("per-section", 20, "Spaces per section")
	seedUsers     = flag.Bool("users", true, "Seed demo users")
	dryRun        = flag.Bool("dry-run", false, "Show what would be generated without making changes")
)

var sections = []string{"A", "B", "C", "D"}

type SpaceGenerator struct {
	db *database.DB
}

func main() {
	flag.Parse()

	slog.Info("Starting parking space generator...")

	cfg := config.Load()
	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	generator := &SpaceGenerator{db: db}

	if err := generator.GenerateSpaces(); err != nil {
		slog.Error("Failed to generate spaces", "error", err)
		os.Exit(1)
	}

	if *seedUsers && !*dryRun {
		if err := generator.SeedUsers(); err != nil {
			slog.Error("Failed to seed users", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Generation completed successfully!")
}

func (g *SpaceGenerator) GenerateSpaces() error {
	if !*clearExisting {
		existing, err := g.existingSpaceCount()
		if err != nil {
			return fmt.Errorf("failed to check existing spaces: %w", err)
		}
		if existing > 0 {
			slog.Info("Spaces already exist, skipping (use -clear to override)", "existing_count", existing)
			return nil
		}
	}

	spaces := g.generateLayout()

	if *dryRun {
		slog.Info("[DRY RUN] Would generate spaces", "total", len(spaces), "floors", *floors, "per_section", *perSection)
		return nil
	}

	tx, err := g.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if *clearExisting {
		if _, err := tx.Exec("DELETE FROM parking_spaces"); err != nil {
			return fmt.Errorf("failed to clear existing spaces: %w", err)
		}
	}

	if err := g.insertSpaces(tx, spaces); err != nil {
		return fmt.Errorf("failed to insert spaces: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("Generated parking spaces", "total", len(spaces), "floors", *floors)
	return nil
}

func (g *SpaceGenerator) existingSpaceCount() (int, error) {
	var count int
	err := g.db.QueryRow("SELECT COUNT(*) FROM parking_spaces").Scan(&count)
	return count, err
}

// generateLayout lays spaces out per floor and section on a simple grid.
// Ground floor carries the disabled and electric spots, upper floors get a
// mix of regular and compact.
func (g *SpaceGenerator) generateLayout() []models.ParkingSpace {
	rand.Seed(time.Now().UnixNano())

	var spaces []models.ParkingSpace
	for floor := 1; floor <= *floors; floor++ {
		for si, section := range sections {
			for n := 1; n <= *perSection; n++ {
				spaceType := g.pickType(floor, n)
				spaces = append(spaces, models.ParkingSpace{
					ID:              uuid.NewString(),
					Number:          fmt.Sprintf("%d%s-%02d", floor, section, n),
					Floor:           floor,
					Section:         section,
					Type:            spaceType,
					Status:          models.SpaceAvailable,
					HourlyRateCents: g.rateFor(floor, spaceType),
					PosX:            float64(n) * 2.5,
					PosY:            float64(si) * 6.0,
				})
			}
		}
	}
	return spaces
}

func (g *SpaceGenerator) pickType(floor, n int) models.SpaceType {
	if floor == 1 {
		switch {
		case n <= 2:
			return models.SpaceDisabled
		case n <= 5:
			return models.SpaceElectric
		}
	}
	if rand.Intn(5) == 0 {
		return models.SpaceCompact
	}
	return models.SpaceRegular
}

// rateFor prices in cents per hour. Ground floor costs more, compact less,
// electric includes charging.
func (g *SpaceGenerator) rateFor(floor int, t models.SpaceType) int64 {
	base := int64(300) - int64(floor-1)*50
	if base < 100 {
		base = 100
	}
	switch t {
	case models.SpaceCompact:
		return base - 50
	case models.SpaceElectric:
		return base + 200
	default:
		return base
	}
}

func (g *SpaceGenerator) insertSpaces(tx *sql.Tx, spaces []models.ParkingSpace) error {
	stmt := `
		INSERT INTO parking_spaces (id, number, floor, section, type, status, hourly_rate_cents, pos_x, pos_y, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	now := time.Now()

	for _, s := range spaces {
		_, err := tx.Exec(stmt, s.ID, s.Number, s.Floor, s.Section, s.Type, s.Status, s.HourlyRateCents, s.PosX, s.PosY, now, now)
		if err != nil {
			return err
		}
	}

	return nil
}

// SeedUsers inserts demo accounts for local development.
func (g *SpaceGenerator) SeedUsers() error {
	users := []struct {
		email, password, firstName, surname string
		role                                models.Role
	}{
		{"admin@parkhub.local", "admin123", "Admin", "Adminov", models.RoleAdmin},
		{"staff@parkhub.local", "staff123", "Staff", "Staffov", models.RoleStaff},
		{"driver@parkhub.local", "driver123", "Ivan", "Voditelev", models.RoleCustomer},
	}

	stmt := `
		INSERT INTO users (user_id, email, password_hash, first_name, surname, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING`

	for _, u := range users {
		hash := sha256.Sum256([]byte(u.password))
		_, err := g.db.Exec(stmt, uuid.NewString(), u.email, hex.EncodeToString(hash[:]), u.firstName, u.surname, u.role)
		if err != nil {
			return err
		}
		slog.Info("Seeded user", "email", u.email, "role", u.role)
	}

	return nil
}
