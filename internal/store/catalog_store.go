package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
)

// SQLiteCatalogStore implements domain.CatalogProvider. The engine only
// reads the catalog; rows are seeded from configuration at startup.
type SQLiteCatalogStore struct {
	db *DB
}

// NewCatalogStore creates a catalog store using the given database.
func NewCatalogStore(db *DB) *SQLiteCatalogStore {
	return &SQLiteCatalogStore{db: db}
}

// ActiveServices returns the salon's bookable services.
func (s *SQLiteCatalogStore) ActiveServices(ctx context.Context, salonID string) ([]domain.Service, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, name, price, duration_minutes FROM services WHERE salon_id = ? AND active = 1 ORDER BY name`,
		salonID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading services: %w", err)
	}
	defer rows.Close()

	var services []domain.Service
	for rows.Next() {
		svc := domain.Service{Active: true}
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Price, &svc.DurationMinutes); err != nil {
			return nil, fmt.Errorf("scanning service: %w", err)
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

// ActiveProfessionals returns the salon's bookable staff.
func (s *SQLiteCatalogStore) ActiveProfessionals(ctx context.Context, salonID string) ([]domain.Professional, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, name FROM professionals WHERE salon_id = ? AND active = 1 ORDER BY name`,
		salonID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading professionals: %w", err)
	}
	defer rows.Close()

	var pros []domain.Professional
	for rows.Next() {
		p := domain.Professional{Active: true}
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scanning professional: %w", err)
		}
		pros = append(pros, p)
	}
	return pros, rows.Err()
}

// Products returns the salon's retail products.
func (s *SQLiteCatalogStore) Products(ctx context.Context, salonID string) ([]domain.Product, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, name, price FROM products WHERE salon_id = ? ORDER BY name`,
		salonID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Hours returns the salon's business hours.
func (s *SQLiteCatalogStore) Hours(ctx context.Context, salonID string) (domain.BusinessHours, error) {
	var h domain.BusinessHours
	err := s.db.sql.QueryRowContext(ctx,
		`SELECT weekdays, saturday, sunday FROM salon_hours WHERE salon_id = ?`, salonID,
	).Scan(&h.Weekdays, &h.Saturday, &h.Sunday)
	if errors.Is(err, sql.ErrNoRows) {
		return h, nil
	}
	if err != nil {
		return h, fmt.Errorf("loading hours: %w", err)
	}
	return h, nil
}

// Seed replaces the salon's catalog with the given data. Called at startup
// from configuration.
func (s *SQLiteCatalogStore) Seed(ctx context.Context, salonID string, services []domain.Service, pros []domain.Professional, products []domain.Product, hours domain.BusinessHours) error {
	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog seed: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"services", "professionals", "products"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE salon_id = ?", table), salonID); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, svc := range services {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO services (id, salon_id, name, price, duration_minutes, active) VALUES (?, ?, ?, ?, ?, ?)`,
			svc.ID, salonID, svc.Name, svc.Price, svc.DurationMinutes, boolInt(svc.Active),
		); err != nil {
			return fmt.Errorf("seeding service %s: %w", svc.ID, err)
		}
	}
	for _, p := range pros {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO professionals (id, salon_id, name, active) VALUES (?, ?, ?, ?)`,
			p.ID, salonID, p.Name, boolInt(p.Active),
		); err != nil {
			return fmt.Errorf("seeding professional %s: %w", p.ID, err)
		}
	}
	for _, p := range products {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO products (id, salon_id, name, price) VALUES (?, ?, ?, ?)`,
			p.ID, salonID, p.Name, p.Price,
		); err != nil {
			return fmt.Errorf("seeding product %s: %w", p.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO salon_hours (salon_id, weekdays, saturday, sunday) VALUES (?, ?, ?, ?)
		 ON CONFLICT (salon_id) DO UPDATE SET weekdays = excluded.weekdays, saturday = excluded.saturday, sunday = excluded.sunday`,
		salonID, hours.Weekdays, hours.Saturday, hours.Sunday,
	); err != nil {
		return fmt.Errorf("seeding hours: %w", err)
	}

	return tx.Commit()
}
