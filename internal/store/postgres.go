package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/dealhunter/dealhunter/pkg/models"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and verifies reachability.
func NewPostgresStore(ctx context.Context, url string, maxConns int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", mapErr(err))
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", mapErr(err))
	}

	log.Info().Int("max_conns", maxConns).Msg("PostgreSQL store connected")
	return &PostgresStore{pool: pool}, nil
}

// mapErr translates driver failures into the store error taxonomy:
// missing rows become ErrNotFound, connectivity problems become
// ErrUnavailable, everything else passes through.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

// ── Products ────────────────────────────────────────────────

const productColumns = `id, name, category, current_price, original_price, COALESCE(image_url, '')`

func scanProducts(rows pgx.Rows) ([]models.Product, error) {
	defer rows.Close()
	var out []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.CurrentPrice, &p.OriginalPrice, &p.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SearchProducts(ctx context.Context, pattern string, limit int) ([]models.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE name ILIKE $1 LIMIT $2`,
		pattern, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	out, err := scanProducts(rows)
	return out, mapErr(err)
}

func (s *PostgresStore) ProductsByCategory(ctx context.Context, pattern string, maxPrice float64, limit int) ([]models.Product, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if maxPrice > 0 {
		rows, err = s.pool.Query(ctx,
			`SELECT `+productColumns+` FROM products WHERE category ILIKE $1 AND current_price <= $2 LIMIT $3`,
			pattern, maxPrice, limit)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT `+productColumns+` FROM products WHERE category ILIKE $1 LIMIT $2`,
			pattern, limit)
	}
	if err != nil {
		return nil, mapErr(err)
	}
	out, err := scanProducts(rows)
	return out, mapErr(err)
}

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Category, &p.CurrentPrice, &p.OriginalPrice, &p.ImageURL)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (s *PostgresStore) UpdateProductPrice(ctx context.Context, id string, price float64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE products SET current_price = $2 WHERE id = $1`, id, price)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) RestoreOriginalPrices(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE products SET current_price = original_price WHERE original_price IS NOT NULL`)
	return mapErr(err)
}

// ── Tracked items ───────────────────────────────────────────

func (s *PostgresStore) InsertTrackedItem(ctx context.Context, item *models.TrackedItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO tracked_items (id, product_id, target_price, email)
		 VALUES ($1, $2, $3, $4) RETURNING created_at`,
		item.ID, item.ProductID, item.TargetPrice, item.Email).
		Scan(&item.CreatedAt)
	return mapErr(err)
}

func (s *PostgresStore) ListTrackedItems(ctx context.Context, email string) ([]models.TrackedItem, error) {
	const q = `
SELECT t.id, t.product_id, t.target_price, t.email, t.created_at,
       p.id, p.name, p.category, p.current_price, p.original_price, COALESCE(p.image_url, '')
FROM tracked_items t
LEFT JOIN products p ON p.id = t.product_id
WHERE t.email = $1
ORDER BY t.created_at ASC`
	rows, err := s.pool.Query(ctx, q, email)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []models.TrackedItem
	for rows.Next() {
		var (
			item models.TrackedItem
			pid  *string
			p    models.Product
			orig *float64
			name, category, imageURL *string
			price *float64
		)
		if err := rows.Scan(&item.ID, &item.ProductID, &item.TargetPrice, &item.Email, &item.CreatedAt,
			&pid, &name, &category, &price, &orig, &imageURL); err != nil {
			return nil, mapErr(err)
		}
		// Orphaned item: the join found no product row.
		if pid != nil {
			p.ID = *pid
			p.Name = *name
			p.Category = *category
			p.CurrentPrice = *price
			p.OriginalPrice = orig
			if imageURL != nil {
				p.ImageURL = *imageURL
			}
			item.Product = &p
		}
		out = append(out, item)
	}
	return out, mapErr(rows.Err())
}

func (s *PostgresStore) DeleteTrackedItems(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM tracked_items`)
	return mapErr(err)
}

// ── Alerts & price history ──────────────────────────────────

func (s *PostgresStore) InsertAlert(ctx context.Context, alert *models.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO alerts (id, tracked_item_id, old_price, new_price, email_sent)
		 VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		alert.ID, alert.TrackedItemID, alert.OldPrice, alert.NewPrice, alert.EmailSent).
		Scan(&alert.CreatedAt)
	return mapErr(err)
}

func (s *PostgresStore) DeleteAlerts(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM alerts`)
	return mapErr(err)
}

func (s *PostgresStore) InsertPricePoint(ctx context.Context, point *models.PricePoint) error {
	if point.ID == "" {
		point.ID = uuid.New().String()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO price_history (id, product_id, price) VALUES ($1, $2, $3) RETURNING recorded_at`,
		point.ID, point.ProductID, point.Price).
		Scan(&point.RecordedAt)
	return mapErr(err)
}

func (s *PostgresStore) DeletePriceHistory(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM price_history`)
	return mapErr(err)
}

// ── Lifecycle ───────────────────────────────────────────────

func (s *PostgresStore) Ping(ctx context.Context) error {
	return mapErr(s.pool.Ping(ctx))
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
