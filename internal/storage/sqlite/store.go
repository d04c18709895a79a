// Package sqlite implements feastly persistence over a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/louisbranch/feastly/internal/auth/user"
	"github.com/louisbranch/feastly/internal/catalog"
	"github.com/louisbranch/feastly/internal/order"
	sqlitemigrate "github.com/louisbranch/feastly/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/feastly/internal/storage"
	"github.com/louisbranch/feastly/internal/storage/sqlite/migrations"
)

// Store provides SQLite-backed persistence for the catalog, accounts, and orders.
type Store struct {
	sqlDB *sql.DB
}

// Open opens and migrates a feastly SQLite store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ensureForeignKeysEnabled(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

func ensureForeignKeysEnabled(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("sqlite db is required")
	}
	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return fmt.Errorf("check sqlite foreign key pragma: %w", err)
	}
	if enabled != 1 {
		return fmt.Errorf("sqlite foreign keys are disabled")
	}
	return nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// ListRestaurants returns every restaurant ordered by id.
func (s *Store) ListRestaurants(ctx context.Context) ([]catalog.Restaurant, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name, cuisine, rating, image, description
		 FROM restaurants
		 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	restaurants := make([]catalog.Restaurant, 0)
	for rows.Next() {
		var r catalog.Restaurant
		if err := rows.Scan(&r.ID, &r.Name, &r.Cuisine, &r.Rating, &r.Image, &r.Description); err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		restaurants = append(restaurants, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restaurants: %w", err)
	}
	return restaurants, nil
}

// GetRestaurant loads one restaurant by id.
func (s *Store) GetRestaurant(ctx context.Context, id int64) (catalog.Restaurant, error) {
	if s == nil || s.sqlDB == nil {
		return catalog.Restaurant{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, cuisine, rating, image, description
		 FROM restaurants
		 WHERE id = ?`,
		id,
	)

	var r catalog.Restaurant
	if err := row.Scan(&r.ID, &r.Name, &r.Cuisine, &r.Rating, &r.Image, &r.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Restaurant{}, storage.ErrNotFound
		}
		return catalog.Restaurant{}, fmt.Errorf("get restaurant: %w", err)
	}
	return r, nil
}

// ListMenu returns the menu items of one restaurant ordered by id.
func (s *Store) ListMenu(ctx context.Context, restaurantID int64) ([]catalog.MenuItem, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, restaurant_id, name, price, image, category
		 FROM menu_items
		 WHERE restaurant_id = ?
		 ORDER BY id`,
		restaurantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	items := make([]catalog.MenuItem, 0)
	for rows.Next() {
		var item catalog.MenuItem
		if err := rows.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Price, &item.Image, &item.Category); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu items: %w", err)
	}
	return items, nil
}

// InsertRestaurant persists a restaurant and returns its assigned id.
func (s *Store) InsertRestaurant(ctx context.Context, r catalog.Restaurant) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO restaurants (name, cuisine, rating, image, description)
		 VALUES (?, ?, ?, ?, ?)`,
		r.Name, r.Cuisine, r.Rating, r.Image, r.Description,
	)
	if err != nil {
		return 0, fmt.Errorf("insert restaurant: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("restaurant insert id: %w", err)
	}
	return id, nil
}

// InsertMenuItem persists a menu item and returns its assigned id.
func (s *Store) InsertMenuItem(ctx context.Context, item catalog.MenuItem) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO menu_items (restaurant_id, name, price, image, category)
		 VALUES (?, ?, ?, ?, ?)`,
		item.RestaurantID, item.Name, item.Price, item.Image, item.Category,
	)
	if err != nil {
		return 0, fmt.Errorf("insert menu item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("menu item insert id: %w", err)
	}
	return id, nil
}

// CountRestaurants reports how many restaurants exist.
func (s *Store) CountRestaurants(ctx context.Context) (int, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var count int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM restaurants`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count restaurants: %w", err)
	}
	return count, nil
}

// CreateUser persists a new account, refusing duplicate emails.
func (s *Store) CreateUser(ctx context.Context, u user.User) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create user: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, u.Email).Scan(&existing)
	switch {
	case err == nil:
		return 0, user.ErrEmailTaken
	case !errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("check email: %w", err)
	}

	result, err := tx.ExecContext(
		ctx,
		`INSERT INTO users (full_name, email, password, created_at) VALUES (?, ?, ?, ?)`,
		u.FullName, u.Email, u.Password, toMillis(u.CreatedAt),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return 0, user.ErrEmailTaken
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create user: %w", err)
	}
	return id, nil
}

// GetByCredentials looks up an account by exact email/password match.
func (s *Store) GetByCredentials(ctx context.Context, email, password string) (user.User, error) {
	if s == nil || s.sqlDB == nil {
		return user.User{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, full_name, email, password, created_at
		 FROM users
		 WHERE email = ? AND password = ?`,
		email, password,
	)

	var u user.User
	var createdAt int64
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Password, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrBadCredentials
		}
		return user.User{}, fmt.Errorf("get user by credentials: %w", err)
	}
	u.CreatedAt = fromMillis(createdAt)
	return u, nil
}

// CreateOrder writes the order header and all line items in one transaction.
// A failed item write rolls back the header.
func (s *Store) CreateOrder(ctx context.Context, o order.Order) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if len(o.Items) == 0 {
		return 0, fmt.Errorf("order items are required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create order: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var userID sql.NullInt64
	if o.UserID != nil {
		userID = sql.NullInt64{Int64: *o.UserID, Valid: true}
	}

	result, err := tx.ExecContext(
		ctx,
		`INSERT INTO orders (user_id, total_amount, address, payment_method, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, o.Total, o.Address, o.PaymentMethod, o.Status, toMillis(o.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("order insert id: %w", err)
	}

	for _, item := range o.Items {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO order_items (order_id, menu_item_id, quantity, price_at_time_of_order)
			 VALUES (?, ?, ?, ?)`,
			orderID, item.MenuItemID, item.Quantity, item.UnitPrice,
		); err != nil {
			return 0, fmt.Errorf("insert order item %d: %w", item.MenuItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create order: %w", err)
	}
	return orderID, nil
}

var _ catalog.Storage = (*Store)(nil)
var _ order.Storage = (*Store)(nil)
var _ user.Storage = (*Store)(nil)
