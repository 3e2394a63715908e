package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/redshop/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id         BIGSERIAL PRIMARY KEY,
	user_id    VARCHAR(100) NOT NULL,
	user_email VARCHAR(200) NOT NULL,
	items      JSONB NOT NULL,
	total      DOUBLE PRECISION NOT NULL,
	status     VARCHAR(50) NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders (user_id, created_at DESC);
`

// Repository persists orders in PostgreSQL. Line items are stored as a JSON
// snapshot alongside the order row, never normalized into their own table.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates an order repository on an open database handle.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the orders table if it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "create orders schema")
	}
	return nil
}

type orderRow struct {
	ID        int64     `db:"id"`
	UserID    string    `db:"user_id"`
	UserEmail string    `db:"user_email"`
	Items     []byte    `db:"items"`
	Total     float64   `db:"total"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row orderRow) toDomain() (domain.Order, error) {
	var items []domain.OrderItem
	if len(row.Items) > 0 {
		if err := json.Unmarshal(row.Items, &items); err != nil {
			return domain.Order{}, errors.Wrapf(err, "decode items for order %d", row.ID)
		}
	}
	return domain.Order{
		ID:        row.ID,
		UserID:    row.UserID,
		UserEmail: row.UserEmail,
		Items:     items,
		Total:     row.Total,
		Status:    domain.Status(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// Create inserts the order and fills in its server-assigned id and timestamps.
func (r *Repository) Create(ctx context.Context, o *domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return errors.Wrap(err, "encode items")
	}

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO orders (user_id, user_email, items, total, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		o.UserID, o.UserEmail, items, o.Total, string(o.Status), o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		return errors.Wrap(err, "insert order")
	}
	return nil
}

// GetByID fetches one order regardless of owner.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.get(ctx, `SELECT * FROM orders WHERE id = $1`, id)
}

// GetByUser fetches one order owned by the given user.
func (r *Repository) GetByUser(ctx context.Context, id int64, userID string) (*domain.Order, error) {
	return r.get(ctx, `SELECT * FROM orders WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *Repository) get(ctx context.Context, query string, args ...any) (*domain.Order, error) {
	var row orderRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "select order")
	}
	order, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser returns one page of the user's orders, newest first, along with
// the total number of orders the user has.
func (r *Repository) ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.Order, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID); err != nil {
		return nil, 0, errors.Wrap(err, "count orders")
	}

	var rows []orderRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM orders WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, errors.Wrap(err, "select orders")
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		order, err := row.toDomain()
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	return orders, total, nil
}

// UpdateStatus sets the order status and bumps updated_at.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "update order status")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update order status")
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
