package orders

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/tastykitchen/order-service/internal/domain"
)

// ErrVersionConflict signals that an update carried a stale version token and
// lost the race against a concurrent writer.
var ErrVersionConflict = errors.New("order was modified concurrently")

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create assigns the order's identity, timestamps and initial version and
// inserts it. The returned order carries the store-assigned fields.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	created := *order
	created.ID = uuid.New().String()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO orders (id, food_ref, food_description, food_price, quantity, status, created_by, created_date, last_modified_date, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now(), 0)
		RETURNING created_date, last_modified_date, version
	`, created.ID, created.FoodRef, created.FoodDescription, created.FoodPrice,
		created.Quantity, created.Status, created.CreatedBy,
	).Scan(&created.CreatedDate, &created.LastModifiedDate, &created.Version)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, food_ref, food_description, food_price, quantity, status, created_by, created_date, last_modified_date, version
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&order.ID, &order.FoodRef, &order.FoodDescription, &order.FoodPrice,
		&order.Quantity, &order.Status, &order.CreatedBy,
		&order.CreatedDate, &order.LastModifiedDate, &order.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return order, nil
}

// Update writes the order back using its carried version as the optimistic
// concurrency token. The write succeeds and increments the version only when
// the stored version still matches; a stale token yields ErrVersionConflict.
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	updated := *order

	err := r.db.QueryRowContext(ctx, `
		UPDATE orders
		SET food_description = $2, food_price = $3, quantity = $4, status = $5,
		    last_modified_date = now(), version = version + 1
		WHERE id = $1 AND version = $6
		RETURNING last_modified_date, version
	`, updated.ID, updated.FoodDescription, updated.FoodPrice,
		updated.Quantity, updated.Status, updated.Version,
	).Scan(&updated.LastModifiedDate, &updated.Version)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrVersionConflict
		}
		return nil, err
	}

	return &updated, nil
}

func (r *OrderRepository) FindAllByOwner(ctx context.Context, owner string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, food_ref, food_description, food_price, quantity, status, created_by, created_date, last_modified_date, version
		FROM orders
		WHERE created_by = $1
	`, owner)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orders := []domain.Order{}
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID, &order.FoodRef, &order.FoodDescription, &order.FoodPrice,
			&order.Quantity, &order.Status, &order.CreatedBy,
			&order.CreatedDate, &order.LastModifiedDate, &order.Version,
		); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
