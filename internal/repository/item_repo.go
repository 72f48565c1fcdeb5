package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sweetshop/internal/model"
)

const itemColumns = `id, name, category, price::float8, quantity, created_at, updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type ItemRepository struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

func (r *ItemRepository) Create(ctx context.Context, in model.ItemInput) (model.Item, error) {
	if !quantityFits(*in.Quantity) {
		return model.Item{}, fmt.Errorf("create item: %w", model.ErrInvalidInput)
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO items (name, category, price, quantity)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+itemColumns,
		in.Name, in.Category, *in.Price, *in.Quantity)

	item, err := scanItem(row)
	if isOutOfRange(err) {
		return model.Item{}, fmt.Errorf("create item: %w", model.ErrInvalidInput)
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

func (r *ItemRepository) Get(ctx context.Context, id int64) (model.Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Item{}, model.ErrItemNotFound
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (r *ItemRepository) List(ctx context.Context) ([]model.Item, error) {
	return r.Search(ctx, model.SearchFilters{})
}

// Search ANDs every populated filter. Name is a case-insensitive substring
// match, category is exact and both price bounds are inclusive.
func (r *ItemRepository) Search(ctx context.Context, filters model.SearchFilters) ([]model.Item, error) {
	where := make([]string, 0, 4)
	args := make([]any, 0, 4)
	argIdx := 1

	if name := strings.TrimSpace(filters.Name); name != "" {
		where = append(where, fmt.Sprintf(`name ILIKE $%d ESCAPE '\'`, argIdx))
		args = append(args, "%"+likeEscaper.Replace(name)+"%")
		argIdx++
	}
	if category := strings.TrimSpace(filters.Category); category != "" {
		where = append(where, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, category)
		argIdx++
	}
	if filters.MinPrice != nil {
		where = append(where, fmt.Sprintf("price >= $%d", argIdx))
		args = append(args, *filters.MinPrice)
		argIdx++
	}
	if filters.MaxPrice != nil {
		where = append(where, fmt.Sprintf("price <= $%d", argIdx))
		args = append(args, *filters.MaxPrice)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM items %s ORDER BY id`, itemColumns, whereClause), args...)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	defer rows.Close()

	items := make([]model.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ItemRepository) Update(ctx context.Context, id int64, in model.ItemInput) (model.Item, error) {
	if !quantityFits(*in.Quantity) {
		return model.Item{}, fmt.Errorf("update item: %w", model.ErrInvalidInput)
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE items
		 SET name = $2, category = $3, price = $4, quantity = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING `+itemColumns,
		id, in.Name, in.Category, *in.Price, *in.Quantity)

	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Item{}, model.ErrItemNotFound
	}
	if isOutOfRange(err) {
		return model.Item{}, fmt.Errorf("update item: %w", model.ErrInvalidInput)
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// Delete removes the item and returns the row as it was before removal.
func (r *ItemRepository) Delete(ctx context.Context, id int64) (model.Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx, `DELETE FROM items WHERE id = $1 RETURNING `+itemColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Item{}, model.ErrItemNotFound
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("delete item: %w", err)
	}
	return item, nil
}

// Purchase decrements stock with a single conditional update, so concurrent
// purchases cannot overdraw. When no row qualifies, the current row is read in
// the same transaction to tell a missing item from a short one. A quantity
// beyond what any row can hold is always short.
func (r *ItemRepository) Purchase(ctx context.Context, id int64, quantity int) (model.Item, error) {
	var item model.Item
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if quantityFits(quantity) {
			var err error
			item, err = scanItem(tx.QueryRow(ctx,
				`UPDATE items
				 SET quantity = quantity - $2, updated_at = now()
				 WHERE id = $1 AND quantity >= $2
				 RETURNING `+itemColumns,
				id, quantity))
			if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
		}

		current, err := scanItem(tx.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrItemNotFound
		}
		if err != nil {
			return err
		}

		return &model.StockError{
			ItemID:    current.ID,
			Name:      current.Name,
			Available: current.Quantity,
			Requested: quantity,
		}
	})
	if err != nil {
		if errors.Is(err, model.ErrItemNotFound) || errors.Is(err, model.ErrInsufficientStock) {
			return model.Item{}, err
		}
		return model.Item{}, fmt.Errorf("purchase item: %w", err)
	}
	return item, nil
}

func (r *ItemRepository) Restock(ctx context.Context, id int64, quantity int) (model.Item, error) {
	if !quantityFits(quantity) {
		return model.Item{}, fmt.Errorf("restock item: %w", model.ErrInvalidInput)
	}

	item, err := scanItem(r.pool.QueryRow(ctx,
		`UPDATE items
		 SET quantity = quantity + $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+itemColumns,
		id, quantity))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Item{}, model.ErrItemNotFound
	}
	if isOutOfRange(err) {
		return model.Item{}, fmt.Errorf("restock item: %w", model.ErrInvalidInput)
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("restock item: %w", err)
	}
	return item, nil
}

// quantityFits reports whether quantity can be bound to the INTEGER column.
func quantityFits(quantity int) bool {
	return quantity >= 0 && quantity <= model.MaxQuantity
}

func scanItem(row pgx.Row) (model.Item, error) {
	var item model.Item
	err := row.Scan(&item.ID, &item.Name, &item.Category, &item.Price, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}
