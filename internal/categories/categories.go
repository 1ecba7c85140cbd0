// Package categories lists the recipe categories seeded by the migrations
package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/toyz/receitas/pkg/axon"
	"github.com/toyz/receitas/pkg/axon/validation"
)

// ErrNotFound is returned when no category matches
var ErrNotFound = errors.New("categories: not found")

// Category groups recipes
type Category struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
}

// Repository reads categories
type Repository interface {
	List(ctx context.Context, offset, limit int) ([]Category, error)
	Count(ctx context.Context) (int, error)
	FindByID(ctx context.Context, id string) (*Category, error)
}

// SQLRepository implements Repository over database/sql
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository creates a repository on db
func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// List returns a page of categories ordered by name
func (r *SQLRepository) List(ctx context.Context, offset, limit int) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, nome FROM categorias ORDER BY nome ASC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var category Category
		if err := rows.Scan(&category.ID, &category.Nome); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, category)
	}
	return out, rows.Err()
}

// Count returns the number of categories
func (r *SQLRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categorias`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return total, nil
}

// FindByID returns the category with id or ErrNotFound
func (r *SQLRepository) FindByID(ctx context.Context, id string) (*Category, error) {
	var category Category
	err := r.db.QueryRowContext(ctx, `SELECT id, nome FROM categorias WHERE id = ?`, id).
		Scan(&category.ID, &category.Nome)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &category, nil
}

// Controller exposes GET /categories
type Controller struct {
	repo Repository
}

// NewController creates the categories controller
func NewController(repo Repository) *Controller {
	return &Controller{repo: repo}
}

// ControllerName implements axon.NamedController
func (c *Controller) ControllerName() string {
	return "CategoriesController"
}

// Describe implements axon.Controller. The list carries no access flag, so any
// authenticated user may read it.
func (c *Controller) Describe(d *axon.Declarer) {
	d.Prefix("/categories")
	d.Handle("List", `GET / -Summary="Lista as categorias"`,
		axon.Handler1(c.List), axon.Query(0, validation.For[axon.PageRequest]()))
}

// List handles GET /categories
func (c *Controller) List(ctx context.Context, page axon.PageRequest) (any, error) {
	items, err := c.repo.List(ctx, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	total, err := c.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return axon.OK(axon.NewPage(items, page.Page, page.Limit, total), "Categorias listadas com sucesso"), nil
}
