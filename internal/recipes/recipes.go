// Package recipes implements the recipe catalog: storage, ownership rules and routes
package recipes

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when no recipe matches
var ErrNotFound = errors.New("recipes: not found")

// Limits enforced on top of the request validation
const (
	MaxPrepMinutes = 1440
	MaxPortions    = 100
)

// Recipe is a stored recipe
type Recipe struct {
	ID                  string    `json:"id"`
	UsuarioID           string    `json:"id_usuarios"`
	CategoriaID         string    `json:"id_categorias"`
	Nome                string    `json:"nome"`
	TempoPreparoMinutos *int      `json:"tempo_preparo_minutos"`
	Porcoes             *int      `json:"porcoes"`
	ModoPreparo         string    `json:"modo_preparo"`
	Ingredientes        *string   `json:"ingredientes"`
	CriadoEm            time.Time `json:"criado_em"`
	AlteradoEm          time.Time `json:"alterado_em"`
}

// Details is a recipe joined with its category and author names
type Details struct {
	Recipe
	CategoriaNome string `json:"categoria_nome"`
	UsuarioNome   string `json:"usuario_nome"`
}

// Filter narrows a listing. An empty field does not filter.
type Filter struct {
	UsuarioID   string
	CategoriaID string
	Search      string
	Offset      int
	Limit       int
}

// Changes holds the fields of a partial update; nil fields are left untouched
type Changes struct {
	Nome                *string
	CategoriaID         *string
	TempoPreparoMinutos *int
	Porcoes             *int
	ModoPreparo         *string
	Ingredientes        *string
}

// IsEmpty reports whether no field is set
func (c Changes) IsEmpty() bool {
	return c.Nome == nil && c.CategoriaID == nil && c.TempoPreparoMinutos == nil &&
		c.Porcoes == nil && c.ModoPreparo == nil && c.Ingredientes == nil
}

// Repository persists recipes
type Repository interface {
	Save(ctx context.Context, recipe *Recipe) error
	FindByID(ctx context.Context, id string) (*Recipe, error)
	FindDetails(ctx context.Context, id string) (*Details, error)
	List(ctx context.Context, filter Filter) ([]Details, int, error)
	Update(ctx context.Context, id string, changes Changes, at time.Time) error
	Delete(ctx context.Context, id string) error
}
