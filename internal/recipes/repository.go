package recipes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const selectRecipe = `
	SELECT id, id_usuarios, id_categorias, nome, tempo_preparo_minutos, porcoes,
	       modo_preparo, ingredientes, criado_em, alterado_em
	FROM receitas`

const selectDetails = `
	SELECT r.id, r.id_usuarios, r.id_categorias, r.nome, r.tempo_preparo_minutos, r.porcoes,
	       r.modo_preparo, r.ingredientes, r.criado_em, r.alterado_em,
	       c.nome AS categoria_nome, u.nome AS usuario_nome
	FROM receitas r
	LEFT JOIN categorias c ON r.id_categorias = c.id
	LEFT JOIN usuarios u ON r.id_usuarios = u.id`

// SQLRepository implements Repository over database/sql
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository creates a repository on db
func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Save inserts a new recipe
func (r *SQLRepository) Save(ctx context.Context, recipe *Recipe) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO receitas (id, id_usuarios, id_categorias, nome, tempo_preparo_minutos, porcoes,
		                      modo_preparo, ingredientes, criado_em, alterado_em)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		recipe.ID, recipe.UsuarioID, recipe.CategoriaID, recipe.Nome, recipe.TempoPreparoMinutos,
		recipe.Porcoes, recipe.ModoPreparo, recipe.Ingredientes, recipe.CriadoEm, recipe.AlteradoEm)
	if err != nil {
		return fmt.Errorf("failed to insert recipe: %w", err)
	}
	return nil
}

// FindByID returns the recipe with id or ErrNotFound
func (r *SQLRepository) FindByID(ctx context.Context, id string) (*Recipe, error) {
	var recipe Recipe
	err := scanRecipe(r.db.QueryRowContext(ctx, selectRecipe+" WHERE id = ?", id), &recipe)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe: %w", err)
	}
	return &recipe, nil
}

// FindDetails returns the recipe with id joined with its names, or ErrNotFound
func (r *SQLRepository) FindDetails(ctx context.Context, id string) (*Details, error) {
	var details Details
	err := scanDetails(r.db.QueryRowContext(ctx, selectDetails+" WHERE r.id = ?", id), &details)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe: %w", err)
	}
	return &details, nil
}

// List returns one page of recipes matching filter, newest first, and the total number of matches
func (r *SQLRepository) List(ctx context.Context, filter Filter) ([]Details, int, error) {
	where, args := filter.where()

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM receitas r"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	query := selectDetails + where + " ORDER BY r.criado_em DESC, r.id LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var out []Details
	for rows.Next() {
		var details Details
		if err := scanDetails(rows, &details); err != nil {
			return nil, 0, fmt.Errorf("failed to scan recipe: %w", err)
		}
		out = append(out, details)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update writes the set fields of changes and stamps alterado_em
func (r *SQLRepository) Update(ctx context.Context, id string, changes Changes, at time.Time) error {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if changes.Nome != nil {
		set("nome", *changes.Nome)
	}
	if changes.CategoriaID != nil {
		set("id_categorias", *changes.CategoriaID)
	}
	if changes.TempoPreparoMinutos != nil {
		set("tempo_preparo_minutos", *changes.TempoPreparoMinutos)
	}
	if changes.Porcoes != nil {
		set("porcoes", *changes.Porcoes)
	}
	if changes.ModoPreparo != nil {
		set("modo_preparo", *changes.ModoPreparo)
	}
	if changes.Ingredientes != nil {
		set("ingredientes", *changes.Ingredientes)
	}
	set("alterado_em", at)

	query := "UPDATE receitas SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, append(args, id)...)
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the recipe with id
func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM receitas WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.UsuarioID != "" {
		conds = append(conds, "r.id_usuarios = ?")
		args = append(args, f.UsuarioID)
	}
	if f.CategoriaID != "" {
		conds = append(conds, "r.id_categorias = ?")
		args = append(args, f.CategoriaID)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + term + "%"
		conds = append(conds, "(r.nome LIKE ? OR r.ingredientes LIKE ? OR r.modo_preparo LIKE ?)")
		args = append(args, like, like, like)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row scanner, recipe *Recipe, extra ...any) error {
	var (
		tempo, porcoes sql.NullInt64
		ingredientes   sql.NullString
	)
	dest := []any{
		&recipe.ID, &recipe.UsuarioID, &recipe.CategoriaID, &recipe.Nome, &tempo, &porcoes,
		&recipe.ModoPreparo, &ingredientes, &recipe.CriadoEm, &recipe.AlteradoEm,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	if tempo.Valid {
		v := int(tempo.Int64)
		recipe.TempoPreparoMinutos = &v
	}
	if porcoes.Valid {
		v := int(porcoes.Int64)
		recipe.Porcoes = &v
	}
	if ingredientes.Valid {
		recipe.Ingredientes = &ingredientes.String
	}
	return nil
}

func scanDetails(row scanner, details *Details) error {
	var categoria, usuario sql.NullString
	if err := scanRecipe(row, &details.Recipe, &categoria, &usuario); err != nil {
		return err
	}
	details.CategoriaNome = categoria.String
	details.UsuarioNome = usuario.String
	return nil
}
