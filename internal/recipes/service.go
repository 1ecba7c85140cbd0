package recipes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/toyz/receitas/internal/categories"
	"github.com/toyz/receitas/internal/logging"
	"github.com/toyz/receitas/internal/users"
	"github.com/toyz/receitas/pkg/axon"
)

const (
	MsgCategoryRequired = "Uma receita deve pertencer a uma categoria"
	MsgPrepTimeTooLong  = "Tempo de preparo não pode exceder 24 horas (1440 minutos)"
	MsgTooManyPortions  = "Número de porções não pode exceder 100"
	MsgDeleted          = "Receita removida com sucesso"
	MsgViewForbidden    = "Você só pode visualizar suas próprias receitas"
	MsgEditForbidden    = "Você só pode editar suas próprias receitas"
	MsgDeleteForbidden  = "Você só pode deletar suas próprias receitas"
	msgDeleteNotFound   = "Receita não encontrada"
	msgNotFoundFormat   = "Receita com ID %s não foi encontrada"
	msgCategoryNotFound = "Categoria com ID %s não foi encontrada"
)

// Service applies the recipe rules: ownership, category existence and limits.
// ADMIN identities may read and change every recipe.
type Service struct {
	recipes    Repository
	categories categories.Repository
	now        func() time.Time
}

// NewService creates a Service
func NewService(recipes Repository, categories categories.Repository) *Service {
	return &Service{recipes: recipes, categories: categories, now: time.Now}
}

// List returns the recipes visible to identity
func (s *Service) List(ctx context.Context, identity axon.Identity, params SearchParams) (axon.Page[Details], error) {
	filter := Filter{
		CategoriaID: params.CategoriaID,
		Search:      params.Search,
		Offset:      params.Offset(),
		Limit:       params.Limit,
	}
	if identity.Role != users.RoleAdmin {
		filter.UsuarioID = identity.SubjectID
	}

	items, total, err := s.recipes.List(ctx, filter)
	if err != nil {
		return axon.Page[Details]{}, err
	}
	return axon.NewPage(items, params.Page, params.Limit, total), nil
}

// Get returns one recipe with its category and author names
func (s *Service) Get(ctx context.Context, id string, identity axon.Identity) (*Details, error) {
	details, err := s.recipes.FindDetails(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, axon.ErrNotFound(fmt.Sprintf(msgNotFoundFormat, id))
	}
	if err != nil {
		return nil, err
	}
	if !canAccess(identity, details.UsuarioID) {
		return nil, axon.ErrForbidden(MsgViewForbidden)
	}
	return details, nil
}

// Create stores a new recipe owned by userID
func (s *Service) Create(ctx context.Context, req CreateRequest, userID string) (*Recipe, error) {
	if req.CategoriaID == "" {
		return nil, axon.ErrBadRequest(MsgCategoryRequired)
	}
	if err := s.checkCategory(ctx, req.CategoriaID); err != nil {
		return nil, err
	}
	if err := checkLimits(req.TempoPreparoMinutos, req.Porcoes); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	recipe := &Recipe{
		ID:                  uuid.NewString(),
		UsuarioID:           userID,
		CategoriaID:         req.CategoriaID,
		Nome:                req.Nome,
		TempoPreparoMinutos: req.TempoPreparoMinutos,
		Porcoes:             req.Porcoes,
		ModoPreparo:         req.ModoPreparo,
		Ingredientes:        req.Ingredientes,
		CriadoEm:            now,
		AlteradoEm:          now,
	}
	if err := s.recipes.Save(ctx, recipe); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Infow("recipe created", "recipeId", recipe.ID, "userId", userID)
	return recipe, nil
}

// Update applies a partial change to a recipe the identity may edit
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, identity axon.Identity) (*Recipe, error) {
	existing, err := s.recipes.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, axon.ErrNotFound(fmt.Sprintf(msgNotFoundFormat, id))
	}
	if err != nil {
		return nil, err
	}
	if !canAccess(identity, existing.UsuarioID) {
		return nil, axon.ErrForbidden(MsgEditForbidden)
	}

	if req.CategoriaID != nil {
		if *req.CategoriaID == "" {
			return nil, axon.ErrBadRequest(MsgCategoryRequired)
		}
		if err := s.checkCategory(ctx, *req.CategoriaID); err != nil {
			return nil, err
		}
	}
	if err := checkLimits(req.TempoPreparoMinutos, req.Porcoes); err != nil {
		return nil, err
	}

	changes := req.Changes()
	if changes.IsEmpty() {
		return existing, nil
	}
	if err := s.recipes.Update(ctx, id, changes, s.now().UTC()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, axon.ErrNotFound(fmt.Sprintf(msgNotFoundFormat, id))
		}
		return nil, err
	}
	return s.recipes.FindByID(ctx, id)
}

// Delete removes a recipe the identity may delete
func (s *Service) Delete(ctx context.Context, id string, identity axon.Identity) error {
	existing, err := s.recipes.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return axon.ErrNotFound(msgDeleteNotFound)
	}
	if err != nil {
		return err
	}
	if !canAccess(identity, existing.UsuarioID) {
		return axon.ErrForbidden(MsgDeleteForbidden)
	}

	if err := s.recipes.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return axon.ErrNotFound(msgDeleteNotFound)
		}
		return err
	}
	logging.FromContext(ctx).Infow("recipe deleted", "recipeId", id, "userId", identity.SubjectID)
	return nil
}

func (s *Service) checkCategory(ctx context.Context, id string) error {
	_, err := s.categories.FindByID(ctx, id)
	if errors.Is(err, categories.ErrNotFound) {
		return axon.ErrBadRequest(fmt.Sprintf(msgCategoryNotFound, id))
	}
	return err
}

func checkLimits(tempo, porcoes *int) error {
	if tempo != nil && *tempo > MaxPrepMinutes {
		return axon.ErrBadRequest(MsgPrepTimeTooLong)
	}
	if porcoes != nil && *porcoes > MaxPortions {
		return axon.ErrBadRequest(MsgTooManyPortions)
	}
	return nil
}

func canAccess(identity axon.Identity, owner string) bool {
	return identity.Role == users.RoleAdmin || identity.SubjectID == owner
}
