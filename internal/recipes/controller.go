package recipes

import (
	"context"

	"github.com/toyz/receitas/pkg/axon"
	"github.com/toyz/receitas/pkg/axon/validation"
)

const recipeRoles = "-Roles=ADMIN,DEFAULT"

var recipeID = validation.Var("uuid", "ID da receita deve ser um UUID válido")

// Controller exposes the recipe routes under /recipes
type Controller struct {
	service *Service
}

// NewController creates the recipes controller
func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// ControllerName implements axon.NamedController
func (c *Controller) ControllerName() string {
	return "RecipesController"
}

// Describe implements axon.Controller
func (c *Controller) Describe(d *axon.Declarer) {
	d.Prefix("/recipes")
	d.Handle("List", `GET / `+recipeRoles+` -Summary="Lista receitas com paginação"`,
		axon.Handler2(c.List), axon.CurrentUserFull(0), axon.Query(1, validation.For[SearchParams]()))
	d.Handle("Get", `GET /{id} `+recipeRoles+` -Summary="Busca uma receita"`,
		axon.Handler2(c.Get), axon.Param(0, "id", recipeID), axon.CurrentUserFull(1))
	d.Handle("Create", `POST / `+recipeRoles+` -Summary="Cria uma receita"`,
		axon.Handler2(c.Create), axon.Body(0, validation.For[CreateRequest]()), axon.CurrentUser(1))
	d.Handle("Update", `PUT /{id} `+recipeRoles+` -Summary="Atualiza uma receita"`,
		axon.Handler3(c.Update), axon.Param(0, "id", recipeID),
		axon.Body(1, validation.For[UpdateRequest]()), axon.CurrentUserFull(2))
	d.Handle("Delete", `DELETE /{id} `+recipeRoles+` -Summary="Remove uma receita"`,
		axon.Handler2(c.Delete), axon.Param(0, "id", recipeID), axon.CurrentUserFull(1))
}

// List handles GET /recipes
func (c *Controller) List(ctx context.Context, identity axon.Identity, params SearchParams) (any, error) {
	page, err := c.service.List(ctx, identity, params)
	if err != nil {
		return nil, err
	}
	return axon.OK(page, "Receitas listadas com sucesso"), nil
}

// Get handles GET /recipes/{id}
func (c *Controller) Get(ctx context.Context, id string, identity axon.Identity) (any, error) {
	details, err := c.service.Get(ctx, id, identity)
	if err != nil {
		return nil, err
	}
	return axon.OK(details, "Receita encontrada com sucesso"), nil
}

// Create handles POST /recipes on behalf of the authenticated user
func (c *Controller) Create(ctx context.Context, req CreateRequest, userID string) (any, error) {
	recipe, err := c.service.Create(ctx, req, userID)
	if err != nil {
		return nil, err
	}
	return axon.Created(recipe, "Receita criada com sucesso"), nil
}

// Update handles PUT /recipes/{id}
func (c *Controller) Update(ctx context.Context, id string, req UpdateRequest, identity axon.Identity) (any, error) {
	recipe, err := c.service.Update(ctx, id, req, identity)
	if err != nil {
		return nil, err
	}
	return axon.OK(recipe, "Receita atualizada com sucesso"), nil
}

// Delete handles DELETE /recipes/{id}
func (c *Controller) Delete(ctx context.Context, id string, identity axon.Identity) (any, error) {
	if err := c.service.Delete(ctx, id, identity); err != nil {
		return nil, err
	}
	return axon.Message(MsgDeleted), nil
}
