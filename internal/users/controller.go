package users

import (
	"context"

	"github.com/toyz/receitas/pkg/axon"
	"github.com/toyz/receitas/pkg/axon/validation"
)

// Controller exposes the profile routes under /users
type Controller struct {
	service *Service
}

// NewController creates the users controller
func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// Describe implements axon.Controller
func (c *Controller) Describe(d *axon.Declarer) {
	d.Prefix("/users")
	d.Handle("Me", `GET /me -Authenticated -Summary="Perfil do usuário autenticado"`,
		axon.Handler1(c.Me), axon.CurrentUserFull(0))
	d.Handle("Get", `GET /{id} -Roles=ADMIN -Summary="Busca um usuário"`,
		axon.Handler1(c.Get),
		axon.Param(0, "id", validation.Var("uuid", "ID do usuário deve ser um UUID válido")))
}

// ControllerName implements axon.NamedController
func (c *Controller) ControllerName() string {
	return "UsersController"
}

// Me returns the profile of the authenticated user
func (c *Controller) Me(ctx context.Context, identity axon.Identity) (any, error) {
	user, err := c.service.Profile(ctx, identity.SubjectID)
	if err != nil {
		return nil, err
	}
	return axon.OK(user, "Perfil recuperado com sucesso"), nil
}

// Get handles GET /users/{id}
func (c *Controller) Get(ctx context.Context, id string) (any, error) {
	user, err := c.service.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	return axon.OK(user, "Usuário encontrado com sucesso"), nil
}
