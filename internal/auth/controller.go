package auth

import (
	"context"

	"github.com/toyz/receitas/pkg/axon"
	"github.com/toyz/receitas/pkg/axon/validation"
)

// Controller exposes the session routes under /auth
type Controller struct {
	service *Service
}

// NewController creates the auth controller
func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// ControllerName implements axon.NamedController
func (c *Controller) ControllerName() string {
	return "AuthController"
}

// Describe implements axon.Controller
func (c *Controller) Describe(d *axon.Declarer) {
	d.Prefix("/auth")
	d.Handle("Register", `POST /register -Public -Summary="Cadastra um usuário"`,
		axon.Handler1(c.Register), axon.Body(0, validation.For[RegisterRequest]()))
	d.Handle("Login", `POST /login -Public -Summary="Autentica um usuário"`,
		axon.Handler1(c.Login), axon.Body(0, validation.For[LoginRequest]()))
	d.Handle("Refresh", `POST /refresh -Public -Summary="Renova o token de acesso"`,
		axon.Handler1(c.Refresh), axon.Body(0, validation.For[RefreshRequest]()))
	d.Handle("Logout", `POST /logout -Authenticated -Summary="Encerra a sessão"`,
		axon.Handler1(c.Logout), axon.CurrentUser(0))
}

// Register handles POST /auth/register
func (c *Controller) Register(ctx context.Context, req RegisterRequest) (any, error) {
	user, err := c.service.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return axon.Created(user, "Usuário cadastrado com sucesso"), nil
}

// Login handles POST /auth/login and returns the token pair
func (c *Controller) Login(ctx context.Context, req LoginRequest) (any, error) {
	session, err := c.service.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return axon.OK(session, "Login realizado com sucesso"), nil
}

// Refresh handles POST /auth/refresh
func (c *Controller) Refresh(ctx context.Context, req RefreshRequest) (any, error) {
	pair, err := c.service.Refresh(ctx, req)
	if err != nil {
		return nil, err
	}
	return axon.OK(pair, "Token renovado com sucesso"), nil
}

// Logout handles POST /auth/logout by clearing the caller's stored refresh token
func (c *Controller) Logout(ctx context.Context, userID string) (any, error) {
	if err := c.service.Logout(ctx, userID); err != nil {
		return nil, err
	}
	return axon.Message(MsgLogoutSuccessful), nil
}
