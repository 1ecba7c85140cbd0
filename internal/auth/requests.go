package auth

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Nome        string `json:"nome" validate:"required,min=2" msg:"required=Nome é obrigatório|min=Nome deve ter pelo menos 2 caracteres"`
	Login       string `json:"login" validate:"required,email" msg:"required=Login é obrigatório|email=Login deve ser um email válido"`
	Senha       string `json:"senha" validate:"required,min=6" msg:"required=Senha é obrigatória|min=Senha deve ter pelo menos 6 caracteres"`
	NivelAcesso string `json:"nivel_acesso" validate:"omitempty,oneof=ADMIN DEFAULT" msg:"*=Nível de acesso deve ser ADMIN ou DEFAULT"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Login string `json:"login" validate:"required,email" msg:"required=Login é obrigatório|email=Login deve ser um email válido"`
	Senha string `json:"senha" validate:"required,min=6" msg:"required=Senha é obrigatória|min=Senha deve ter pelo menos 6 caracteres"`
}

// RefreshRequest is the body of POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required" msg:"*=Refresh token é obrigatório"`
}
