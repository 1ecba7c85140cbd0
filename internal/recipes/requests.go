package recipes

import "github.com/toyz/receitas/pkg/axon"

// SearchParams is the query of GET /recipes
type SearchParams struct {
	axon.PageRequest
	Search      string `json:"search"`
	CategoriaID string `json:"categoria_id" validate:"omitempty,uuid" msg:"*=ID da categoria deve ser um UUID válido"`
}

// CreateRequest is the body of POST /recipes
type CreateRequest struct {
	Nome                string  `json:"nome" validate:"required,max=45" msg:"required=Nome da receita é obrigatório|max=Nome da receita deve ter no máximo 45 caracteres"`
	CategoriaID         string  `json:"id_categorias" validate:"required,uuid" msg:"required=Uma receita deve pertencer a uma categoria|uuid=ID da categoria deve ser um UUID válido"`
	TempoPreparoMinutos *int    `json:"tempo_preparo_minutos" validate:"omitnil,gt=0" msg:"type=Tempo de preparo deve ser um número inteiro|gt=Tempo de preparo deve ser positivo"`
	Porcoes             *int    `json:"porcoes" validate:"omitnil,gt=0" msg:"type=Número de porções deve ser um número inteiro|gt=Número de porções deve ser positivo"`
	ModoPreparo         string  `json:"modo_preparo" validate:"required" msg:"required=Modo de preparo é obrigatório"`
	Ingredientes        *string `json:"ingredientes"`
}

// UpdateRequest is the body of PUT /recipes/{id}; absent fields keep their value
type UpdateRequest struct {
	Nome                *string `json:"nome" validate:"omitnil,min=1,max=45" msg:"min=Nome da receita não pode ser vazio|max=Nome da receita deve ter no máximo 45 caracteres"`
	CategoriaID         *string `json:"id_categorias" validate:"omitnil,uuid" msg:"*=ID da categoria deve ser um UUID válido"`
	TempoPreparoMinutos *int    `json:"tempo_preparo_minutos" validate:"omitnil,gt=0" msg:"type=Tempo de preparo deve ser um número inteiro|gt=Tempo de preparo deve ser positivo"`
	Porcoes             *int    `json:"porcoes" validate:"omitnil,gt=0" msg:"type=Número de porções deve ser um número inteiro|gt=Número de porções deve ser positivo"`
	ModoPreparo         *string `json:"modo_preparo" validate:"omitnil,min=1" msg:"min=Modo de preparo não pode ser vazio"`
	Ingredientes        *string `json:"ingredientes"`
}

// Changes converts the request into repository changes
func (r UpdateRequest) Changes() Changes {
	return Changes{
		Nome:                r.Nome,
		CategoriaID:         r.CategoriaID,
		TempoPreparoMinutos: r.TempoPreparoMinutos,
		Porcoes:             r.Porcoes,
		ModoPreparo:         r.ModoPreparo,
		Ingredientes:        r.Ingredientes,
	}
}
