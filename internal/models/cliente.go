package models

import (
	"time"

	"github.com/google/uuid"
)

// TipoPessoa discriminates individual and organization customers.
type TipoPessoa string

const (
	PessoaFisica   TipoPessoa = "FISICA"
	PessoaJuridica TipoPessoa = "JURIDICA"
)

// Cliente is a customer record. Which of the document fields apply depends
// on TipoPessoa: FISICA carries a CPF and nothing else; JURIDICA carries a
// CNPJ plus the responsible person's name and CPF. The store enforces the
// same rules through a check constraint.
type Cliente struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Nome            string     `gorm:"type:varchar(150);not null;index" json:"nome"`
	Endereco        *string    `gorm:"type:text" json:"endereco"`
	Telefone        *string    `gorm:"type:varchar(30)" json:"telefone"`
	Email           *string    `gorm:"type:varchar(150)" json:"email"`
	TipoPessoa      TipoPessoa `gorm:"type:varchar(8);not null;index" json:"tipo_pessoa"`
	CPF             *string    `gorm:"type:char(11);uniqueIndex:uq_clientes_cpf" json:"cpf"`
	CNPJ            *string    `gorm:"type:char(14);uniqueIndex:uq_clientes_cnpj" json:"cnpj"`
	ResponsavelNome *string    `gorm:"type:varchar(150)" json:"responsavel_nome"`
	ResponsavelCPF  *string    `gorm:"type:char(11)" json:"responsavel_cpf"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
