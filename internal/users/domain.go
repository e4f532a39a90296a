package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/condofacil/condofacil/internal/authz"
)

// Status marks whether an account may sign in.
type Status string

const (
	// StatusAtivo allows the account to authenticate.
	StatusAtivo Status = "ativo"
	// StatusInativo blocks authentication without deleting history.
	StatusInativo Status = "inativo"
)

// User represents a resident or administrator account.
type User struct {
	ID           uuid.UUID
	Nome         string
	Email        string
	Papel        authz.Role
	Status       Status
	PasswordHash string
	DataCadastro time.Time
}

// Ativo reports whether the account may sign in.
func (u User) Ativo() bool { return u.Status == StatusAtivo }
