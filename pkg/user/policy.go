package user

import (
	"github.com/google/uuid"

	"github.com/artem13815/accounts/pkg/apperr"
)

// Decision is the outcome of an authorization predicate.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// Err converts a denial into a FORBIDDEN error.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperr.Forbidden(d.Reason)
}

// CanList: only admins may list users.
func CanList(actor User) Decision {
	if !actor.IsAdmin() {
		return deny("Apenas administradores podem listar todos os usuários")
	}
	return allow()
}

// CanView: admins see everyone, users see themselves.
func CanView(actor User, target uuid.UUID) Decision {
	if !actor.IsAdmin() && actor.ID != target {
		return deny("Você só pode ver seus próprios dados")
	}
	return allow()
}

// CanUpdate: non-admins may only patch their own record and never its role,
// even when the supplied role equals the current one.
func CanUpdate(actor User, target uuid.UUID, p Patch) Decision {
	if actor.IsAdmin() {
		return allow()
	}
	if actor.ID != target {
		return deny("Você só pode atualizar seus próprios dados")
	}
	if p.Role != nil {
		return deny("Você não pode alterar seu próprio papel")
	}
	return allow()
}

// CanRemove: admins only, and never their own account.
func CanRemove(actor User, target uuid.UUID) Decision {
	if !actor.IsAdmin() {
		return deny("Apenas administradores podem excluir usuários")
	}
	if actor.ID == target {
		return deny("Você não pode excluir sua própria conta")
	}
	return allow()
}
