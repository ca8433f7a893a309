package igreja

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dizimo/core"
)

// Igreja is a congregation. Its gestores run the church's back office and its
// agentes do field work (registering tithe payments); both membership sets
// drive visibility scoping.
type Igreja struct {
	ID        string      `json:"id"`
	Nome      string      `json:"nome"`
	Endereco  null.String `json:"endereco"`
	GestorIDs []string    `json:"gestor_ids"`
	AgenteIDs []string    `json:"agente_ids"`
	// NumDizimistas is the derived count of registered tithe-payers; list views only.
	NumDizimistas int       `json:"num_dizimistas"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

// HasMember reports whether the user appears in the gestor or agente set.
func (i Igreja) HasMember(userID string) bool {
	for _, id := range i.GestorIDs {
		if id == userID {
			return true
		}
	}
	for _, id := range i.AgenteIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// NewIgreja contains information needed to register a new Igreja.
type NewIgreja struct {
	Nome      string   `json:"nome" validate:"required"`
	Endereco  string   `json:"endereco"`
	GestorIDs []string `json:"gestor_ids"`
	AgenteIDs []string `json:"agente_ids"`
}

func (ni *NewIgreja) Validate(ctx context.Context, svc Service) error {
	ni.Nome = core.CleanString(ni.Nome)
	ni.Endereco = core.CleanString(ni.Endereco)

	if err := core.Validate.Struct(ni); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, ni.Nome)
}

// UpdateIgreja defines what information may be provided to modify an existing
// Igreja. Nil slices leave the membership untouched; empty slices clear it.
type UpdateIgreja struct {
	Nome      string   `json:"nome"`
	Endereco  *string  `json:"endereco"`
	GestorIDs []string `json:"gestor_ids"`
	AgenteIDs []string `json:"agente_ids"`
}

func (ui *UpdateIgreja) Validate(ctx context.Context, orig Igreja, svc Service) error {
	if nome := core.CleanString(ui.Nome); nome != "" {
		ui.Nome = nome
	} else {
		ui.Nome = orig.Nome
	}
	if ui.Endereco != nil {
		cleaned := core.CleanString(*ui.Endereco)
		ui.Endereco = &cleaned
	}

	if err := core.Validate.Struct(ui); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, ui.Nome, orig)
}

type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool { return qf.Search == "" }

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
