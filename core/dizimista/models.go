package dizimista

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dizimo/core"
)

type Genero string

const (
	GeneroFeminino  Genero = "F"
	GeneroMasculino Genero = "M"
	GeneroOutro     Genero = "O"
)

// OwnerKind discriminates who a Perfil belongs to.
type OwnerKind int

const (
	OwnerNone OwnerKind = iota
	OwnerUser
	OwnerDizimista
)

// Owner is the tagged link from a Perfil to the record owning it: a staff
// user, a dizimista, or nobody. Exactly one variant is ever set.
type Owner struct {
	Kind OwnerKind `json:"kind"`
	ID   string    `json:"id,omitempty"`
}

func UserOwner(userID string) Owner     { return Owner{Kind: OwnerUser, ID: userID} }
func DizimistaOwner(dizID string) Owner { return Owner{Kind: OwnerDizimista, ID: dizID} }

// Perfil is a personal-data record, owned by a staff user or a dizimista.
type Perfil struct {
	ID         string      `json:"id"`
	Owner      Owner       `json:"-"`
	Nome       string      `json:"nome"`
	Endereco   null.String `json:"endereco"`
	Nascimento null.Time   `json:"nascimento"`
	Genero     Genero      `json:"genero"`
	Telefone   null.String `json:"telefone"`
	Email      null.String `json:"email"`
}

// Dizimista is a registered tithe-payer of an Igreja.
type Dizimista struct {
	ID string `json:"id"`
	// IgrejaID is cleared (not cascaded) when the church is deleted.
	IgrejaID   null.String `json:"igreja_id"`
	IgrejaNome string      `json:"igreja_nome,omitempty"` // denormalized for lists/exports
	// Dizimo is the optional pledged monthly amount; zero means no pledge.
	Dizimo    core.Money `json:"dizimo"`
	Perfil    Perfil     `json:"perfil"`
	CreatedAt time.Time  `json:"created_at"` // UTC
	UpdatedAt time.Time  `json:"updated_at"` // UTC
}

const nascimentoLayout = "2006-01-02"

// NewDizimista contains information needed to register a new Dizimista.
type NewDizimista struct {
	IgrejaID   string `json:"igreja_id" validate:"required"`
	Nome       string `json:"nome" validate:"required"`
	Endereco   string `json:"endereco"`
	Nascimento string `json:"nascimento" validate:"omitempty,datetime=2006-01-02"`
	Genero     string `json:"genero" validate:"omitempty,genero"`
	Telefone   string `json:"telefone"`
	Email      string `json:"email" validate:"omitempty,email"`
	Dizimo     string `json:"dizimo"`

	// parsed during Validate
	nascimento null.Time
	dizimo     core.Money
}

func (nd *NewDizimista) Validate(ctx context.Context) error {
	nd.Nome = core.CleanString(nd.Nome)
	nd.Endereco = core.CleanString(nd.Endereco)
	nd.Telefone = core.CleanString(nd.Telefone)
	nd.Email = core.CleanString(nd.Email, true /* lower */)
	if nd.Genero == "" {
		nd.Genero = string(GeneroFeminino)
	}

	if err := core.Validate.Struct(nd); err != nil {
		return err
	}

	if nd.Nascimento != "" {
		t, err := time.Parse(nascimentoLayout, nd.Nascimento)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "nascimento", Error: "invalid date"})
		}
		nd.nascimento = null.TimeFrom(t)
	}
	if nd.Dizimo != "" {
		m, err := core.ParseValor(nd.Dizimo)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "dizimo", Error: err.Error()})
		}
		nd.dizimo = m
	}
	return nil
}

// UpdateDizimista defines what information may be provided to modify an
// existing Dizimista. Empty fields are left untouched; IgrejaID may be set to
// an empty string to detach the dizimista from its church.
type UpdateDizimista struct {
	IgrejaID   *string `json:"igreja_id"`
	Nome       string  `json:"nome"`
	Endereco   string  `json:"endereco"`
	Nascimento string  `json:"nascimento" validate:"omitempty,datetime=2006-01-02"`
	Genero     string  `json:"genero" validate:"omitempty,genero"`
	Telefone   string  `json:"telefone"`
	Email      string  `json:"email" validate:"omitempty,email"`
	Dizimo     string  `json:"dizimo"`

	// parsed during Validate
	nascimento null.Time
	dizimo     core.Money
}

func (ud *UpdateDizimista) Validate(ctx context.Context) error {
	ud.Nome = core.CleanString(ud.Nome)
	ud.Endereco = core.CleanString(ud.Endereco)
	ud.Telefone = core.CleanString(ud.Telefone)
	ud.Email = core.CleanString(ud.Email, true /* lower */)

	if err := core.Validate.Struct(ud); err != nil {
		return err
	}

	if ud.Nascimento != "" {
		t, err := time.Parse(nascimentoLayout, ud.Nascimento)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "nascimento", Error: "invalid date"})
		}
		ud.nascimento = null.TimeFrom(t)
	}
	if ud.Dizimo != "" {
		m, err := core.ParseValor(ud.Dizimo)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "dizimo", Error: err.Error()})
		}
		ud.dizimo = m
	}
	return nil
}

type QueryFilter struct {
	IgrejaID string `query:"igreja"`
	Genero   string `query:"genero"`
	// NascimentoMes filters by birth month (1-12).
	NascimentoMes int    `query:"nascimento_mes"`
	Search        string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.IgrejaID == "" && qf.Genero == "" && qf.NascimentoMes == 0 && qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
