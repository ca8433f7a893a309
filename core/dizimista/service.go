package dizimista

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dizimo/core"
)

var ErrNotFound = errors.New("dizimista not found")

type (
	Repository interface {
		// CreateDizimista persists the dizimista together with its Perfil.
		CreateDizimista(ctx context.Context, diz Dizimista) (Dizimista, error)
		GetDizimistaByID(ctx context.Context, id string) (Dizimista, error)
		// QueryDizimistas applies AND operation on available QueryFilter
		// fields, restricted to the given scope.
		QueryDizimistas(ctx context.Context, scope core.Scope, filter *QueryFilter, ordering []core.DBOrdering) ([]Dizimista, error)
		CountDizimistas(ctx context.Context, scope core.Scope) (int, error)
		// UpdateDizimista updates the non-zero fields of diz and its Perfil;
		// setIgreja forces the (possibly null) IgrejaID to be written.
		UpdateDizimista(ctx context.Context, diz Dizimista, setIgreja bool) (Dizimista, error)
		DeleteDizimistasByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, nd NewDizimista) (Dizimista, error)
		GetByID(ctx context.Context, scope core.Scope, id string) (Dizimista, error)
		Query(ctx context.Context, scope core.Scope, filter *QueryFilter, ordering []core.DBOrdering) ([]Dizimista, error)
		Count(ctx context.Context, scope core.Scope) (int, error)
		Update(ctx context.Context, id string, ud UpdateDizimista) (Dizimista, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nd NewDizimista) (Dizimista, error) {
	now := time.Now().UTC()
	diz := Dizimista{
		IgrejaID: null.StringFrom(nd.IgrejaID),
		Dizimo:   nd.dizimo,
		Perfil: Perfil{
			Nome:       nd.Nome,
			Endereco:   null.NewString(nd.Endereco, nd.Endereco != ""),
			Nascimento: nd.nascimento,
			Genero:     Genero(nd.Genero),
			Telefone:   null.NewString(nd.Telefone, nd.Telefone != ""),
			Email:      null.NewString(nd.Email, nd.Email != ""),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateDizimista(ctx, diz)
}

func (svc *service) GetByID(ctx context.Context, scope core.Scope, id string) (Dizimista, error) {
	diz, err := svc.repo.GetDizimistaByID(ctx, id)
	if err != nil {
		return Dizimista{}, err
	}
	// a dizimista detached from its church is only visible to superusers
	if !scope.Contains(diz.IgrejaID.String) {
		return Dizimista{}, ErrNotFound
	}
	return diz, nil
}

func (svc *service) Query(ctx context.Context, scope core.Scope, filter *QueryFilter, ordering []core.DBOrdering) ([]Dizimista, error) {
	if scope.IsEmpty() {
		return []Dizimista{}, nil
	}
	return svc.repo.QueryDizimistas(ctx, scope, filter, ordering)
}

func (svc *service) Count(ctx context.Context, scope core.Scope) (int, error) {
	if scope.IsEmpty() {
		return 0, nil
	}
	return svc.repo.CountDizimistas(ctx, scope)
}

func (svc *service) Update(ctx context.Context, id string, ud UpdateDizimista) (Dizimista, error) {
	diz := Dizimista{
		ID:     id,
		Dizimo: ud.dizimo,
		Perfil: Perfil{
			Nome:       ud.Nome,
			Endereco:   null.NewString(ud.Endereco, ud.Endereco != ""),
			Nascimento: ud.nascimento,
			Genero:     Genero(ud.Genero),
			Telefone:   null.NewString(ud.Telefone, ud.Telefone != ""),
			Email:      null.NewString(ud.Email, ud.Email != ""),
		},
		UpdatedAt: time.Now().UTC(),
	}
	var setIgreja bool
	if ud.IgrejaID != nil {
		setIgreja = true
		diz.IgrejaID = null.NewString(*ud.IgrejaID, *ud.IgrejaID != "")
	}
	return svc.repo.UpdateDizimista(ctx, diz, setIgreja)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteDizimistasByID(ctx, ids...)
}
