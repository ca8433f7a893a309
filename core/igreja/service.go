package igreja

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/user"
)

var (
	// errors
	ErrNotFound   = errors.New("igreja not found")
	ErrNomeExists = errors.New("an igreja with this name already exists")
)

type (
	Repository interface {
		CheckNomeUniqueness(ctx context.Context, nome string, excluded ...Igreja) error
		CreateIgreja(ctx context.Context, igr Igreja) (Igreja, error)
		GetIgrejaByID(ctx context.Context, id string) (Igreja, error)
		// QueryIgrejas applies AND operation on available QueryFilter fields,
		// restricted to the given scope.
		QueryIgrejas(ctx context.Context, scope core.Scope, filter *QueryFilter, ordering []core.DBOrdering) ([]Igreja, error)
		// UpdateIgreja updates the non-zero fields of igr; nil membership
		// slices are left untouched.
		UpdateIgreja(ctx context.Context, igr Igreja) (Igreja, error)
		DeleteIgrejasByID(ctx context.Context, ids ...string) error
		// QueryIgrejaIDsForUser returns the IDs of every Igreja listing the
		// user as gestor or agente.
		QueryIgrejaIDsForUser(ctx context.Context, userID string) ([]string, error)
	}

	Service interface {
		CheckUniqueness(ctx context.Context, nome string, excluded ...Igreja) error
		Create(ctx context.Context, ni NewIgreja) (Igreja, error)
		GetByID(ctx context.Context, scope core.Scope, id string) (Igreja, error)
		Query(ctx context.Context, scope core.Scope, filter *QueryFilter, ordering []core.DBOrdering) ([]Igreja, error)
		Update(ctx context.Context, id string, ui UpdateIgreja) (Igreja, error)
		Delete(ctx context.Context, ids ...string) error
		// ScopeFor computes the church visibility scope of a user: everything
		// for superusers, else the churches where the user is gestor or agente.
		ScopeFor(ctx context.Context, usr user.User) (core.Scope, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(ctx context.Context, nome string, excluded ...Igreja) error {
	if err := svc.repo.CheckNomeUniqueness(ctx, nome, excluded...); err != nil {
		if err == ErrNomeExists {
			return core.NewValidationError(err, core.FieldError{Field: "nome", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ni NewIgreja) (Igreja, error) {
	now := time.Now().UTC()
	igr := Igreja{
		Nome:      ni.Nome,
		Endereco:  null.NewString(ni.Endereco, ni.Endereco != ""),
		GestorIDs: ni.GestorIDs,
		AgenteIDs: ni.AgenteIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateIgreja(ctx, igr)
}

func (svc *service) GetByID(ctx context.Context, scope core.Scope, id string) (Igreja, error) {
	igr, err := svc.repo.GetIgrejaByID(ctx, id)
	if err != nil {
		return Igreja{}, err
	}
	// out-of-scope records are indistinguishable from missing ones
	if !scope.Contains(igr.ID) {
		return Igreja{}, ErrNotFound
	}
	return igr, nil
}

func (svc *service) Query(ctx context.Context, scope core.Scope, filter *QueryFilter, ordering []core.DBOrdering) ([]Igreja, error) {
	if scope.IsEmpty() {
		return []Igreja{}, nil
	}
	return svc.repo.QueryIgrejas(ctx, scope, filter, ordering)
}

func (svc *service) Update(ctx context.Context, id string, ui UpdateIgreja) (Igreja, error) {
	igr := Igreja{
		ID:        id,
		Nome:      ui.Nome,
		GestorIDs: ui.GestorIDs,
		AgenteIDs: ui.AgenteIDs,
		UpdatedAt: time.Now().UTC(),
	}
	if ui.Endereco != nil {
		igr.Endereco = null.StringFrom(*ui.Endereco)
	}
	return svc.repo.UpdateIgreja(ctx, igr)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteIgrejasByID(ctx, ids...)
}

func (svc *service) ScopeFor(ctx context.Context, usr user.User) (core.Scope, error) {
	if usr.IsAdmin() {
		return core.UnrestrictedScope(), nil
	}
	ids, err := svc.repo.QueryIgrejaIDsForUser(ctx, usr.ID)
	if err != nil {
		return core.Scope{}, err
	}
	return core.ScopeOf(ids...), nil
}
