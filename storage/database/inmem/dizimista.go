package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/dizimista"
)

type dizimistaRepository struct {
	db *DB
}

var _ dizimista.Repository = (*dizimistaRepository)(nil)

func NewDizimistaRepository(db *DB) *dizimistaRepository {
	return &dizimistaRepository{db: db}
}

// get denormalizes IgrejaNome; callers hold the lock.
func (repo *dizimistaRepository) get(id string) (dizimista.Dizimista, bool) {
	diz, ok := repo.db.dizimista[id]
	if !ok {
		return dizimista.Dizimista{}, false
	}
	out := *diz
	if igr, ok := repo.db.igreja[out.IgrejaID.String]; ok {
		out.IgrejaNome = igr.Nome
	} else {
		out.IgrejaNome = ""
	}
	return out, true
}

func (repo *dizimistaRepository) CreateDizimista(ctx context.Context, diz dizimista.Dizimista) (dizimista.Dizimista, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	diz.ID = uuid.New().String()
	diz.Perfil.ID = uuid.New().String()
	diz.Perfil.Owner = dizimista.DizimistaOwner(diz.ID)
	repo.db.dizimista[diz.ID] = &diz

	out, _ := repo.get(diz.ID)
	return out, nil
}

func (repo *dizimistaRepository) GetDizimistaByID(ctx context.Context, id string) (dizimista.Dizimista, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if diz, ok := repo.get(id); ok {
		return diz, nil
	}
	return dizimista.Dizimista{}, dizimista.ErrNotFound
}

func (repo *dizimistaRepository) QueryDizimistas(ctx context.Context, scope core.Scope, filter *dizimista.QueryFilter, ordering []core.DBOrdering) ([]dizimista.Dizimista, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	dizs := make([]dizimista.Dizimista, 0)
	for id := range repo.db.dizimista {
		diz, _ := repo.get(id)
		if !scope.Contains(diz.IgrejaID.String) {
			continue
		}
		if !matchDizimista(diz, filter) {
			continue
		}
		dizs = append(dizs, diz)
	}
	sort.Slice(dizs, func(i, j int) bool { return dizs[i].Perfil.Nome < dizs[j].Perfil.Nome })
	return dizs, nil
}

func matchDizimista(diz dizimista.Dizimista, filter *dizimista.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.IgrejaID != "" && diz.IgrejaID.String != filter.IgrejaID {
		return false
	}
	if filter.Genero != "" && string(diz.Perfil.Genero) != filter.Genero {
		return false
	}
	if filter.NascimentoMes != 0 {
		if !diz.Perfil.Nascimento.Valid || int(diz.Perfil.Nascimento.Time.Month()) != filter.NascimentoMes {
			return false
		}
	}
	if filter.Search != "" {
		kw := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(diz.Perfil.Nome), kw) &&
			!strings.Contains(strings.ToLower(diz.Perfil.Email.String), kw) &&
			!strings.Contains(strings.ToLower(diz.Perfil.Telefone.String), kw) &&
			!strings.Contains(strings.ToLower(diz.Perfil.Endereco.String), kw) {
			return false
		}
	}
	return true
}

func (repo *dizimistaRepository) CountDizimistas(ctx context.Context, scope core.Scope) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, diz := range repo.db.dizimista {
		if scope.Contains(diz.IgrejaID.String) {
			n++
		}
	}
	return n, nil
}

func (repo *dizimistaRepository) UpdateDizimista(ctx context.Context, diz dizimista.Dizimista, setIgreja bool) (dizimista.Dizimista, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.dizimista[diz.ID]
	if !ok {
		return dizimista.Dizimista{}, dizimista.ErrNotFound
	}
	if setIgreja {
		orig.IgrejaID = diz.IgrejaID
	}
	if diz.Dizimo.Cents != 0 {
		orig.Dizimo = diz.Dizimo
	}
	if diz.Perfil.Nome != "" {
		orig.Perfil.Nome = diz.Perfil.Nome
	}
	if diz.Perfil.Endereco.Valid {
		orig.Perfil.Endereco = diz.Perfil.Endereco
	}
	if diz.Perfil.Nascimento.Valid {
		orig.Perfil.Nascimento = diz.Perfil.Nascimento
	}
	if diz.Perfil.Genero != "" {
		orig.Perfil.Genero = diz.Perfil.Genero
	}
	if diz.Perfil.Telefone.Valid {
		orig.Perfil.Telefone = diz.Perfil.Telefone
	}
	if diz.Perfil.Email.Valid {
		orig.Perfil.Email = diz.Perfil.Email
	}
	if !diz.UpdatedAt.IsZero() {
		orig.UpdatedAt = diz.UpdatedAt
	}

	out, _ := repo.get(diz.ID)
	return out, nil
}

func (repo *dizimistaRepository) DeleteDizimistasByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.dizimista, id)
		// SET NULL on the pagamento side
		for _, pag := range repo.db.pagamento {
			if pag.DizimistaID.String == id {
				pag.DizimistaID.Valid = false
				pag.DizimistaID.String = ""
			}
		}
	}
	return nil
}
