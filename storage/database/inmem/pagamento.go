package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/pagamento"
)

type pagamentoRepository struct {
	db *DB
}

var _ pagamento.Repository = (*pagamentoRepository)(nil)

func NewPagamentoRepository(db *DB) *pagamentoRepository {
	return &pagamentoRepository{db: db}
}

// get denormalizes the dizimista, igreja and user names; callers hold the lock.
func (repo *pagamentoRepository) get(id string) (pagamento.Pagamento, bool) {
	pag, ok := repo.db.pagamento[id]
	if !ok {
		return pagamento.Pagamento{}, false
	}
	out := *pag
	out.DizimistaNome = ""
	out.IgrejaID = null.String{}
	out.IgrejaNome = ""
	out.RegistradoPor = ""
	if diz, ok := repo.db.dizimista[out.DizimistaID.String]; ok {
		out.DizimistaNome = diz.Perfil.Nome
		if igr, ok := repo.db.igreja[diz.IgrejaID.String]; ok {
			out.IgrejaID = null.StringFrom(igr.ID)
			out.IgrejaNome = igr.Nome
		}
	}
	if usr, ok := repo.db.user[out.RegistradoPorID.String]; ok {
		out.RegistradoPor = usr.Name
	}
	return out, true
}

func (repo *pagamentoRepository) CreatePagamento(ctx context.Context, pag pagamento.Pagamento) (pagamento.Pagamento, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	pag.ID = uuid.New().String()
	repo.db.pagamento[pag.ID] = &pag

	out, _ := repo.get(pag.ID)
	return out, nil
}

func (repo *pagamentoRepository) GetPagamentoByID(ctx context.Context, id string) (pagamento.Pagamento, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if pag, ok := repo.get(id); ok {
		return pag, nil
	}
	return pagamento.Pagamento{}, pagamento.ErrNotFound
}

func (repo *pagamentoRepository) QueryPagamentos(ctx context.Context, scope core.Scope, filter *pagamento.QueryFilter, ordering []core.DBOrdering) ([]pagamento.Pagamento, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	pags := make([]pagamento.Pagamento, 0)
	for id := range repo.db.pagamento {
		pag, _ := repo.get(id)
		if !scope.Contains(pag.IgrejaID.String) {
			continue
		}
		if !matchPagamento(pag, filter) {
			continue
		}
		pags = append(pags, pag)
	}
	sort.Slice(pags, func(i, j int) bool { return pags[i].Data.After(pags[j].Data) })
	return pags, nil
}

func matchPagamento(pag pagamento.Pagamento, filter *pagamento.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.IgrejaID != "" && pag.IgrejaID.String != filter.IgrejaID {
		return false
	}
	if start, end, ok := filter.MesRange(); ok {
		if pag.Data.Before(start) || !pag.Data.Before(end) {
			return false
		}
	}
	if filter.RegistradoPorID != "" && pag.RegistradoPorID.String != filter.RegistradoPorID {
		return false
	}
	if !filter.From.IsZero() && pag.Data.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && pag.Data.After(filter.To) {
		return false
	}
	return true
}

func (repo *pagamentoRepository) SummarizePagamentos(ctx context.Context, scope core.Scope, from, to time.Time) (int, core.Money, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	var cents int64
	for id := range repo.db.pagamento {
		pag, _ := repo.get(id)
		if !scope.Contains(pag.IgrejaID.String) {
			continue
		}
		if pag.Data.Before(from) || !pag.Data.Before(to) {
			continue
		}
		count++
		cents += pag.Valor.Cents
	}
	return count, core.Money{Cents: cents}, nil
}

func (repo *pagamentoRepository) DeletePagamentosByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.pagamento, id)
	}
	return nil
}
