package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/igreja"
)

type igrejaRepository struct {
	db *DB
}

var _ igreja.Repository = (*igrejaRepository)(nil)

func NewIgrejaRepository(db *DB) *igrejaRepository {
	return &igrejaRepository{db: db}
}

// countDizimistas derives NumDizimistas; callers hold the lock.
func (repo *igrejaRepository) countDizimistas(igrejaID string) int {
	var n int
	for _, diz := range repo.db.dizimista {
		if diz.IgrejaID.String == igrejaID {
			n++
		}
	}
	return n
}

func (repo *igrejaRepository) get(id string) (igreja.Igreja, bool) {
	igr, ok := repo.db.igreja[id]
	if !ok {
		return igreja.Igreja{}, false
	}
	out := *igr
	out.NumDizimistas = repo.countDizimistas(id)
	return out, true
}

func (repo *igrejaRepository) CheckNomeUniqueness(ctx context.Context, nome string, excluded ...igreja.Igreja) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excl := make(map[string]struct{}, len(excluded))
	for _, igr := range excluded {
		excl[igr.ID] = struct{}{}
	}
	for _, igr := range repo.db.igreja {
		if _, ok := excl[igr.ID]; ok {
			continue
		}
		if igr.Nome == nome {
			return igreja.ErrNomeExists
		}
	}
	return nil
}

func (repo *igrejaRepository) CreateIgreja(ctx context.Context, igr igreja.Igreja) (igreja.Igreja, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	igr.ID = uuid.New().String()
	repo.db.igreja[igr.ID] = &igr
	return igr, nil
}

func (repo *igrejaRepository) GetIgrejaByID(ctx context.Context, id string) (igreja.Igreja, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if igr, ok := repo.get(id); ok {
		return igr, nil
	}
	return igreja.Igreja{}, igreja.ErrNotFound
}

func (repo *igrejaRepository) QueryIgrejas(ctx context.Context, scope core.Scope, filter *igreja.QueryFilter, ordering []core.DBOrdering) ([]igreja.Igreja, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	igrs := make([]igreja.Igreja, 0)
	for id := range repo.db.igreja {
		igr, _ := repo.get(id)
		if !scope.Contains(igr.ID) {
			continue
		}
		if filter != nil && filter.Search != "" {
			kw := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(igr.Nome), kw) &&
				!strings.Contains(strings.ToLower(igr.Endereco.String), kw) {
				continue
			}
		}
		igrs = append(igrs, igr)
	}
	sort.Slice(igrs, func(i, j int) bool { return igrs[i].Nome < igrs[j].Nome })
	return igrs, nil
}

func (repo *igrejaRepository) UpdateIgreja(ctx context.Context, igr igreja.Igreja) (igreja.Igreja, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.igreja[igr.ID]
	if !ok {
		return igreja.Igreja{}, igreja.ErrNotFound
	}
	if igr.Nome != "" {
		orig.Nome = igr.Nome
	}
	if igr.Endereco.Valid {
		orig.Endereco = igr.Endereco
	}
	if igr.GestorIDs != nil {
		orig.GestorIDs = igr.GestorIDs
	}
	if igr.AgenteIDs != nil {
		orig.AgenteIDs = igr.AgenteIDs
	}
	if !igr.UpdatedAt.IsZero() {
		orig.UpdatedAt = igr.UpdatedAt
	}
	out := *orig
	out.NumDizimistas = repo.countDizimistas(igr.ID)
	return out, nil
}

func (repo *igrejaRepository) DeleteIgrejasByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.igreja, id)
		// SET NULL on the dizimista side
		for _, diz := range repo.db.dizimista {
			if diz.IgrejaID.String == id {
				diz.IgrejaID.Valid = false
				diz.IgrejaID.String = ""
				diz.IgrejaNome = ""
			}
		}
	}
	return nil
}

func (repo *igrejaRepository) QueryIgrejaIDsForUser(ctx context.Context, userID string) ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ids := make([]string, 0)
	for _, igr := range repo.db.igreja {
		if igr.HasMember(userID) {
			ids = append(ids, igr.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
