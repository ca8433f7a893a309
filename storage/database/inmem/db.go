// Package inmemdb is a map-backed implementation of the domain repositories,
// used by tests and local tinkering. Custom result ordering is not supported;
// each repository sorts by its default ordering only.
package inmemdb

import (
	"sync"

	"github.com/trezcool/dizimo/core/dizimista"
	"github.com/trezcool/dizimo/core/igreja"
	"github.com/trezcool/dizimo/core/pagamento"
	"github.com/trezcool/dizimo/core/user"
)

type (
	DB struct {
		mutex     sync.RWMutex
		user      map[string]*user.User
		igreja    map[string]*igreja.Igreja
		dizimista map[string]*dizimista.Dizimista
		pagamento map[string]*pagamento.Pagamento
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:      make(map[string]*user.User),
		igreja:    make(map[string]*igreja.Igreja),
		dizimista: make(map[string]*dizimista.Dizimista),
		pagamento: make(map[string]*pagamento.Pagamento),
	}
	return db, nil
}

// Reset drops all stored data; tests only.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.user = make(map[string]*user.User)
	db.igreja = make(map[string]*igreja.Igreja)
	db.dizimista = make(map[string]*dizimista.Dizimista)
	db.pagamento = make(map[string]*pagamento.Pagamento)
}
