package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/igreja"
)

type dbIgreja struct {
	ID            string      `db:"id"`
	Nome          string      `db:"nome"`
	Endereco      null.String `db:"endereco"`
	NumDizimistas int         `db:"num_dizimistas"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func (i dbIgreja) toIgreja() igreja.Igreja {
	return igreja.Igreja{
		ID:            i.ID,
		Nome:          i.Nome,
		Endereco:      i.Endereco,
		NumDizimistas: i.NumDizimistas,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

const igrejaSelect = `
	SELECT i.id, i.nome, i.endereco, i.created_at, i.updated_at,
	       (SELECT COUNT(*) FROM dizimista d WHERE d.igreja_id = i.id) AS num_dizimistas
	FROM igreja i`

type igrejaRepository struct {
	db *sqlx.DB
}

var _ igreja.Repository = (*igrejaRepository)(nil) // interface compliance check

func NewIgrejaRepository(db *sqlx.DB) *igrejaRepository {
	return &igrejaRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to igreja.ErrNotFound
func (repo igrejaRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return igreja.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo igrejaRepository) CheckNomeUniqueness(ctx context.Context, nome string, excluded ...igreja.Igreja) error {
	ids := make([]string, 0, len(excluded))
	for _, igr := range excluded {
		ids = append(ids, igr.ID)
	}
	var exists bool
	const q = `SELECT EXISTS (SELECT 1 FROM igreja WHERE nome = $1 AND NOT (id = ANY($2)))`
	if err := repo.db.GetContext(ctx, &exists, q, nome, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "checking igreja uniqueness")
	}
	if exists {
		return igreja.ErrNomeExists
	}
	return nil
}

func (repo igrejaRepository) CreateIgreja(ctx context.Context, igr igreja.Igreja) (igreja.Igreja, error) {
	igr.ID = uuid.New().String()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return igreja.Igreja{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `INSERT INTO igreja (id, nome, endereco, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.ExecContext(ctx, q, igr.ID, igr.Nome, igr.Endereco, igr.CreatedAt.UTC(), igr.UpdatedAt.UTC()); err != nil {
		return igreja.Igreja{}, errors.Wrap(err, "inserting igreja")
	}
	if err = repo.setMembers(ctx, tx, igr.ID, "igreja_gestor", igr.GestorIDs); err != nil {
		return igreja.Igreja{}, err
	}
	if err = repo.setMembers(ctx, tx, igr.ID, "igreja_agente", igr.AgenteIDs); err != nil {
		return igreja.Igreja{}, err
	}

	if err = tx.Commit(); err != nil {
		return igreja.Igreja{}, errors.Wrap(err, "committing tx")
	}
	return igr, nil
}

func (repo igrejaRepository) setMembers(ctx context.Context, tx *sqlx.Tx, igrejaID, table string, userIDs []string) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE igreja_id = $1", table), igrejaID); err != nil {
		return errors.Wrap(err, "clearing "+table)
	}
	for _, uid := range userIDs {
		q := fmt.Sprintf("INSERT INTO %s (igreja_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", table)
		if _, err := tx.ExecContext(ctx, q, igrejaID, uid); err != nil {
			return errors.Wrap(err, "inserting into "+table)
		}
	}
	return nil
}

func (repo igrejaRepository) loadMembers(ctx context.Context, igrs []igreja.Igreja) error {
	if len(igrs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(igrs))
	idx := make(map[string]*igreja.Igreja, len(igrs))
	for i := range igrs {
		ids = append(ids, igrs[i].ID)
		idx[igrs[i].ID] = &igrs[i]
	}

	load := func(table string, assign func(igr *igreja.Igreja, userID string)) error {
		var rows []struct {
			IgrejaID string `db:"igreja_id"`
			UserID   string `db:"user_id"`
		}
		q := fmt.Sprintf("SELECT igreja_id, user_id FROM %s WHERE igreja_id = ANY($1) ORDER BY user_id", table)
		if err := repo.db.SelectContext(ctx, &rows, q, pq.Array(ids)); err != nil {
			return errors.Wrap(err, "loading "+table)
		}
		for _, row := range rows {
			assign(idx[row.IgrejaID], row.UserID)
		}
		return nil
	}

	if err := load("igreja_gestor", func(igr *igreja.Igreja, uid string) { igr.GestorIDs = append(igr.GestorIDs, uid) }); err != nil {
		return err
	}
	return load("igreja_agente", func(igr *igreja.Igreja, uid string) { igr.AgenteIDs = append(igr.AgenteIDs, uid) })
}

func (repo igrejaRepository) GetIgrejaByID(ctx context.Context, id string) (igreja.Igreja, error) {
	if _, err := uuid.Parse(id); err != nil {
		return igreja.Igreja{}, igreja.ErrNotFound
	}
	var i dbIgreja
	if err := repo.db.GetContext(ctx, &i, igrejaSelect+" WHERE i.id = $1", id); err != nil {
		return igreja.Igreja{}, repo.trapNoRowsErr(err, "finding igreja by ID")
	}
	igrs := []igreja.Igreja{i.toIgreja()}
	if err := repo.loadMembers(ctx, igrs); err != nil {
		return igreja.Igreja{}, err
	}
	return igrs[0], nil
}

func (repo igrejaRepository) QueryIgrejas(ctx context.Context, scope core.Scope, filter *igreja.QueryFilter, ordering []core.DBOrdering) ([]igreja.Igreja, error) {
	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !scope.All {
		where = append(where, "i.id = ANY("+arg(pq.Array(scope.IgrejaIDs))+")")
	}
	if filter != nil && filter.Search != "" {
		val := arg("%" + filter.Search + "%")
		where = append(where, fmt.Sprintf("(i.nome ILIKE %[1]s OR i.endereco ILIKE %[1]s)", val))
	}

	q := igrejaSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + orderBy(ordering, "i.nome ASC")

	var dbIgrejas []dbIgreja
	if err := repo.db.SelectContext(ctx, &dbIgrejas, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying igrejas")
	}
	igrs := make([]igreja.Igreja, 0, len(dbIgrejas))
	for _, i := range dbIgrejas {
		igrs = append(igrs, i.toIgreja())
	}
	if err := repo.loadMembers(ctx, igrs); err != nil {
		return nil, err
	}
	return igrs, nil
}

func (repo igrejaRepository) UpdateIgreja(ctx context.Context, igr igreja.Igreja) (igreja.Igreja, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return igreja.Igreja{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	set := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if igr.Nome != "" {
		set = append(set, "nome = "+arg(igr.Nome))
	}
	if igr.Endereco.Valid {
		set = append(set, "endereco = "+arg(igr.Endereco))
	}
	if !igr.UpdatedAt.IsZero() {
		set = append(set, "updated_at = "+arg(igr.UpdatedAt.UTC()))
	}

	if len(set) > 0 {
		q := fmt.Sprintf("UPDATE igreja SET %s WHERE id = %s", strings.Join(set, ", "), arg(igr.ID))
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return igreja.Igreja{}, errors.Wrap(err, "updating igreja")
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return igreja.Igreja{}, igreja.ErrNotFound
		}
	}

	// nil membership slices are left untouched; empty slices clear it
	if igr.GestorIDs != nil {
		if err = repo.setMembers(ctx, tx, igr.ID, "igreja_gestor", igr.GestorIDs); err != nil {
			return igreja.Igreja{}, err
		}
	}
	if igr.AgenteIDs != nil {
		if err = repo.setMembers(ctx, tx, igr.ID, "igreja_agente", igr.AgenteIDs); err != nil {
			return igreja.Igreja{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return igreja.Igreja{}, errors.Wrap(err, "committing tx")
	}
	return repo.GetIgrejaByID(ctx, igr.ID)
}

func (repo igrejaRepository) DeleteIgrejasByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM igreja WHERE id = ANY($1)", pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting igrejas")
	}
	return nil
}

func (repo igrejaRepository) QueryIgrejaIDsForUser(ctx context.Context, userID string) ([]string, error) {
	const q = `
		SELECT igreja_id FROM igreja_gestor WHERE user_id = $1
		UNION
		SELECT igreja_id FROM igreja_agente WHERE user_id = $1`
	ids := make([]string, 0)
	if err := repo.db.SelectContext(ctx, &ids, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying igreja IDs for user")
	}
	return ids, nil
}
