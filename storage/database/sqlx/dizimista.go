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
	"github.com/trezcool/dizimo/core/dizimista"
)

type dbDizimista struct {
	ID             string      `db:"id"`
	IgrejaID       null.String `db:"igreja_id"`
	IgrejaNome     null.String `db:"igreja_nome"`
	DizimoCentavos int64       `db:"dizimo_centavos"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
	PerfilID       string      `db:"perfil_id"`
	Nome           string      `db:"nome"`
	Endereco       null.String `db:"endereco"`
	Nascimento     null.Time   `db:"nascimento"`
	Genero         string      `db:"genero"`
	Telefone       null.String `db:"telefone"`
	Email          null.String `db:"email"`
}

func (d dbDizimista) toDizimista() dizimista.Dizimista {
	return dizimista.Dizimista{
		ID:         d.ID,
		IgrejaID:   d.IgrejaID,
		IgrejaNome: d.IgrejaNome.String,
		Dizimo:     core.Money{Cents: d.DizimoCentavos},
		Perfil: dizimista.Perfil{
			ID:         d.PerfilID,
			Owner:      dizimista.DizimistaOwner(d.ID),
			Nome:       d.Nome,
			Endereco:   d.Endereco,
			Nascimento: d.Nascimento,
			Genero:     dizimista.Genero(d.Genero),
			Telefone:   d.Telefone,
			Email:      d.Email,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

const dizimistaSelect = `
	SELECT d.id, d.igreja_id, i.nome AS igreja_nome, d.dizimo_centavos, d.created_at, d.updated_at,
	       p.id AS perfil_id, p.nome, p.endereco, p.nascimento, p.genero, p.telefone, p.email
	FROM dizimista d
	JOIN perfil p ON p.owner_dizimista_id = d.id
	LEFT JOIN igreja i ON i.id = d.igreja_id`

type dizimistaRepository struct {
	db *sqlx.DB
}

var _ dizimista.Repository = (*dizimistaRepository)(nil) // interface compliance check

func NewDizimistaRepository(db *sqlx.DB) *dizimistaRepository {
	return &dizimistaRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to dizimista.ErrNotFound
func (repo dizimistaRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return dizimista.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo dizimistaRepository) CreateDizimista(ctx context.Context, diz dizimista.Dizimista) (dizimista.Dizimista, error) {
	diz.ID = uuid.New().String()
	diz.Perfil.ID = uuid.New().String()
	diz.Perfil.Owner = dizimista.DizimistaOwner(diz.ID)

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return dizimista.Dizimista{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	const dq = `INSERT INTO dizimista (id, igreja_id, dizimo_centavos, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.ExecContext(ctx, dq, diz.ID, diz.IgrejaID, diz.Dizimo.Cents, diz.CreatedAt.UTC(), diz.UpdatedAt.UTC()); err != nil {
		return dizimista.Dizimista{}, errors.Wrap(err, "inserting dizimista")
	}
	const fq = `
		INSERT INTO perfil (id, owner_dizimista_id, nome, endereco, nascimento, genero, telefone, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err = tx.ExecContext(ctx, fq,
		diz.Perfil.ID, diz.ID, diz.Perfil.Nome, diz.Perfil.Endereco, diz.Perfil.Nascimento,
		string(diz.Perfil.Genero), diz.Perfil.Telefone, diz.Perfil.Email); err != nil {
		return dizimista.Dizimista{}, errors.Wrap(err, "inserting perfil")
	}

	if err = tx.Commit(); err != nil {
		return dizimista.Dizimista{}, errors.Wrap(err, "committing tx")
	}
	return repo.GetDizimistaByID(ctx, diz.ID)
}

func (repo dizimistaRepository) GetDizimistaByID(ctx context.Context, id string) (dizimista.Dizimista, error) {
	if _, err := uuid.Parse(id); err != nil {
		return dizimista.Dizimista{}, dizimista.ErrNotFound
	}
	var d dbDizimista
	if err := repo.db.GetContext(ctx, &d, dizimistaSelect+" WHERE d.id = $1", id); err != nil {
		return dizimista.Dizimista{}, repo.trapNoRowsErr(err, "finding dizimista by ID")
	}
	return d.toDizimista(), nil
}

func (repo dizimistaRepository) QueryDizimistas(ctx context.Context, scope core.Scope, filter *dizimista.QueryFilter, ordering []core.DBOrdering) ([]dizimista.Dizimista, error) {
	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !scope.All {
		where = append(where, "d.igreja_id = ANY("+arg(pq.Array(scope.IgrejaIDs))+")")
	}
	if filter != nil {
		if filter.IgrejaID != "" {
			where = append(where, "d.igreja_id = "+arg(filter.IgrejaID))
		}
		if filter.Genero != "" {
			where = append(where, "p.genero = "+arg(filter.Genero))
		}
		if filter.NascimentoMes != 0 {
			where = append(where, "EXTRACT(MONTH FROM p.nascimento) = "+arg(filter.NascimentoMes))
		}
		if filter.Search != "" {
			val := arg("%" + filter.Search + "%")
			where = append(where, fmt.Sprintf("(p.nome ILIKE %[1]s OR p.email ILIKE %[1]s OR p.telefone ILIKE %[1]s OR p.endereco ILIKE %[1]s)", val))
		}
	}

	q := dizimistaSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + orderBy(ordering, "p.nome ASC")

	var dbDizs []dbDizimista
	if err := repo.db.SelectContext(ctx, &dbDizs, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying dizimistas")
	}
	dizs := make([]dizimista.Dizimista, 0, len(dbDizs))
	for _, d := range dbDizs {
		dizs = append(dizs, d.toDizimista())
	}
	return dizs, nil
}

func (repo dizimistaRepository) CountDizimistas(ctx context.Context, scope core.Scope) (int, error) {
	q := "SELECT COUNT(*) FROM dizimista d"
	args := make([]interface{}, 0, 1)
	if !scope.All {
		q += " WHERE d.igreja_id = ANY($1)"
		args = append(args, pq.Array(scope.IgrejaIDs))
	}
	var count int
	if err := repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting dizimistas")
	}
	return count, nil
}

func (repo dizimistaRepository) UpdateDizimista(ctx context.Context, diz dizimista.Dizimista, setIgreja bool) (dizimista.Dizimista, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return dizimista.Dizimista{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	set := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if setIgreja {
		set = append(set, "igreja_id = "+arg(diz.IgrejaID))
	}
	if diz.Dizimo.Cents != 0 {
		set = append(set, "dizimo_centavos = "+arg(diz.Dizimo.Cents))
	}
	if !diz.UpdatedAt.IsZero() {
		set = append(set, "updated_at = "+arg(diz.UpdatedAt.UTC()))
	}
	if len(set) > 0 {
		q := fmt.Sprintf("UPDATE dizimista SET %s WHERE id = %s", strings.Join(set, ", "), arg(diz.ID))
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return dizimista.Dizimista{}, errors.Wrap(err, "updating dizimista")
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return dizimista.Dizimista{}, dizimista.ErrNotFound
		}
	}

	pset := make([]string, 0)
	pargs := make([]interface{}, 0)
	parg := func(v interface{}) string {
		pargs = append(pargs, v)
		return fmt.Sprintf("$%d", len(pargs))
	}
	if diz.Perfil.Nome != "" {
		pset = append(pset, "nome = "+parg(diz.Perfil.Nome))
	}
	if diz.Perfil.Endereco.Valid {
		pset = append(pset, "endereco = "+parg(diz.Perfil.Endereco))
	}
	if diz.Perfil.Nascimento.Valid {
		pset = append(pset, "nascimento = "+parg(diz.Perfil.Nascimento))
	}
	if diz.Perfil.Genero != "" {
		pset = append(pset, "genero = "+parg(string(diz.Perfil.Genero)))
	}
	if diz.Perfil.Telefone.Valid {
		pset = append(pset, "telefone = "+parg(diz.Perfil.Telefone))
	}
	if diz.Perfil.Email.Valid {
		pset = append(pset, "email = "+parg(diz.Perfil.Email))
	}
	if len(pset) > 0 {
		q := fmt.Sprintf("UPDATE perfil SET %s WHERE owner_dizimista_id = %s", strings.Join(pset, ", "), parg(diz.ID))
		if _, err = tx.ExecContext(ctx, q, pargs...); err != nil {
			return dizimista.Dizimista{}, errors.Wrap(err, "updating perfil")
		}
	}

	if err = tx.Commit(); err != nil {
		return dizimista.Dizimista{}, errors.Wrap(err, "committing tx")
	}
	return repo.GetDizimistaByID(ctx, diz.ID)
}

func (repo dizimistaRepository) DeleteDizimistasByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM dizimista WHERE id = ANY($1)", pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting dizimistas")
	}
	return nil
}
