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
	"github.com/trezcool/dizimo/core/pagamento"
)

type dbPagamento struct {
	ID              string      `db:"id"`
	DizimistaID     null.String `db:"dizimista_id"`
	Data            time.Time   `db:"data"`
	ValorCentavos   int64       `db:"valor_centavos"`
	RegistradoPorID null.String `db:"registrado_por_id"`
	DizimistaNome   null.String `db:"dizimista_nome"`
	IgrejaID        null.String `db:"igreja_id"`
	IgrejaNome      null.String `db:"igreja_nome"`
	RegistradoPor   null.String `db:"registrado_por"`
}

func (p dbPagamento) toPagamento() pagamento.Pagamento {
	return pagamento.Pagamento{
		ID:              p.ID,
		DizimistaID:     p.DizimistaID,
		Data:            p.Data,
		Valor:           core.Money{Cents: p.ValorCentavos},
		RegistradoPorID: p.RegistradoPorID,
		DizimistaNome:   p.DizimistaNome.String,
		IgrejaID:        p.IgrejaID,
		IgrejaNome:      p.IgrejaNome.String,
		RegistradoPor:   p.RegistradoPor.String,
	}
}

const pagamentoSelect = `
	SELECT pg.id, pg.dizimista_id, pg.data, pg.valor_centavos, pg.registrado_por_id,
	       pf.nome AS dizimista_nome, i.id AS igreja_id, i.nome AS igreja_nome, u.name AS registrado_por
	FROM pagamento pg
	LEFT JOIN dizimista d ON d.id = pg.dizimista_id
	LEFT JOIN perfil pf ON pf.owner_dizimista_id = d.id
	LEFT JOIN igreja i ON i.id = d.igreja_id
	LEFT JOIN "user" u ON u.id = pg.registrado_por_id`

type pagamentoRepository struct {
	db *sqlx.DB
}

var _ pagamento.Repository = (*pagamentoRepository)(nil) // interface compliance check

func NewPagamentoRepository(db *sqlx.DB) *pagamentoRepository {
	return &pagamentoRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to pagamento.ErrNotFound
func (repo pagamentoRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return pagamento.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo pagamentoRepository) CreatePagamento(ctx context.Context, pag pagamento.Pagamento) (pagamento.Pagamento, error) {
	pag.ID = uuid.New().String()
	const q = `INSERT INTO pagamento (id, dizimista_id, data, valor_centavos, registrado_por_id) VALUES ($1, $2, $3, $4, $5)`
	_, err := repo.db.ExecContext(ctx, q, pag.ID, pag.DizimistaID, pag.Data.UTC(), pag.Valor.Cents, pag.RegistradoPorID)
	if err != nil {
		return pagamento.Pagamento{}, errors.Wrap(err, "inserting pagamento")
	}
	return repo.GetPagamentoByID(ctx, pag.ID)
}

func (repo pagamentoRepository) GetPagamentoByID(ctx context.Context, id string) (pagamento.Pagamento, error) {
	if _, err := uuid.Parse(id); err != nil {
		return pagamento.Pagamento{}, pagamento.ErrNotFound
	}
	var p dbPagamento
	if err := repo.db.GetContext(ctx, &p, pagamentoSelect+" WHERE pg.id = $1", id); err != nil {
		return pagamento.Pagamento{}, repo.trapNoRowsErr(err, "finding pagamento by ID")
	}
	return p.toPagamento(), nil
}

func (repo pagamentoRepository) QueryPagamentos(ctx context.Context, scope core.Scope, filter *pagamento.QueryFilter, ordering []core.DBOrdering) ([]pagamento.Pagamento, error) {
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
		if start, end, ok := filter.MesRange(); ok {
			where = append(where, "pg.data >= "+arg(start), "pg.data < "+arg(end))
		}
		if filter.RegistradoPorID != "" {
			where = append(where, "pg.registrado_por_id = "+arg(filter.RegistradoPorID))
		}
		if !filter.From.IsZero() {
			where = append(where, "pg.data >= "+arg(filter.From.UTC()))
		}
		if !filter.To.IsZero() {
			where = append(where, "pg.data <= "+arg(filter.To.UTC()))
		}
	}

	q := pagamentoSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + orderBy(ordering, "pg.data DESC")

	var dbPags []dbPagamento
	if err := repo.db.SelectContext(ctx, &dbPags, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying pagamentos")
	}
	pags := make([]pagamento.Pagamento, 0, len(dbPags))
	for _, p := range dbPags {
		pags = append(pags, p.toPagamento())
	}
	return pags, nil
}

func (repo pagamentoRepository) SummarizePagamentos(ctx context.Context, scope core.Scope, from, to time.Time) (int, core.Money, error) {
	args := []interface{}{from.UTC(), to.UTC()}
	q := `
		SELECT COUNT(*), COALESCE(SUM(pg.valor_centavos), 0)
		FROM pagamento pg
		LEFT JOIN dizimista d ON d.id = pg.dizimista_id
		WHERE pg.data >= $1 AND pg.data < $2`
	if !scope.All {
		q += " AND d.igreja_id = ANY($3)"
		args = append(args, pq.Array(scope.IgrejaIDs))
	}

	var count int
	var cents int64
	if err := repo.db.QueryRowContext(ctx, q, args...).Scan(&count, &cents); err != nil {
		return 0, core.Money{}, errors.Wrap(err, "summarizing pagamentos")
	}
	return count, core.Money{Cents: cents}, nil
}

func (repo pagamentoRepository) DeletePagamentosByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM pagamento WHERE id = ANY($1)", pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting pagamentos")
	}
	return nil
}
