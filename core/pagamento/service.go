package pagamento

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/dizimista"
)

var ErrNotFound = errors.New("pagamento not found")

type (
	Repository interface {
		CreatePagamento(ctx context.Context, pag Pagamento) (Pagamento, error)
		GetPagamentoByID(ctx context.Context, id string) (Pagamento, error)
		// QueryPagamentos applies AND operation on available QueryFilter
		// fields, restricted to the given scope. Default ordering is
		// Data descending.
		QueryPagamentos(ctx context.Context, scope core.Scope, filter *QueryFilter, ordering []core.DBOrdering) ([]Pagamento, error)
		// SummarizePagamentos returns the count and summed amount of payments
		// within [from, to), restricted to the given scope.
		SummarizePagamentos(ctx context.Context, scope core.Scope, from, to time.Time) (count int, total core.Money, err error)
		DeletePagamentosByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		// Create records a payment for a dizimista visible in the given scope
		// and notifies the dizimista by email when one is on file.
		Create(ctx context.Context, scope core.Scope, np NewPagamento, registradoPor string) (Pagamento, error)
		GetByID(ctx context.Context, scope core.Scope, id string) (Pagamento, error)
		Query(ctx context.Context, scope core.Scope, filter *QueryFilter, ordering []core.DBOrdering) ([]Pagamento, error)
		Delete(ctx context.Context, ids ...string) error
		// Resumo computes the month-to-date dashboard summary.
		Resumo(ctx context.Context, scope core.Scope) (Resumo, error)
		// Report aggregates all visible payments into the bar-chart report.
		Report(ctx context.Context, scope core.Scope, g Granularity) (Report, error)
	}

	service struct {
		repo    Repository
		dizSvc  dizimista.Service
		mailSvc core.EmailService
	}
)

// Resumo is the dashboard header: current-month totals and the number of
// registered dizimistas, within the caller's scope.
type Resumo struct {
	Mes           string     `json:"mes"` // "2006-01"
	Quantidade    int        `json:"quantidade"`
	Total         core.Money `json:"total"`
	NumDizimistas int        `json:"num_dizimistas"`
}

var _ Service = (*service)(nil)

func NewService(repo Repository, dizSvc dizimista.Service, mailSvc core.EmailService) Service {
	return &service{
		repo:    repo,
		dizSvc:  dizSvc,
		mailSvc: mailSvc,
	}
}

func (svc *service) Create(ctx context.Context, scope core.Scope, np NewPagamento, registradoPor string) (Pagamento, error) {
	// the dizimista lookup doubles as the scope check
	diz, err := svc.dizSvc.GetByID(ctx, scope, np.DizimistaID)
	if err != nil {
		return Pagamento{}, err
	}

	data := np.data
	if data.IsZero() {
		data = time.Now().UTC()
	}
	pag := Pagamento{
		DizimistaID:     null.StringFrom(diz.ID),
		Data:            data,
		Valor:           np.valor,
		RegistradoPorID: null.NewString(registradoPor, registradoPor != ""),
	}
	pag, err = svc.repo.CreatePagamento(ctx, pag)
	if err != nil {
		return Pagamento{}, err
	}

	if diz.Perfil.Email.Valid {
		go svc.sendReceivedMail(diz, pag)
	}
	return pag, nil
}

// sendReceivedMail notifies the dizimista that their payment was recorded.
// Best effort: failures are logged by the email backend, never surfaced.
func (svc *service) sendReceivedMail(diz dizimista.Dizimista, pag Pagamento) {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: diz.Perfil.Nome, Address: diz.Perfil.Email.String}},
		Subject:      "Pagamento recebido",
		TemplateName: "pagamento-recebido",
		TemplateData: struct {
			Nome   string
			Valor  string
			Data   string
			Igreja string
		}{diz.Perfil.Nome, pag.Valor.String(), pag.Data.Format("02/01/2006"), diz.IgrejaNome},
	}
	svc.mailSvc.SendMessages(msg)
}

func (svc *service) GetByID(ctx context.Context, scope core.Scope, id string) (Pagamento, error) {
	pag, err := svc.repo.GetPagamentoByID(ctx, id)
	if err != nil {
		return Pagamento{}, err
	}
	// a payment whose church link was severed is only visible to superusers
	if !scope.Contains(pag.IgrejaID.String) {
		return Pagamento{}, ErrNotFound
	}
	return pag, nil
}

func (svc *service) Query(ctx context.Context, scope core.Scope, filter *QueryFilter, ordering []core.DBOrdering) ([]Pagamento, error) {
	if scope.IsEmpty() {
		return []Pagamento{}, nil
	}
	return svc.repo.QueryPagamentos(ctx, scope, filter, ordering)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeletePagamentosByID(ctx, ids...)
}

func (svc *service) Resumo(ctx context.Context, scope core.Scope) (Resumo, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	res := Resumo{Mes: start.Format("2006-01")}
	if scope.IsEmpty() {
		return res, nil
	}

	count, total, err := svc.repo.SummarizePagamentos(ctx, scope, start, start.AddDate(0, 1, 0))
	if err != nil {
		return Resumo{}, err
	}
	res.Quantidade = count
	res.Total = total

	numDiz, err := svc.dizSvc.Count(ctx, scope)
	if err != nil {
		return Resumo{}, err
	}
	res.NumDizimistas = numDiz
	return res, nil
}

func (svc *service) Report(ctx context.Context, scope core.Scope, g Granularity) (Report, error) {
	pags, err := svc.Query(ctx, scope, nil, []core.DBOrdering{{Field: "data"}})
	if err != nil {
		return Report{}, err
	}
	return BuildReport(pags, g), nil
}
