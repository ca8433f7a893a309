package pagamento

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/dizimista"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a Service whose mail side effects run synchronously,
// for deterministic tests.
func NewServiceMock(repo Repository, dizSvc dizimista.Service, mailSvc core.EmailService) Service {
	return &serviceMock{
		service: service{
			repo:    repo,
			dizSvc:  dizSvc,
			mailSvc: mailSvc,
		},
	}
}

func (svc *serviceMock) Create(ctx context.Context, scope core.Scope, np NewPagamento, registradoPor string) (Pagamento, error) {
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
		// run synchronously
		svc.sendReceivedMail(diz, pag)
	}
	return pag, nil
}
