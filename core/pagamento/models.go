package pagamento

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dizimo/core"
)

// Pagamento is a recorded tithe payment. Its church is derived transitively
// through the dizimista; both links survive as NULL when the other side is
// deleted so the payment history stays intact.
type Pagamento struct {
	ID          string      `json:"id"`
	DizimistaID null.String `json:"dizimista_id"`
	Data        time.Time   `json:"data"`
	Valor       core.Money  `json:"valor"`
	// RegistradoPorID is the staff user who recorded the payment.
	RegistradoPorID null.String `json:"registrado_por_id"`

	// denormalized for lists, exports and reporting
	DizimistaNome string      `json:"dizimista_nome,omitempty"`
	IgrejaID      null.String `json:"igreja_id"`
	IgrejaNome    string      `json:"igreja_nome,omitempty"`
	RegistradoPor string      `json:"registrado_por,omitempty"`
}

// NewPagamento contains information needed to record a new Pagamento.
// Data defaults to the current time when omitted.
type NewPagamento struct {
	DizimistaID string `json:"dizimista_id" validate:"required"`
	Valor       string `json:"valor" validate:"required"`
	Data        string `json:"data"`

	// parsed during Validate
	valor core.Money
	data  time.Time
}

func (np *NewPagamento) Validate(ctx context.Context) error {
	if err := core.Validate.Struct(np); err != nil {
		return err
	}

	valor, err := core.ParseValor(np.Valor)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "valor", Error: err.Error()})
	}
	np.valor = valor

	if np.Data != "" {
		t, err := time.Parse(time.RFC3339, np.Data)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "data", Error: "invalid timestamp, want RFC3339"})
		}
		np.data = t
	}
	return nil
}

type QueryFilter struct {
	IgrejaID        string    `query:"igreja"`
	Mes             string    `query:"mes"` // "2006-01"
	RegistradoPorID string    `query:"registrado_por"`
	From            time.Time `query:"from"`
	To              time.Time `query:"to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.IgrejaID == "" && qf.Mes == "" && qf.RegistradoPorID == "" && qf.From.IsZero() && qf.To.IsZero()
}

// MesRange resolves the Mes filter into a [start, end) interval.
func (qf *QueryFilter) MesRange() (start, end time.Time, ok bool) {
	if qf.Mes == "" {
		return time.Time{}, time.Time{}, false
	}
	t, err := time.Parse("2006-01", qf.Mes)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return t, t.AddDate(0, 1, 0), true
}
