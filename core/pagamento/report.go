package pagamento

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/dizimo/core"
)

// Granularity is the time bucket used to group payments in the report.
type Granularity string

const (
	Dia    Granularity = "dia"
	Semana Granularity = "semana"
	Mes    Granularity = "mes"
	Ano    Granularity = "ano"
)

var ErrInvalidGranularity = errors.New("invalid granularity, want one of: dia, semana, mes, ano")

// ParseGranularity parses the `agrupar` query value; empty defaults to Semana.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case "":
		return Semana, nil
	case Dia, Semana, Mes, Ano:
		return Granularity(s), nil
	}
	return "", ErrInvalidGranularity
}

// Truncate returns the start of the bucket containing t.
// Semana buckets start on Monday (ISO week).
func (g Granularity) Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	switch g {
	case Semana:
		daysPastMonday := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-daysPastMonday, 0, 0, 0, 0, t.Location())
	case Mes:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	case Ano:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, t.Location())
	default: // Dia
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	}
}

// Label formats a bucket start for display: dia/semana "2006-01-02",
// mes "2006-01", ano "2006".
func (g Granularity) Label(bucket time.Time) string {
	switch g {
	case Mes:
		return bucket.Format("2006-01")
	case Ano:
		return bucket.Format("2006")
	default:
		return bucket.Format("2006-01-02")
	}
}

func (g Granularity) Title() string {
	switch g {
	case Dia:
		return "Dia"
	case Mes:
		return "Mês"
	case Ano:
		return "Ano"
	default:
		return "Semana"
	}
}

// TickFormat is the strftime-style axis format the chart component expects.
func (g Granularity) TickFormat() string {
	switch g {
	case Mes:
		return "%Y-%m"
	case Ano:
		return "%Y"
	default:
		return "%Y-%m-%d"
	}
}

type (
	// Series is the per-church data of the bar chart: parallel bucket labels
	// (X) and summed amounts in reais (Y), in ascending bucket order. Buckets
	// where the church received nothing are absent, not zero-filled.
	Series struct {
		Igreja string    `json:"igreja"`
		X      []string  `json:"x"`
		Y      []float64 `json:"y"`
	}

	// ReportRow backs the data table below the chart.
	ReportRow struct {
		Igreja     string     `json:"igreja"`
		Periodo    string     `json:"periodo"`
		Quantidade int        `json:"quantidade"`
		Total      core.Money `json:"total"`
	}

	Axis struct {
		Title      string `json:"title"`
		TickFormat string `json:"tickformat,omitempty"`
	}

	Report struct {
		Agrupamento Granularity `json:"agrupamento"`
		Series      []Series    `json:"series"`
		Rows        []ReportRow `json:"rows"`
		XAxis       Axis        `json:"xaxis"`
		YAxis       Axis        `json:"yaxis"`
	}
)

// semIgreja groups payments whose church link was severed (dizimista or
// church deleted).
const semIgreja = "Sem igreja"

type reportGroup struct {
	count int
	total int64 // centavos
}

// BuildReport groups the given payments by (bucket, church), computing count
// and summed amount per group, and reshapes the result into chart series and
// table rows. It is a pure transformation: same input, same output; an empty
// input yields empty (non-nil) series and rows.
func BuildReport(pagamentos []Pagamento, g Granularity) Report {
	report := Report{
		Agrupamento: g,
		Series:      []Series{},
		Rows:        []ReportRow{},
		XAxis:       Axis{Title: g.Title(), TickFormat: g.TickFormat()},
		YAxis:       Axis{Title: "Total Recebido (R$)"},
	}
	if len(pagamentos) == 0 {
		return report
	}

	// buckets are keyed by their display label; for every granularity the
	// label sorts lexicographically in chronological order
	groups := make(map[string]map[string]*reportGroup)
	igrejaSet := make(map[string]struct{})
	for _, p := range pagamentos {
		label := g.Label(g.Truncate(p.Data))
		nome := p.IgrejaNome
		if nome == "" {
			nome = semIgreja
		}
		byIgreja, ok := groups[label]
		if !ok {
			byIgreja = make(map[string]*reportGroup)
			groups[label] = byIgreja
		}
		grp, ok := byIgreja[nome]
		if !ok {
			grp = &reportGroup{}
			byIgreja[nome] = grp
		}
		grp.count++
		grp.total += p.Valor.Cents
		igrejaSet[nome] = struct{}{}
	}

	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	igrejas := make([]string, 0, len(igrejaSet))
	for nome := range igrejaSet {
		igrejas = append(igrejas, nome)
	}
	sort.Strings(igrejas)

	for _, label := range labels {
		for _, nome := range igrejas {
			grp, ok := groups[label][nome]
			if !ok {
				continue
			}
			report.Rows = append(report.Rows, ReportRow{
				Igreja:     nome,
				Periodo:    label,
				Quantidade: grp.count,
				Total:      core.Money{Cents: grp.total},
			})
		}
	}

	for _, nome := range igrejas {
		series := Series{Igreja: nome}
		for _, label := range labels {
			if grp, ok := groups[label][nome]; ok {
				series.X = append(series.X, label)
				series.Y = append(series.Y, core.Money{Cents: grp.total}.Reais())
			}
		}
		report.Series = append(report.Series, series)
	}
	return report
}
