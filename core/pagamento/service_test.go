package pagamento_test

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/dizimista"
	"github.com/trezcool/dizimo/core/igreja"
	"github.com/trezcool/dizimo/core/pagamento"
	emailsvc "github.com/trezcool/dizimo/services/email"
	inmemdb "github.com/trezcool/dizimo/storage/database/inmem"
	testutil "github.com/trezcool/dizimo/tests"
)

type fixture struct {
	svc     pagamento.Service
	pagRepo pagamento.Repository
	dizRepo dizimista.Repository
	igrRepo igreja.Repository
}

func setup(t *testing.T) fixture {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	pagRepo := inmemdb.NewPagamentoRepository(db)
	dizRepo := inmemdb.NewDizimistaRepository(db)
	dizSvc := dizimista.NewService(dizRepo)
	mailSvc := emailsvc.NewConsoleServiceMock()
	return fixture{
		svc:     pagamento.NewServiceMock(pagRepo, dizSvc, mailSvc),
		pagRepo: pagRepo,
		dizRepo: dizRepo,
		igrRepo: inmemdb.NewIgrejaRepository(db),
	}
}

func newPagamento(t *testing.T, dizID, valor, data string) pagamento.NewPagamento {
	t.Helper()
	np := pagamento.NewPagamento{DizimistaID: dizID, Valor: valor, Data: data}
	if err := np.Validate(context.Background()); err != nil {
		t.Fatalf("NewPagamento.Validate() failed: %v", err)
	}
	return np
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	igr := testutil.CreateIgreja(t, f.igrRepo, "Central", nil, nil)
	diz := testutil.CreateDizimista(t, f.dizRepo, igr.ID, "Maria", "maria@test.cd", core.Money{Cents: 5000})
	agente := "u-agente"

	emailsvc.SentMessages = emailsvc.SentMessages[:0]

	pag, err := f.svc.Create(ctx, core.ScopeOf(igr.ID), newPagamento(t, diz.ID, "70,00", ""), agente)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if pag.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if pag.Valor.Cents != 7000 {
		t.Errorf("Create() Valor = %d cents, want 7000", pag.Valor.Cents)
	}
	if pag.Data.IsZero() {
		t.Error("Create() did not default Data")
	}
	if !pag.DizimistaID.Valid || pag.DizimistaID.String != diz.ID {
		t.Errorf("Create() DizimistaID = %v, want %s", pag.DizimistaID, diz.ID)
	}
	if !pag.RegistradoPorID.Valid || pag.RegistradoPorID.String != agente {
		t.Errorf("Create() RegistradoPorID = %v, want %s", pag.RegistradoPorID, agente)
	}

	// the dizimista has an email on file; a notification goes out
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("expected 1 sent email, got %d", len(emailsvc.SentMessages))
	}
	msg := emailsvc.SentMessages[0]
	if msg.Subject != "Pagamento recebido" {
		t.Errorf("email Subject = %s", msg.Subject)
	}
	if len(msg.To) != 1 || msg.To[0].Address != "maria@test.cd" {
		t.Errorf("email To = %v", msg.To)
	}
}

func TestService_Create_noEmailOnFile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	igr := testutil.CreateIgreja(t, f.igrRepo, "Central", nil, nil)
	diz := testutil.CreateDizimista(t, f.dizRepo, igr.ID, "Pedro", "", core.Money{})

	emailsvc.SentMessages = emailsvc.SentMessages[:0]

	if _, err := f.svc.Create(ctx, core.UnrestrictedScope(), newPagamento(t, diz.ID, "50", ""), ""); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if len(emailsvc.SentMessages) != 0 {
		t.Errorf("expected no sent emails, got %d", len(emailsvc.SentMessages))
	}
}

// failingEmailService stands in for a backend whose sends error out; per the
// EmailService contract it logs and swallows the failure.
type failingEmailService struct{}

func (failingEmailService) SendMessages(...*core.EmailMessage) {}

func TestService_Create_notificationFailureIsolated(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	igr := testutil.CreateIgreja(t, f.igrRepo, "Central", nil, nil)
	diz := testutil.CreateDizimista(t, f.dizRepo, igr.ID, "Maria", "maria@test.cd", core.Money{})

	dizSvc := dizimista.NewService(f.dizRepo)
	svc := pagamento.NewServiceMock(f.pagRepo, dizSvc, failingEmailService{})

	pag, err := svc.Create(ctx, core.UnrestrictedScope(), newPagamento(t, diz.ID, "50", ""), "")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	// the payment persisted despite the failed notification
	if _, err = svc.GetByID(ctx, core.UnrestrictedScope(), pag.ID); err != nil {
		t.Errorf("GetByID() failed: %v", err)
	}
}

func TestService_Create_outOfScope(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	igr1 := testutil.CreateIgreja(t, f.igrRepo, "Central", nil, nil)
	igr2 := testutil.CreateIgreja(t, f.igrRepo, "Bairro", nil, nil)
	diz := testutil.CreateDizimista(t, f.dizRepo, igr1.ID, "Maria", "", core.Money{})

	_, err := f.svc.Create(ctx, core.ScopeOf(igr2.ID), newPagamento(t, diz.ID, "50", ""), "")
	if err != dizimista.ErrNotFound {
		t.Errorf("Create() out of scope error = %v, want %v", err, dizimista.ErrNotFound)
	}
}

func TestService_GetByID_scoped(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	igr := testutil.CreateIgreja(t, f.igrRepo, "Central", nil, nil)
	diz := testutil.CreateDizimista(t, f.dizRepo, igr.ID, "Maria", "", core.Money{})
	orphan := testutil.CreateDizimista(t, f.dizRepo, "", "Jose", "", core.Money{})

	pag := testutil.CreatePagamento(t, f.pagRepo, diz.ID, "", core.Money{Cents: 5000}, time.Now())
	orphanPag := testutil.CreatePagamento(t, f.pagRepo, orphan.ID, "", core.Money{Cents: 1000}, time.Now())

	if _, err := f.svc.GetByID(ctx, core.ScopeOf(igr.ID), pag.ID); err != nil {
		t.Errorf("GetByID() failed: %v", err)
	}
	if _, err := f.svc.GetByID(ctx, core.ScopeOf("other"), pag.ID); err != pagamento.ErrNotFound {
		t.Errorf("GetByID() out of scope error = %v, want %v", err, pagamento.ErrNotFound)
	}

	// a payment with a severed church link is only visible to superusers
	if _, err := f.svc.GetByID(ctx, core.UnrestrictedScope(), orphanPag.ID); err != nil {
		t.Errorf("GetByID() as superuser failed: %v", err)
	}
	if _, err := f.svc.GetByID(ctx, core.ScopeOf(igr.ID), orphanPag.ID); err != pagamento.ErrNotFound {
		t.Errorf("GetByID() severed link error = %v, want %v", err, pagamento.ErrNotFound)
	}
}

func TestService_Resumo(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	igr := testutil.CreateIgreja(t, f.igrRepo, "Central", nil, nil)
	other := testutil.CreateIgreja(t, f.igrRepo, "Bairro", nil, nil)
	diz := testutil.CreateDizimista(t, f.dizRepo, igr.ID, "Maria", "", core.Money{})
	otherDiz := testutil.CreateDizimista(t, f.dizRepo, other.ID, "Jose", "", core.Money{})

	now := time.Now().UTC()
	testutil.CreatePagamento(t, f.pagRepo, diz.ID, "", core.Money{Cents: 5000}, now)
	testutil.CreatePagamento(t, f.pagRepo, diz.ID, "", core.Money{Cents: 7000}, now)
	testutil.CreatePagamento(t, f.pagRepo, otherDiz.ID, "", core.Money{Cents: 10000}, now)
	// last month; excluded
	testutil.CreatePagamento(t, f.pagRepo, diz.ID, "", core.Money{Cents: 99900}, now.AddDate(0, -1, 0))

	res, err := f.svc.Resumo(ctx, core.ScopeOf(igr.ID))
	if err != nil {
		t.Fatalf("Resumo() failed: %v", err)
	}
	if want := now.Format("2006-01"); res.Mes != want {
		t.Errorf("Resumo() Mes = %s, want %s", res.Mes, want)
	}
	if res.Quantidade != 2 {
		t.Errorf("Resumo() Quantidade = %d, want 2", res.Quantidade)
	}
	if res.Total.Cents != 12000 {
		t.Errorf("Resumo() Total = %d cents, want 12000", res.Total.Cents)
	}
	if res.NumDizimistas != 1 {
		t.Errorf("Resumo() NumDizimistas = %d, want 1", res.NumDizimistas)
	}

	all, err := f.svc.Resumo(ctx, core.UnrestrictedScope())
	if err != nil {
		t.Fatalf("Resumo() failed: %v", err)
	}
	if all.Quantidade != 3 || all.Total.Cents != 22000 || all.NumDizimistas != 2 {
		t.Errorf("Resumo() unrestricted = %+v", all)
	}

	empty, err := f.svc.Resumo(ctx, core.ScopeOf())
	if err != nil {
		t.Fatalf("Resumo() failed: %v", err)
	}
	if empty.Quantidade != 0 || empty.Total.Cents != 0 || empty.NumDizimistas != 0 {
		t.Errorf("Resumo() empty scope = %+v", empty)
	}
}

func TestService_Report(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	igr := testutil.CreateIgreja(t, f.igrRepo, "Central", nil, nil)
	diz := testutil.CreateDizimista(t, f.dizRepo, igr.ID, "Maria", "", core.Money{})

	jan := time.Date(2021, time.January, 10, 0, 0, 0, 0, time.UTC)
	testutil.CreatePagamento(t, f.pagRepo, diz.ID, "", core.Money{Cents: 5000}, jan)
	testutil.CreatePagamento(t, f.pagRepo, diz.ID, "", core.Money{Cents: 7000}, jan.AddDate(0, 0, 15))

	report, err := f.svc.Report(ctx, core.UnrestrictedScope(), pagamento.Mes)
	if err != nil {
		t.Fatalf("Report() failed: %v", err)
	}
	if len(report.Series) != 1 || report.Series[0].Igreja != "Central" {
		t.Fatalf("Report() Series = %+v", report.Series)
	}
	if len(report.Series[0].X) != 1 || report.Series[0].X[0] != "2021-01" || report.Series[0].Y[0] != 120 {
		t.Errorf("Report() Series[0] = %+v", report.Series[0])
	}

	// nothing visible in an empty scope
	empty, err := f.svc.Report(ctx, core.ScopeOf(), pagamento.Mes)
	if err != nil {
		t.Fatalf("Report() failed: %v", err)
	}
	if len(empty.Series) != 0 || len(empty.Rows) != 0 {
		t.Errorf("Report() empty scope = %+v", empty)
	}
}
