package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/pagamento"
	"github.com/trezcool/dizimo/core/user"
	testutil "github.com/trezcool/dizimo/tests"
)

func Test_relatorioApi_report(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.AdminRoles, true)
	gestor := testutil.CreateUser(t, usrRepo, "Gestor", "gestor", "gestor@test.cd", "", user.GestorRoles, true)

	igr1 := testutil.CreateIgreja(t, igrRepo, "Central", []string{gestor.ID}, nil)
	igr2 := testutil.CreateIgreja(t, igrRepo, "Bairro", nil, nil)
	diz1 := testutil.CreateDizimista(t, dizRepo, igr1.ID, "Maria", "", core.Money{})
	diz2 := testutil.CreateDizimista(t, dizRepo, igr2.ID, "Jose", "", core.Money{})

	jan := time.Date(2021, time.January, 10, 0, 0, 0, 0, time.UTC)
	testutil.CreatePagamento(t, pagRepo, diz1.ID, "", core.Money{Cents: 5000}, jan)
	testutil.CreatePagamento(t, pagRepo, diz1.ID, "", core.Money{Cents: 7000}, jan.AddDate(0, 0, 10))
	testutil.CreatePagamento(t, pagRepo, diz2.ID, "", core.Money{Cents: 10000}, jan.AddDate(0, 1, 0))

	t.Run("invalid agrupar", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/relatorio?agrupar=lol", getToken(t, admin))
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"agrupar": pagamento.ErrInvalidGranularity.Error()}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("monthly, all churches", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/relatorio?agrupar=mes", getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var report pagamento.Report
		if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if report.Agrupamento != pagamento.Mes {
			t.Errorf("Agrupamento = %v", report.Agrupamento)
		}
		if len(report.Series) != 2 {
			t.Fatalf("Series = %+v, want 2 churches", report.Series)
		}
		// series are sorted by church name
		if report.Series[0].Igreja != "Bairro" || report.Series[1].Igreja != "Central" {
			t.Errorf("Series order = %s, %s", report.Series[0].Igreja, report.Series[1].Igreja)
		}
		central := report.Series[1]
		if len(central.X) != 1 || central.X[0] != "2021-01" || central.Y[0] != 120 {
			t.Errorf("Central series = %+v", central)
		}
		if len(report.Rows) != 3 {
			t.Errorf("Rows = %+v, want 3", report.Rows)
		}
	})

	t.Run("scoped to gestor", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/relatorio?agrupar=ano", getToken(t, gestor))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var report pagamento.Report
		if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(report.Series) != 1 || report.Series[0].Igreja != "Central" {
			t.Fatalf("Series = %+v, want just Central", report.Series)
		}
		if report.Series[0].X[0] != "2021" || report.Series[0].Y[0] != 120 {
			t.Errorf("Central series = %+v", report.Series[0])
		}
	})

	t.Run("default agrupamento is semana", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/relatorio", getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var report pagamento.Report
		if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if report.Agrupamento != pagamento.Semana {
			t.Errorf("Agrupamento = %v, want %v", report.Agrupamento, pagamento.Semana)
		}
	})
}

func Test_relatorioApi_resumo(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.AdminRoles, true)
	gestor := testutil.CreateUser(t, usrRepo, "Gestor", "gestor", "gestor@test.cd", "", user.GestorRoles, true)

	igr1 := testutil.CreateIgreja(t, igrRepo, "Central", []string{gestor.ID}, nil)
	igr2 := testutil.CreateIgreja(t, igrRepo, "Bairro", nil, nil)
	diz1 := testutil.CreateDizimista(t, dizRepo, igr1.ID, "Maria", "", core.Money{})
	diz2 := testutil.CreateDizimista(t, dizRepo, igr2.ID, "Jose", "", core.Money{})

	now := time.Now().UTC()
	testutil.CreatePagamento(t, pagRepo, diz1.ID, "", core.Money{Cents: 5000}, now)
	testutil.CreatePagamento(t, pagRepo, diz2.ID, "", core.Money{Cents: 7000}, now)
	// last month; excluded from the summary
	testutil.CreatePagamento(t, pagRepo, diz1.ID, "", core.Money{Cents: 99900}, now.AddDate(0, -1, 0))

	tests := []struct {
		name  string
		token string
		want  pagamento.Resumo
	}{
		{
			name: "admin", token: getToken(t, admin),
			want: pagamento.Resumo{Mes: now.Format("2006-01"), Quantidade: 2, Total: core.Money{Cents: 12000}, NumDizimistas: 2},
		},
		{
			name: "gestor", token: getToken(t, gestor),
			want: pagamento.Resumo{Mes: now.Format("2006-01"), Quantidade: 1, Total: core.Money{Cents: 5000}, NumDizimistas: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/relatorio/resumo", tt.token)
			app.ServeHTTP(rec, req)
			ht := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, tt.want)}
			checkCodeAndData(t, ht, rec)
		})
	}
}
