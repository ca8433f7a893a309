package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/dizimista"
	"github.com/trezcool/dizimo/core/user"
	testutil "github.com/trezcool/dizimo/tests"
)

func Test_dizimistaApi_create(t *testing.T) {
	resetDB(t)

	gestor := testutil.CreateUser(t, usrRepo, "Gestor", "gestor", "gestor@test.cd", "", user.GestorRoles, true)
	igr1 := testutil.CreateIgreja(t, igrRepo, "Central", []string{gestor.ID}, nil)
	igr2 := testutil.CreateIgreja(t, igrRepo, "Bairro", nil, nil)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "required fields", token: getToken(t, gestor), body: marchallObj(t, dizimista.NewDizimista{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"igreja_id": "this field is required", "nome": "this field is required"}),
		},
		{
			name: "invalid dizimo", token: getToken(t, gestor),
			body:     marchallObj(t, dizimista.NewDizimista{IgrejaID: igr1.ID, Nome: "Maria", Dizimo: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"dizimo": core.ErrInvalidValor.Error()}),
		},
		{
			name: "out-of-scope church", token: getToken(t, gestor),
			body:     marchallObj(t, dizimista.NewDizimista{IgrejaID: igr2.ID, Nome: "Maria"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"igreja_id": "igreja not found"}),
		},
		{
			name: "created", token: getToken(t, gestor),
			body:     marchallObj(t, dizimista.NewDizimista{IgrejaID: igr1.ID, Nome: "Maria", Dizimo: "150,00", Nascimento: "1980-05-12"}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/dizimistas", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
				}
				var respData dizimista.Dizimista
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if respData.ID == "" || respData.Perfil.Nome != "Maria" {
					t.Errorf("failed! data = %+v", respData)
				}
				if respData.Dizimo.Cents != 15000 {
					t.Errorf("failed! Dizimo = %d cents", respData.Dizimo.Cents)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_dizimistaApi_query_scoped(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.AdminRoles, true)
	gestor := testutil.CreateUser(t, usrRepo, "Gestor", "gestor", "gestor@test.cd", "", user.GestorRoles, true)

	igr1 := testutil.CreateIgreja(t, igrRepo, "Central", []string{gestor.ID}, nil)
	igr2 := testutil.CreateIgreja(t, igrRepo, "Bairro", nil, nil)

	// default ordering is nome ASC
	diz1 := testutil.CreateDizimista(t, dizRepo, igr1.ID, "Ana", "", core.Money{})
	diz2 := testutil.CreateDizimista(t, dizRepo, igr2.ID, "Beto", "", core.Money{})
	orphan := testutil.CreateDizimista(t, dizRepo, "", "Caio", "", core.Money{})

	tests := []httpTest{
		{name: "admin sees all", token: getToken(t, admin), path: "/v1/dizimistas", wantData: marchallList(t, diz1, diz2, orphan)},
		{name: "gestor sees own church only", token: getToken(t, gestor), path: "/v1/dizimistas", wantData: marchallList(t, diz1)},
		{name: "filter by igreja", token: getToken(t, admin), path: "/v1/dizimistas?igreja=" + igr2.ID, wantData: marchallList(t, diz2)},
		{name: "search", token: getToken(t, admin), path: "/v1/dizimistas?search=bet", wantData: marchallList(t, diz2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.wantCode = http.StatusOK
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_dizimistaApi_export(t *testing.T) {
	resetDB(t)

	gestor := testutil.CreateUser(t, usrRepo, "Gestor", "gestor", "gestor@test.cd", "", user.GestorRoles, true)
	igr := testutil.CreateIgreja(t, igrRepo, "Central", []string{gestor.ID}, nil)
	testutil.CreateDizimista(t, dizRepo, igr.ID, "Maria", "maria@test.cd", core.Money{Cents: 15000})

	t.Run("csv", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dizimistas/export", getToken(t, gestor))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("Content-Type = %s", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); cd != "attachment; filename=dizimistas.csv" {
			t.Errorf("Content-Disposition = %s", cd)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "Nome,Igreja") {
			t.Errorf("missing CSV header; body %s", body)
		}
		if !strings.Contains(body, "Maria,Central") || !strings.Contains(body, "150.00") {
			t.Errorf("missing CSV row; body %s", body)
		}
	})

	t.Run("pdf", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dizimistas/export?format=pdf", getToken(t, gestor))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
			t.Errorf("Content-Type = %s", ct)
		}
		if !strings.HasPrefix(rec.Body.String(), "%PDF") {
			t.Error("body is not a PDF document")
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dizimistas/export?format=lol", getToken(t, gestor))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "unknown format, want csv or pdf"})}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_dizimistaApi_update_scoped(t *testing.T) {
	resetDB(t)

	gestor := testutil.CreateUser(t, usrRepo, "Gestor", "gestor", "gestor@test.cd", "", user.GestorRoles, true)
	igr1 := testutil.CreateIgreja(t, igrRepo, "Central", []string{gestor.ID}, nil)
	igr2 := testutil.CreateIgreja(t, igrRepo, "Bairro", nil, nil)
	diz := testutil.CreateDizimista(t, dizRepo, igr1.ID, "Maria", "", core.Money{})

	t.Run("cannot move to out-of-scope church", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/dizimistas/"+diz.ID, getToken(t, gestor),
			marchallObj(t, dizimista.UpdateDizimista{IgrejaID: &igr2.ID}))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"igreja_id": "igreja not found"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("update fields", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/dizimistas/"+diz.ID, getToken(t, gestor),
			marchallObj(t, dizimista.UpdateDizimista{Nome: "Maria Souza", Dizimo: "200"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var respData dizimista.Dizimista
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if respData.Perfil.Nome != "Maria Souza" || respData.Dizimo.Cents != 20000 {
			t.Errorf("failed! data = %+v", respData)
		}
	})
}

func Test_dizimistaApi_destroy(t *testing.T) {
	resetDB(t)

	gestor := testutil.CreateUser(t, usrRepo, "Gestor", "gestor", "gestor@test.cd", "", user.GestorRoles, true)
	igr := testutil.CreateIgreja(t, igrRepo, "Central", []string{gestor.ID}, nil)
	diz := testutil.CreateDizimista(t, dizRepo, igr.ID, "Maria", "", core.Money{})
	pag := testutil.CreatePagamento(t, pagRepo, diz.ID, "", core.Money{Cents: 5000}, time.Now().UTC())

	req, rec := newAuthRequest(http.MethodDelete, "/v1/dizimistas/"+diz.ID, getToken(t, gestor))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	// the payment history survives, detached
	refreshed, err := pagRepo.GetPagamentoByID(req.Context(), pag.ID)
	if err != nil {
		t.Fatalf("GetPagamentoByID() failed: %v", err)
	}
	if refreshed.DizimistaID.Valid {
		t.Errorf("failed! DizimistaID = %v, want detached", refreshed.DizimistaID)
	}
}
