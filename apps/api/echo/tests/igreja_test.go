package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/igreja"
	"github.com/trezcool/dizimo/core/user"
	testutil "github.com/trezcool/dizimo/tests"
)

func Test_igrejaApi_create(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.AdminRoles, true)
	gestor := testutil.CreateUser(t, usrRepo, "Gestor", "gestor", "gestor@test.cd", "", user.GestorRoles, true)
	testutil.CreateIgreja(t, igrRepo, "Central", nil, nil)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, gestor), body: marchallObj(t, igreja.NewIgreja{Nome: "Nova"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "nome required", token: getToken(t, admin), body: marchallObj(t, igreja.NewIgreja{}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"nome": "this field is required"}),
		},
		{
			name: "duplicate nome", token: getToken(t, admin), body: marchallObj(t, igreja.NewIgreja{Nome: "Central"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"nome": igreja.ErrNomeExists.Error()}),
		},
		{name: "created", token: getToken(t, admin), body: marchallObj(t, igreja.NewIgreja{Nome: "Nova", GestorIDs: []string{gestor.ID}}), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/igrejas", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
				}
				var respData igreja.Igreja
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if respData.ID == "" || respData.Nome != "Nova" {
					t.Errorf("failed! data = %+v", respData)
				}
				if len(respData.GestorIDs) != 1 || respData.GestorIDs[0] != gestor.ID {
					t.Errorf("failed! GestorIDs = %v", respData.GestorIDs)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_igrejaApi_query_scoped(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.AdminRoles, true)
	gestor := testutil.CreateUser(t, usrRepo, "Gestor", "gestor", "gestor@test.cd", "", user.GestorRoles, true)
	outsider := testutil.CreateUser(t, usrRepo, "Out", "outro1", "outro@test.cd", "", user.GestorRoles, true)

	// default ordering is nome ASC
	igr2 := testutil.CreateIgreja(t, igrRepo, "Bairro", nil, nil)
	igr1 := testutil.CreateIgreja(t, igrRepo, "Central", []string{gestor.ID}, nil)

	tests := []httpTest{
		{name: "admin sees all", token: getToken(t, admin), wantData: marchallList(t, igr2, igr1)},
		{name: "gestor sees own churches", token: getToken(t, gestor), wantData: marchallList(t, igr1)},
		{name: "outsider sees nothing", token: getToken(t, outsider), wantData: marchallList(t, []interface{}{}...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.wantCode = http.StatusOK
			req, rec := newAuthRequest(http.MethodGet, "/v1/igrejas", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_igrejaApi_retrieve_scoped(t *testing.T) {
	resetDB(t)

	gestor := testutil.CreateUser(t, usrRepo, "Gestor", "gestor", "gestor@test.cd", "", user.GestorRoles, true)

	igr1 := testutil.CreateIgreja(t, igrRepo, "Central", []string{gestor.ID}, nil)
	igr2 := testutil.CreateIgreja(t, igrRepo, "Bairro", nil, nil)

	tests := []httpTest{
		{name: "own church", path: "/v1/igrejas/" + igr1.ID, token: getToken(t, gestor), wantCode: http.StatusOK, wantData: marchallObj(t, igr1)},
		{
			name: "out-of-scope church is hidden", path: "/v1/igrejas/" + igr2.ID, token: getToken(t, gestor),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_igrejaApi_update(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.AdminRoles, true)
	gestor := testutil.CreateUser(t, usrRepo, "Gestor", "gestor", "gestor@test.cd", "", user.GestorRoles, true)
	igr := testutil.CreateIgreja(t, igrRepo, "Central", nil, nil)

	t.Run("Admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/igrejas/"+igr.ID, getToken(t, gestor),
			marchallObj(t, igreja.UpdateIgreja{Nome: "Catedral"}))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("membership updated", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/igrejas/"+igr.ID, getToken(t, admin),
			marchallObj(t, igreja.UpdateIgreja{GestorIDs: []string{gestor.ID}}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var respData igreja.Igreja
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if respData.Nome != "Central" {
			t.Errorf("failed! Nome = %s, want untouched", respData.Nome)
		}
		if len(respData.GestorIDs) != 1 || respData.GestorIDs[0] != gestor.ID {
			t.Errorf("failed! GestorIDs = %v", respData.GestorIDs)
		}

		// the new gestor now sees the church
		scope, err := igreja.NewService(igrRepo).ScopeFor(req.Context(), gestor)
		if err != nil {
			t.Fatalf("ScopeFor() failed: %v", err)
		}
		if !scope.Contains(igr.ID) {
			t.Error("failed! gestor still out of scope")
		}
	})
}

func Test_igrejaApi_destroy(t *testing.T) {
	resetDB(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.AdminRoles, true)
	igr := testutil.CreateIgreja(t, igrRepo, "Central", nil, nil)
	diz := testutil.CreateDizimista(t, dizRepo, igr.ID, "Maria", "", core.Money{})

	req, rec := newAuthRequest(http.MethodDelete, "/v1/igrejas/"+igr.ID, getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	// the dizimista survives, detached
	refreshed, err := dizRepo.GetDizimistaByID(req.Context(), diz.ID)
	if err != nil {
		t.Fatalf("GetDizimistaByID() failed: %v", err)
	}
	if refreshed.IgrejaID.Valid {
		t.Errorf("failed! IgrejaID = %v, want detached", refreshed.IgrejaID)
	}
}
