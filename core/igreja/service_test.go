package igreja_test

import (
	"context"
	"testing"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/igreja"
	"github.com/trezcool/dizimo/core/user"
	inmemdb "github.com/trezcool/dizimo/storage/database/inmem"
	testutil "github.com/trezcool/dizimo/tests"
)

func setup(t *testing.T) (igreja.Service, igreja.Repository) {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	repo := inmemdb.NewIgrejaRepository(db)
	return igreja.NewService(repo), repo
}

func TestService_ScopeFor(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	admin := user.User{ID: "u-admin", Roles: []string{user.RoleAdmin}}
	gestor := user.User{ID: "u-gestor", Roles: []string{user.RoleGestor}}
	agente := user.User{ID: "u-agente", Roles: []string{user.RoleAgente}}
	outsider := user.User{ID: "u-outsider", Roles: []string{user.RoleGestor}}

	igr1 := testutil.CreateIgreja(t, repo, "Central", []string{gestor.ID}, []string{agente.ID})
	igr2 := testutil.CreateIgreja(t, repo, "Bairro", []string{gestor.ID}, nil)
	testutil.CreateIgreja(t, repo, "Outra", nil, nil)

	t.Run("admin gets unrestricted scope", func(t *testing.T) {
		scope, err := svc.ScopeFor(ctx, admin)
		if err != nil {
			t.Fatalf("ScopeFor() failed: %v", err)
		}
		if !scope.All {
			t.Error("expected an unrestricted scope")
		}
	})

	t.Run("gestor sees own churches", func(t *testing.T) {
		scope, err := svc.ScopeFor(ctx, gestor)
		if err != nil {
			t.Fatalf("ScopeFor() failed: %v", err)
		}
		if scope.All {
			t.Error("expected a restricted scope")
		}
		if !scope.Contains(igr1.ID) || !scope.Contains(igr2.ID) {
			t.Errorf("scope %v missing gestor's churches", scope.IgrejaIDs)
		}
		if len(scope.IgrejaIDs) != 2 {
			t.Errorf("scope has %d churches, want 2", len(scope.IgrejaIDs))
		}
	})

	t.Run("agente sees own church", func(t *testing.T) {
		scope, err := svc.ScopeFor(ctx, agente)
		if err != nil {
			t.Fatalf("ScopeFor() failed: %v", err)
		}
		if !scope.Contains(igr1.ID) || scope.Contains(igr2.ID) {
			t.Errorf("scope = %v, want just %s", scope.IgrejaIDs, igr1.ID)
		}
	})

	t.Run("outsider gets empty scope", func(t *testing.T) {
		scope, err := svc.ScopeFor(ctx, outsider)
		if err != nil {
			t.Fatalf("ScopeFor() failed: %v", err)
		}
		if !scope.IsEmpty() {
			t.Errorf("scope = %v, want empty", scope.IgrejaIDs)
		}
	})
}

func TestService_GetByID_scoped(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	igr1 := testutil.CreateIgreja(t, repo, "Central", nil, nil)
	igr2 := testutil.CreateIgreja(t, repo, "Bairro", nil, nil)

	if _, err := svc.GetByID(ctx, core.UnrestrictedScope(), igr1.ID); err != nil {
		t.Errorf("GetByID() with unrestricted scope failed: %v", err)
	}
	if _, err := svc.GetByID(ctx, core.ScopeOf(igr1.ID), igr1.ID); err != nil {
		t.Errorf("GetByID() with matching scope failed: %v", err)
	}

	// out-of-scope records look missing
	if _, err := svc.GetByID(ctx, core.ScopeOf(igr1.ID), igr2.ID); err != igreja.ErrNotFound {
		t.Errorf("GetByID() out of scope error = %v, want %v", err, igreja.ErrNotFound)
	}
	if _, err := svc.GetByID(ctx, core.ScopeOf(), igr1.ID); err != igreja.ErrNotFound {
		t.Errorf("GetByID() with empty scope error = %v, want %v", err, igreja.ErrNotFound)
	}
}

func TestService_Query_scoped(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	igr1 := testutil.CreateIgreja(t, repo, "Central", nil, nil)
	testutil.CreateIgreja(t, repo, "Bairro", nil, nil)

	all, err := svc.Query(ctx, core.UnrestrictedScope(), nil, nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Query() returned %d churches, want 2", len(all))
	}

	scoped, err := svc.Query(ctx, core.ScopeOf(igr1.ID), nil, nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(scoped) != 1 || scoped[0].ID != igr1.ID {
		t.Errorf("Query() scoped = %+v, want just %s", scoped, igr1.ID)
	}

	empty, err := svc.Query(ctx, core.ScopeOf(), nil, nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Query() with empty scope returned %d churches, want 0", len(empty))
	}
}

func TestService_CheckUniqueness(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	igr := testutil.CreateIgreja(t, repo, "Central", nil, nil)

	if err := svc.CheckUniqueness(ctx, "Nova"); err != nil {
		t.Errorf("CheckUniqueness() failed: %v", err)
	}
	if err := svc.CheckUniqueness(ctx, "Central"); err == nil {
		t.Error("CheckUniqueness() expected an error for a duplicate name")
	}
	// the church itself is excluded on update
	if err := svc.CheckUniqueness(ctx, "Central", igr); err != nil {
		t.Errorf("CheckUniqueness() with exclusion failed: %v", err)
	}
}
