package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/dizimista"
	"github.com/trezcool/dizimo/core/igreja"
	"github.com/trezcool/dizimo/core/pagamento"
	"github.com/trezcool/dizimo/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateIgreja(
	t *testing.T,
	repo igreja.Repository,
	nome string,
	gestorIDs, agenteIDs []string,
) igreja.Igreja {
	t.Helper()

	now := time.Now().UTC()
	igr, err := repo.CreateIgreja(context.Background(), igreja.Igreja{
		Nome:      nome,
		GestorIDs: gestorIDs,
		AgenteIDs: agenteIDs,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateIgreja() failed: %v", err)
	}
	return igr
}

func CreateDizimista(
	t *testing.T,
	repo dizimista.Repository,
	igrejaID, nome, email string,
	dizimo core.Money,
) dizimista.Dizimista {
	t.Helper()

	now := time.Now().UTC()
	diz := dizimista.Dizimista{
		Dizimo: dizimo,
		Perfil: dizimista.Perfil{
			Nome:   nome,
			Genero: dizimista.GeneroFeminino,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if igrejaID != "" {
		diz.IgrejaID = null.StringFrom(igrejaID)
	}
	if email != "" {
		diz.Perfil.Email = null.StringFrom(email)
	}
	diz, err := repo.CreateDizimista(context.Background(), diz)
	if err != nil {
		t.Fatalf("CreateDizimista() failed: %v", err)
	}
	return diz
}

func CreatePagamento(
	t *testing.T,
	repo pagamento.Repository,
	dizimistaID, registradoPorID string,
	valor core.Money,
	data time.Time,
) pagamento.Pagamento {
	t.Helper()

	pag := pagamento.Pagamento{
		Data:  data.UTC(),
		Valor: valor,
	}
	if dizimistaID != "" {
		pag.DizimistaID = null.StringFrom(dizimistaID)
	}
	if registradoPorID != "" {
		pag.RegistradoPorID = null.StringFrom(registradoPorID)
	}
	pag, err := repo.CreatePagamento(context.Background(), pag)
	if err != nil {
		t.Fatalf("CreatePagamento() failed: %v", err)
	}
	return pag
}
