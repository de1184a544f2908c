package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"

	"github.com/datapusher/webhook-relay/internal/core/domain"
	"github.com/datapusher/webhook-relay/internal/core/ports"
)

var hexToken = regexp.MustCompile(`^[0-9a-f]{64}$`)

func newAccountFixture() (*AccountService, *stubAccountRepo, *stubDestinationRepo) {
	accounts := newStubAccountRepo()
	dests := newStubDestinationRepo()
	return NewAccountService(accounts, dests, discardLogger), accounts, dests
}

func TestAccountService_Create_AssignsTokenAndExternalID(t *testing.T) {
	svc, _, _ := newAccountFixture()

	a, err := svc.Create(context.Background(), ports.CreateAccountInput{Email: "ops@acme.io", Name: "Acme", Website: "https://acme.io"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !hexToken.MatchString(a.SecretToken) {
		t.Errorf("token must be 64 hex chars, got %q", a.SecretToken)
	}
	if _, err := uuid.Parse(a.ExternalID); err != nil {
		t.Errorf("external id must be a uuid, got %q", a.ExternalID)
	}
	if a.CreatedAt.IsZero() || a.UpdatedAt.IsZero() {
		t.Error("timestamps must be set")
	}
	if a.Website != "https://acme.io" {
		t.Errorf("unexpected website %q", a.Website)
	}
}

func TestAccountService_Create_TokensAreUnique(t *testing.T) {
	svc, _, _ := newAccountFixture()

	a, _ := svc.Create(context.Background(), ports.CreateAccountInput{Email: "a@acme.io", Name: "A"})
	b, _ := svc.Create(context.Background(), ports.CreateAccountInput{Email: "b@acme.io", Name: "B"})

	if a.SecretToken == b.SecretToken {
		t.Fatal("two accounts received the same token")
	}
}

func TestAccountService_Create_RequiresEmailAndName(t *testing.T) {
	svc, _, _ := newAccountFixture()

	cases := []ports.CreateAccountInput{
		{Name: "Acme"},
		{Email: "ops@acme.io"},
		{Email: "  ", Name: "Acme"},
	}
	for _, in := range cases {
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("input %+v: expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestAccountService_Create_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAccountFixture()

	_, _ = svc.Create(context.Background(), ports.CreateAccountInput{Email: "ops@acme.io", Name: "Acme"})
	_, err := svc.Create(context.Background(), ports.CreateAccountInput{Email: "ops@acme.io", Name: "Other"})
	if !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestAccountService_Update_TouchesOnlyProvidedFields(t *testing.T) {
	svc, _, _ := newAccountFixture()
	a, _ := svc.Create(context.Background(), ports.CreateAccountInput{Email: "ops@acme.io", Name: "Acme", Website: "https://acme.io"})

	name := "Acme Corp"
	empty := ""
	updated, err := svc.Update(context.Background(), a.ID, domain.AccountUpdate{Name: &name, Email: &empty})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Name != "Acme Corp" {
		t.Errorf("expected name update, got %q", updated.Name)
	}
	if updated.Email != "ops@acme.io" {
		t.Errorf("empty email must be ignored, got %q", updated.Email)
	}
	if updated.Website != "https://acme.io" {
		t.Errorf("website must be untouched, got %q", updated.Website)
	}
	if updated.SecretToken != a.SecretToken {
		t.Error("token must never change on update")
	}
}

func TestAccountService_Update_NotFound(t *testing.T) {
	svc, _, _ := newAccountFixture()
	name := "x"

	if _, err := svc.Update(context.Background(), "missing", domain.AccountUpdate{Name: &name}); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "missing", domain.AccountUpdate{}); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("empty update on missing account: expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountService_Delete_CascadesToDestinations(t *testing.T) {
	svc, accounts, dests := newAccountFixture()
	owner := accounts.seed("tok-owner")
	other := accounts.seed("tok-other")

	for _, accID := range []string{owner.ID, owner.ID, other.ID} {
		_, _ = dests.Create(context.Background(), &domain.Destination{AccountID: accID, URL: "http://example.com", HTTPMethod: domain.MethodPost})
	}

	if err := svc.Delete(context.Background(), owner.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := accounts.FindByID(context.Background(), owner.ID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("account must be gone, got %v", err)
	}
	remaining, _ := dests.FindByAccountID(context.Background(), owner.ID)
	if len(remaining) != 0 {
		t.Errorf("expected destinations to be cascaded, %d left", len(remaining))
	}
	kept, _ := dests.FindByAccountID(context.Background(), other.ID)
	if len(kept) != 1 {
		t.Errorf("other account's destinations must survive, got %d", len(kept))
	}
}

func TestAccountService_Delete_NotFound(t *testing.T) {
	svc, _, _ := newAccountFixture()
	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountService_Update_TrimsValues(t *testing.T) {
	svc, _, _ := newAccountFixture()
	a, _ := svc.Create(context.Background(), ports.CreateAccountInput{Email: "ops@acme.io", Name: "Acme"})

	email := "  billing@acme.io "
	name := "\tAcme Corp  "
	website := " https://acme.io/ "
	updated, err := svc.Update(context.Background(), a.ID, domain.AccountUpdate{Email: &email, Name: &name, Website: &website})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Email != "billing@acme.io" || updated.Name != "Acme Corp" || updated.Website != "https://acme.io/" {
		t.Errorf("expected trimmed values, got %q %q %q", updated.Email, updated.Name, updated.Website)
	}
}
