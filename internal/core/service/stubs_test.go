package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/datapusher/webhook-relay/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	mu          sync.Mutex
	byID        map[string]*domain.Account
	seq         int
	createErr   error
	tokenLookup atomic.Int32
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byID: make(map[string]*domain.Account)}
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.byID {
		if existing.Email == a.Email || existing.SecretToken == a.SecretToken || existing.ExternalID == a.ExternalID {
			return nil, domain.ErrAccountExists
		}
	}
	r.seq++
	clone := *a
	clone.ID = fmt.Sprintf("acc-%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubAccountRepo) List(_ context.Context) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		clone := *a
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubAccountRepo) FindByToken(_ context.Context, token string) (*domain.Account, error) {
	r.tokenLookup.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.SecretToken == token {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) Update(_ context.Context, id string, u domain.AccountUpdate) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	u.Apply(a)
	clone := *a
	return &clone, nil
}

func (r *stubAccountRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.byID, id)
	return nil
}

// seed stores an account with a known token and returns it.
func (r *stubAccountRepo) seed(token string) *domain.Account {
	a, err := r.Create(context.Background(), &domain.Account{
		ExternalID:  "ext-" + token,
		Email:       token + "@example.com",
		Name:        "Acme",
		SecretToken: token,
	})
	if err != nil {
		panic(err)
	}
	return a
}

type stubDestinationRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Destination
	order   []string
	seq     int
	findErr error
}

func newStubDestinationRepo() *stubDestinationRepo {
	return &stubDestinationRepo{byID: make(map[string]*domain.Destination)}
}

func (r *stubDestinationRepo) Create(_ context.Context, d *domain.Destination) (*domain.Destination, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	clone := *d
	clone.ID = fmt.Sprintf("dst-%d", r.seq)
	r.byID[clone.ID] = &clone
	r.order = append(r.order, clone.ID)
	out := clone
	return &out, nil
}

func (r *stubDestinationRepo) List(_ context.Context) ([]*domain.Destination, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Destination{}
	for _, id := range r.order {
		if d, ok := r.byID[id]; ok {
			clone := *d
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubDestinationRepo) FindByID(_ context.Context, id string) (*domain.Destination, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrDestinationNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubDestinationRepo) FindByAccountID(_ context.Context, accountID string) ([]*domain.Destination, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := []*domain.Destination{}
	for _, id := range r.order {
		if d, ok := r.byID[id]; ok && d.AccountID == accountID {
			clone := *d
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubDestinationRepo) Update(_ context.Context, id string, u domain.DestinationUpdate) (*domain.Destination, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrDestinationNotFound
	}
	u.Apply(d)
	clone := *d
	return &clone, nil
}

func (r *stubDestinationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrDestinationNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubDestinationRepo) DeleteByAccountID(_ context.Context, accountID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, d := range r.byID {
		if d.AccountID == accountID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}
