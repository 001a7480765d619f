package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/carloscruz65/domrealce-site-sub000/internal/entity"
	"github.com/carloscruz65/domrealce-site-sub000/internal/usecase"
)

// MemoryOrderRepo is the development fallback used when MySQL is disabled.
// Everything lives in one mutex-guarded map and is lost on restart.
type MemoryOrderRepo struct {
	mu     sync.RWMutex
	orders map[string]*entity.Order // by id
	numero map[string]string        // numeroEncomenda -> id
}

func NewMemoryOrderRepo() *MemoryOrderRepo {
	return &MemoryOrderRepo{
		orders: make(map[string]*entity.Order),
		numero: make(map[string]string),
	}
}

func (r *MemoryOrderRepo) Create(_ context.Context, o *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.numero[o.NumeroEncomenda]; taken {
		return usecase.ErrNumeroTaken
	}
	r.orders[o.ID] = o.Clone()
	r.numero[o.NumeroEncomenda] = o.ID
	return nil
}

func (r *MemoryOrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, usecase.ErrNotFound
	}
	return o.Clone(), nil
}

func (r *MemoryOrderRepo) GetByNumero(_ context.Context, numero string) (*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.numero[numero]
	if !ok {
		return nil, usecase.ErrNotFound
	}
	return r.orders[id].Clone(), nil
}

func (r *MemoryOrderRepo) GetByReference(_ context.Context, ref string) (*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if ref != "" && (o.Referencia == ref || o.RequestID == ref) {
			return o.Clone(), nil
		}
	}
	return nil, usecase.ErrNotFound
}

// List returns every order, newest first. No pagination: the admin UI
// loads the whole store.
func (r *MemoryOrderRepo) List(_ context.Context) ([]*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CriadaEm.After(out[j].CriadaEm) })
	return out, nil
}

func (r *MemoryOrderRepo) Update(_ context.Context, o *entity.Order, expectedVersion int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.orders[o.ID]
	if !ok {
		return false, usecase.ErrNotFound
	}
	if expectedVersion >= 0 && cur.Versao != expectedVersion {
		return false, nil
	}
	if cur.NumeroEncomenda != o.NumeroEncomenda {
		delete(r.numero, cur.NumeroEncomenda)
		r.numero[o.NumeroEncomenda] = o.ID
	}
	r.orders[o.ID] = o.Clone()
	return true, nil
}

func (r *MemoryOrderRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return usecase.ErrNotFound
	}
	delete(r.numero, o.NumeroEncomenda)
	delete(r.orders, id)
	return nil
}

var _ usecase.OrderRepo = (*MemoryOrderRepo)(nil)
