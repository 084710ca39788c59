package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
)

// ErrInjected ошибка хранилища, которую MemStore возвращает по требованию теста
var ErrInjected = fmt.Errorf("testutil: injected failure: %w", domain.ErrStorage)

var errNoTx = fmt.Errorf("testutil: transaction required: %w", domain.ErrStorage)

type memTxKey struct{}

type memTx struct {
	created []*domain.Reservation
	updated map[int64]*domain.Reservation
	locks   []*sync.Mutex
}

// MemStore in-memory хранилище бронирований с транзакциями и блокировкой площадки.
// Реализует интерфейсы репозитория и менеджера транзакций для тестов use case и сервисов.
// Запись внутри транзакции видна только ей до commit; LockVenue держит мьютекс площадки до конца транзакции.
type MemStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*domain.Reservation

	locksMu    sync.Mutex
	venueLocks map[int64]*sync.Mutex

	// FailOnCreate номер вызова Create (с 1), который вернёт ErrInjected; 0 = не падать
	FailOnCreate int
	createCalls  int
}

func NewMemStore() *MemStore {
	return &MemStore{
		rows:       make(map[int64]*domain.Reservation),
		venueLocks: make(map[int64]*sync.Mutex),
	}
}

// Seed сохраняет бронирование в обход транзакций и возвращает его ID
func (s *MemStore) Seed(r *domain.Reservation) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c := clone(r)
	c.ID = s.nextID
	s.rows[c.ID] = c
	r.ID = c.ID
	return c.ID
}

// All возвращает все зафиксированные бронирования
func (s *MemStore) All() []*domain.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Reservation, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, clone(r))
	}
	sortReservations(out)
	return out
}

func (s *MemStore) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.run(ctx, fn)
}

func (s *MemStore) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.run(ctx, fn)
}

func (s *MemStore) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memTxKey{}).(*memTx); ok {
		return fn(ctx)
	}

	tx := &memTx{updated: make(map[int64]*domain.Reservation)}
	defer func() {
		for i := len(tx.locks) - 1; i >= 0; i-- {
			tx.locks[i].Unlock()
		}
	}()

	if err := fn(context.WithValue(ctx, memTxKey{}, tx)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range tx.created {
		s.rows[r.ID] = r
	}
	for id, r := range tx.updated {
		s.rows[id] = r
	}
	return nil
}

func (s *MemStore) LockVenue(ctx context.Context, venueID int64) error {
	tx, ok := ctx.Value(memTxKey{}).(*memTx)
	if !ok {
		return errNoTx
	}

	s.locksMu.Lock()
	m, ok := s.venueLocks[venueID]
	if !ok {
		m = &sync.Mutex{}
		s.venueLocks[venueID] = m
	}
	s.locksMu.Unlock()

	for _, held := range tx.locks {
		if held == m {
			return nil
		}
	}
	m.Lock()
	tx.locks = append(tx.locks, m)
	return nil
}

func (s *MemStore) Create(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	s.mu.Lock()
	s.createCalls++
	if s.FailOnCreate > 0 && s.createCalls == s.FailOnCreate {
		s.mu.Unlock()
		return nil, ErrInjected
	}
	s.nextID++
	r.ID = s.nextID
	s.mu.Unlock()

	if tx, ok := ctx.Value(memTxKey{}).(*memTx); ok {
		tx.created = append(tx.created, clone(r))
		return r, nil
	}

	s.mu.Lock()
	s.rows[r.ID] = clone(r)
	s.mu.Unlock()
	return r, nil
}

func (s *MemStore) CreateBatch(ctx context.Context, rs []*domain.Reservation) ([]*domain.Reservation, error) {
	out := make([]*domain.Reservation, 0, len(rs))
	for _, r := range rs {
		created, err := s.Create(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, created)
	}
	return out, nil
}

func (s *MemStore) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	for _, r := range s.visible(ctx) {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("testutil: reservation %d: %w", id, domain.ErrNotFound)
}

func (s *MemStore) GetByFilter(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
	out := make([]*domain.Reservation, 0)
	for _, r := range s.visible(ctx) {
		if matches(r, filter) {
			out = append(out, r)
		}
	}
	sortReservations(out)
	return out, nil
}

func (s *MemStore) UpdateLifecycle(ctx context.Context, r *domain.Reservation) error {
	if _, err := s.GetByID(ctx, r.ID); err != nil {
		return err
	}

	if tx, ok := ctx.Value(memTxKey{}).(*memTx); ok {
		for i, c := range tx.created {
			if c.ID == r.ID {
				tx.created[i] = clone(r)
				return nil
			}
		}
		tx.updated[r.ID] = clone(r)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[r.ID] = clone(r)
	return nil
}

// visible возвращает копии зафиксированных строк с наложенными изменениями текущей транзакции
func (s *MemStore) visible(ctx context.Context) []*domain.Reservation {
	s.mu.Lock()
	out := make([]*domain.Reservation, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, clone(r))
	}
	s.mu.Unlock()

	tx, ok := ctx.Value(memTxKey{}).(*memTx)
	if !ok {
		return out
	}
	for i, r := range out {
		if u, ok := tx.updated[r.ID]; ok {
			out[i] = clone(u)
		}
	}
	for _, r := range tx.created {
		out = append(out, clone(r))
	}
	return out
}

func matches(r *domain.Reservation, f domain.ReservationsFilter) bool {
	if f.VenueID != nil && r.VenueID != *f.VenueID {
		return false
	}
	if f.RequesterID != nil && r.RequesterID != *f.RequesterID {
		return false
	}
	if len(f.Dates) > 0 {
		found := false
		for _, d := range f.Dates {
			if domain.SameDate(d, r.Date) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.StartDate != nil && r.Date.Before(domain.DateOnly(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && r.Date.After(domain.DateOnly(*f.EndDate)) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if r.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, id := range f.ExcludeIDs {
		if r.ID == id {
			return false
		}
	}
	return true
}

func sortReservations(rs []*domain.Reservation) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].Date.Equal(rs[j].Date) {
			return rs[i].Date.Before(rs[j].Date)
		}
		if rs[i].StartTime != rs[j].StartTime {
			return rs[i].StartTime.IsBefore(rs[j].StartTime)
		}
		return rs[i].ID < rs[j].ID
	})
}

func clone(r *domain.Reservation) *domain.Reservation {
	c := *r
	return &c
}

// IsInjected сообщает, что ошибка вызвана FailOnCreate
func IsInjected(err error) bool {
	return errors.Is(err, ErrInjected)
}
