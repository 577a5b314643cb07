package person

import (
	"context"
	"sync"

	"github.com/juju/errors"
)

const (
	ErrNotFound      = errors.ConstError("person not found")
	ErrEmailExists   = errors.ConstError("email already exists")
	ErrMissingFields = errors.ConstError("missing required fields")
)

// Repository is the storage contract the service depends on. Lookups return
// ErrNotFound when nothing matches; Save returns ErrEmailExists when the
// backend rejects a duplicate email.
type Repository interface {
	List(ctx context.Context) ([]Person, error)
	GetByID(ctx context.Context, id int64) (Person, error)
	GetByEmail(ctx context.Context, email string) (Person, error)
	// GetByName returns the lowest-id person whose first and last names both
	// match exactly.
	GetByName(ctx context.Context, firstName, lastName string) (Person, error)
	// Save inserts p when p.ID is zero and updates the stored row otherwise.
	Save(ctx context.Context, p Person) (Person, error)
	Delete(ctx context.Context, id int64) error
}

// InMemoryRepository keeps people in insertion order. It is used by tests and
// when the service runs with STORE=memory.
type InMemoryRepository struct {
	mu     sync.RWMutex
	people []Person
	nextID int64
}

var _ Repository = (*InMemoryRepository)(nil)

func NewInMemoryRepository(seed []Person) *InMemoryRepository {
	repo := &InMemoryRepository{
		people: make([]Person, 0, len(seed)),
		nextID: 1,
	}

	var maxID int64
	for _, p := range seed {
		repo.people = append(repo.people, p)
		if p.ID > maxID {
			maxID = p.ID
		}
	}

	repo.nextID = maxID + 1
	return repo
}

func (r *InMemoryRepository) List(ctx context.Context) ([]Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	people := make([]Person, len(r.people))
	copy(people, r.people)
	return people, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		return r.people[i], nil
	}
	return Person{}, ErrNotFound
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.people {
		if p.Email == email {
			return p, nil
		}
	}
	return Person{}, ErrNotFound
}

func (r *InMemoryRepository) GetByName(ctx context.Context, firstName, lastName string) (Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found Person
		ok    bool
	)
	for _, p := range r.people {
		if p.FirstName != firstName || p.LastName != lastName {
			continue
		}
		if !ok || p.ID < found.ID {
			found, ok = p, true
		}
	}
	if !ok {
		return Person{}, ErrNotFound
	}
	return found, nil
}

func (r *InMemoryRepository) Save(ctx context.Context, p Person) (Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// mirror the UNIQUE constraint of the SQL table
	for _, existing := range r.people {
		if existing.Email == p.Email && existing.ID != p.ID {
			return Person{}, ErrEmailExists
		}
	}

	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
		r.people = append(r.people, p)
		return p, nil
	}

	i := r.indexOf(p.ID)
	if i < 0 {
		return Person{}, ErrNotFound
	}
	r.people[i] = p
	return p, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.people = append(r.people[:i], r.people[i+1:]...)
	return nil
}

// indexOf must be called with r.mu held.
func (r *InMemoryRepository) indexOf(id int64) int {
	for i, p := range r.people {
		if p.ID == id {
			return i
		}
	}
	return -1
}
