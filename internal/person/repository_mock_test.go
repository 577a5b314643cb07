package person

import (
	"context"
	"sync"
)

// RepositoryMock is a moq-style Repository whose behaviour is set per test
// through the *Func fields. Unset funcs fall through to Backing.
type RepositoryMock struct {
	Backing Repository

	ListFunc       func(ctx context.Context) ([]Person, error)
	GetByIDFunc    func(ctx context.Context, id int64) (Person, error)
	GetByEmailFunc func(ctx context.Context, email string) (Person, error)
	GetByNameFunc  func(ctx context.Context, firstName, lastName string) (Person, error)
	SaveFunc       func(ctx context.Context, p Person) (Person, error)
	DeleteFunc     func(ctx context.Context, id int64) error

	mu    sync.Mutex
	calls struct {
		Save   []Person
		Delete []int64
	}
}

func (m *RepositoryMock) List(ctx context.Context) ([]Person, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return m.Backing.List(ctx)
}

func (m *RepositoryMock) GetByID(ctx context.Context, id int64) (Person, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return m.Backing.GetByID(ctx, id)
}

func (m *RepositoryMock) GetByEmail(ctx context.Context, email string) (Person, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return m.Backing.GetByEmail(ctx, email)
}

func (m *RepositoryMock) GetByName(ctx context.Context, firstName, lastName string) (Person, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, firstName, lastName)
	}
	return m.Backing.GetByName(ctx, firstName, lastName)
}

func (m *RepositoryMock) Save(ctx context.Context, p Person) (Person, error) {
	m.mu.Lock()
	m.calls.Save = append(m.calls.Save, p)
	m.mu.Unlock()
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, p)
	}
	return m.Backing.Save(ctx, p)
}

func (m *RepositoryMock) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	m.calls.Delete = append(m.calls.Delete, id)
	m.mu.Unlock()
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return m.Backing.Delete(ctx, id)
}

// SaveCalls returns the people passed to Save so far.
func (m *RepositoryMock) SaveCalls() []Person {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Person(nil), m.calls.Save...)
}

// DeleteCalls returns the ids passed to Delete so far.
func (m *RepositoryMock) DeleteCalls() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.calls.Delete...)
}
