package person

import (
	"context"

	"github.com/im7mortal/kmutex"
	"github.com/juju/errors"
	"github.com/rs/zerolog"
)

// Outcome labels reported to the Observer.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Observer receives one call per service operation.
type Observer interface {
	Observe(operation, outcome string)
}

type nopObserver struct{}

func (nopObserver) Observe(string, string) {}

// Service owns the business rules for people: emails are unique and every
// operation on an id requires the record to exist.
type Service struct {
	repo     Repository
	emails   *kmutex.Kmutex
	observer Observer
	logger   zerolog.Logger
}

func NewService(repo Repository, observer Observer, logger zerolog.Logger) *Service {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Service{
		repo:     repo,
		emails:   kmutex.New(),
		observer: observer,
		logger:   logger.With().Str("component", "person.service").Logger(),
	}
}

// Create stores candidate under a new id. Any id already set on candidate is
// ignored.
func (s *Service) Create(ctx context.Context, candidate Person) (created Person, err error) {
	defer func() { s.record("create", err) }()

	// the email lookup and the insert must not interleave with another
	// writer claiming the same address
	s.emails.Lock(candidate.Email)
	defer s.emails.Unlock(candidate.Email)

	if err := s.ensureEmailFree(ctx, candidate.Email, 0); err != nil {
		return Person{}, err
	}

	candidate.ID = 0
	created, err = s.repo.Save(ctx, candidate)
	if err != nil {
		return Person{}, errors.Trace(err)
	}
	return created, nil
}

func (s *Service) FindAll(ctx context.Context) (people []Person, err error) {
	defer func() { s.record("find_all", err) }()

	people, err = s.repo.List(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if people == nil {
		people = []Person{}
	}
	return people, nil
}

func (s *Service) FindByID(ctx context.Context, id int64) (p Person, err error) {
	defer func() { s.record("find_by_id", err) }()

	p, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return Person{}, errors.Trace(err)
	}
	return p, nil
}

// FindByName looks a person up by exact first and last name.
func (s *Service) FindByName(ctx context.Context, firstName, lastName string) (p Person, err error) {
	defer func() { s.record("find_by_name", err) }()

	p, err = s.repo.GetByName(ctx, firstName, lastName)
	if err != nil {
		return Person{}, errors.Trace(err)
	}
	return p, nil
}

// Update replaces every attribute of the stored person with candidate.ID.
// The new email may not belong to anyone else.
func (s *Service) Update(ctx context.Context, candidate Person) (updated Person, err error) {
	defer func() { s.record("update", err) }()

	s.emails.Lock(candidate.Email)
	defer s.emails.Unlock(candidate.Email)

	existing, err := s.repo.GetByID(ctx, candidate.ID)
	if err != nil {
		return Person{}, errors.Trace(err)
	}

	if existing.Email != candidate.Email {
		if err := s.ensureEmailFree(ctx, candidate.Email, existing.ID); err != nil {
			return Person{}, err
		}
	}

	existing.FirstName = candidate.FirstName
	existing.LastName = candidate.LastName
	existing.Email = candidate.Email
	existing.Address = candidate.Address
	existing.Gender = candidate.Gender

	updated, err = s.repo.Save(ctx, existing)
	if err != nil {
		return Person{}, errors.Trace(err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	defer func() { s.record("delete", err) }()

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(s.repo.Delete(ctx, id))
}

// ensureEmailFree fails with ErrEmailExists when email is held by a person
// other than owner. Callers must hold the email lock.
func (s *Service) ensureEmailFree(ctx context.Context, email string, owner int64) error {
	found, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return errors.Trace(err)
	case found.ID != owner:
		return errors.Annotatef(ErrEmailExists, "email %q", email)
	}
	return nil
}

func (s *Service) record(operation string, err error) {
	outcome := Outcome(err)
	s.observer.Observe(operation, outcome)
	if outcome == OutcomeError {
		s.logger.Error().Err(err).Str("operation", operation).Msg("person operation failed")
	}
}

// Outcome classifies err into one of the Outcome labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrEmailExists):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}
