package person

import (
	"context"

	"github.com/juju/errors"
	"gorm.io/gorm"
)

// GormRepository is the GORM backed alternative to PostgresRepository. Both
// operate on the same person table.
type GormRepository struct {
	db *gorm.DB
}

var _ Repository = (*GormRepository)(nil)

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) List(ctx context.Context) ([]Person, error) {
	people := make([]Person, 0)
	if err := r.db.WithContext(ctx).Order("id").Find(&people).Error; err != nil {
		return nil, errors.Annotatef(err, "listing people")
	}
	return people, nil
}

func (r *GormRepository) GetByID(ctx context.Context, id int64) (Person, error) {
	var p Person
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return Person{}, translateGormError(err)
	}
	return p, nil
}

func (r *GormRepository) GetByEmail(ctx context.Context, email string) (Person, error) {
	var p Person
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&p).Error; err != nil {
		return Person{}, translateGormError(err)
	}
	return p, nil
}

func (r *GormRepository) GetByName(ctx context.Context, firstName, lastName string) (Person, error) {
	var p Person
	err := r.db.WithContext(ctx).
		Where("first_name = ? AND last_name = ?", firstName, lastName).
		First(&p).Error
	if err != nil {
		return Person{}, translateGormError(err)
	}
	return p, nil
}

func (r *GormRepository) Save(ctx context.Context, p Person) (Person, error) {
	if p.ID == 0 {
		if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
			return Person{}, translateGormError(err)
		}
		return p, nil
	}

	tx := r.db.WithContext(ctx).
		Model(&Person{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"first_name": p.FirstName,
			"last_name":  p.LastName,
			"email":      p.Email,
			"address":    p.Address,
			"gender":     p.Gender,
		})
	if tx.Error != nil {
		return Person{}, translateGormError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return Person{}, ErrNotFound
	}
	return p, nil
}

func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Person{})
	if tx.Error != nil {
		return errors.Trace(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func translateGormError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return ErrEmailExists
	default:
		return errors.Trace(err)
	}
}
