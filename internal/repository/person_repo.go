package repository

import (
	"github.com/adiah-react/oxis-sales/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PersonRepository interface {
	Create(person *model.Person) error
	FindAll() ([]model.Person, error)
	FindByID(id uuid.UUID) (*model.Person, error)
	Update(person *model.Person) error
	Delete(id uuid.UUID) error
	AdjustBalance(tx *gorm.DB, id uuid.UUID, delta float64) (int64, error)
}

type personRepo struct {
	db *gorm.DB
}

func NewPersonRepo(db *gorm.DB) PersonRepository {
	return &personRepo{db}
}

func (r *personRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *personRepo) Create(person *model.Person) error {
	return r.db.Create(person).Error
}

func (r *personRepo) FindAll() ([]model.Person, error) {
	var persons []model.Person
	err := r.db.Order("name ASC").Find(&persons).Error
	return persons, err
}

func (r *personRepo) FindByID(id uuid.UUID) (*model.Person, error) {
	var person model.Person
	err := r.db.First(&person, "id = ?", id).Error
	return &person, err
}

func (r *personRepo) Update(person *model.Person) error {
	return r.db.Save(person).Error
}

func (r *personRepo) Delete(id uuid.UUID) error {
	res := r.db.Delete(&model.Person{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdjustBalance applies an atomic balance increment (negative delta for
// charges). Returns the number of rows updated so callers can detect an
// unresolved id.
func (r *personRepo) AdjustBalance(tx *gorm.DB, id uuid.UUID, delta float64) (int64, error) {
	res := r.conn(tx).Model(&model.Person{}).
		Where("id = ?", id).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	return res.RowsAffected, res.Error
}
