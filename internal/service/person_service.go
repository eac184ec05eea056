package service

import (
	"errors"
	"fmt"

	"github.com/adiah-react/oxis-sales/internal/model"
	"github.com/adiah-react/oxis-sales/internal/repository"
	"github.com/adiah-react/oxis-sales/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PersonService interface {
	CreatePerson(req *model.Person, userID string) error
	UpdatePerson(id uuid.UUID, req *model.Person, userID string) (*model.Person, error)
	DeletePerson(id uuid.UUID) error
	AdjustBalance(id uuid.UUID, delta float64) (*model.Person, error)
	GetAllPersons() ([]model.Person, error)
	GetPersonByID(id uuid.UUID) (*model.Person, error)
}

type personService struct {
	personRepo repository.PersonRepository
}

func NewPersonService(personRepo repository.PersonRepository) PersonService {
	return &personService{personRepo: personRepo}
}

func (s *personService) CreatePerson(req *model.Person, userID string) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("%w: field '%s' failed on tag '%s'",
			model.ErrValidation, firstErr.FailedField, firstErr.Tag)
	}

	req.CreatedBy = userID
	req.UpdatedBy = userID

	return s.personRepo.Create(req)
}

func (s *personService) UpdatePerson(id uuid.UUID, req *model.Person, userID string) (*model.Person, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("%w: field '%s' failed on tag '%s'",
			model.ErrValidation, firstErr.FailedField, firstErr.Tag)
	}

	existing, err := s.personRepo.FindByID(id)
	if err != nil {
		return nil, model.ErrPersonNotFound
	}

	existing.Name = req.Name
	existing.Email = req.Email
	existing.Type = req.Type
	existing.Balance = req.Balance
	existing.UpdatedBy = userID

	if err := s.personRepo.Update(existing); err != nil {
		return nil, err
	}

	return existing, nil
}

func (s *personService) DeletePerson(id uuid.UUID) error {
	if err := s.personRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrPersonNotFound
		}
		return err
	}
	return nil
}

// AdjustBalance applies a top-up (positive delta) or a manual charge
// (negative delta) independent of any sale.
func (s *personService) AdjustBalance(id uuid.UUID, delta float64) (*model.Person, error) {
	rows, err := s.personRepo.AdjustBalance(nil, id, delta)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, model.ErrPersonNotFound
	}
	return s.personRepo.FindByID(id)
}

func (s *personService) GetAllPersons() ([]model.Person, error) {
	return s.personRepo.FindAll()
}

func (s *personService) GetPersonByID(id uuid.UUID) (*model.Person, error) {
	person, err := s.personRepo.FindByID(id)
	if err != nil {
		return nil, model.ErrPersonNotFound
	}
	return person, nil
}
