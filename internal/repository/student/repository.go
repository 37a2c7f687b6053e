package student

import (
	"context"
	"fmt"

	"gym-panel/internal/backend"
	"gym-panel/internal/models"
	"gym-panel/internal/repository"
)

type studentRepository struct {
	db backend.Client
}

func NewStudentRepository(db backend.Client) repository.StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	row := backend.Row{
		"full_name": student.FullName,
		"phone":     student.Phone,
	}
	return r.db.Insert(ctx, repository.TableStudents, row, student)
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	row := backend.Row{
		"full_name": student.FullName,
		"phone":     student.Phone,
	}
	n, err := r.db.Update(ctx, repository.TableStudents, row, backend.Eq("id", student.ID))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("ученик с ID %d не найден: %w", student.ID, backend.ErrNotFound)
	}
	return nil
}

func (r *studentRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.db.Delete(ctx, repository.TableStudents, backend.Eq("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("ученик с ID %d не найден: %w", id, backend.ErrNotFound)
	}
	return nil
}

func (r *studentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	var student models.Student
	if err := r.db.Get(ctx, repository.TableStudents, &student, backend.Eq("id", id)); err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) GetAll(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := r.db.Select(ctx, repository.TableStudents, &students, backend.Order("full_name", false))
	return students, err
}

func (r *studentRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Student, error) {
	if len(ids) == 0 {
		return []models.Student{}, nil
	}
	var students []models.Student
	err := r.db.Select(ctx, repository.TableStudents, &students, backend.In("id", ids))
	return students, err
}
