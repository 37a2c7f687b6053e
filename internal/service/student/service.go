package student_service

import (
	"context"
	"strings"

	"gym-panel/internal/models"
	"gym-panel/internal/repository"
	"gym-panel/internal/service"
)

type studentService struct {
	studentRepo repository.StudentRepository
}

func NewStudentService(studentRepo repository.StudentRepository) service.StudentService {
	return &studentService{
		studentRepo: studentRepo,
	}
}

func validateStudent(fullName string) (string, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return "", service.Invalid("full_name", "укажите имя ученика")
	}
	return fullName, nil
}

func (s *studentService) Create(ctx context.Context, fullName, phone string) (*models.Student, error) {
	name, err := validateStudent(fullName)
	if err != nil {
		return nil, err
	}
	student := &models.Student{
		FullName: name,
		Phone:    strings.TrimSpace(phone),
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *studentService) Update(ctx context.Context, id int64, fullName, phone string) error {
	name, err := validateStudent(fullName)
	if err != nil {
		return err
	}
	return s.studentRepo.Update(ctx, &models.Student{
		ID:       id,
		FullName: name,
		Phone:    strings.TrimSpace(phone),
	})
}

func (s *studentService) Delete(ctx context.Context, id int64) error {
	return s.studentRepo.Delete(ctx, id)
}

func (s *studentService) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

func (s *studentService) List(ctx context.Context) ([]models.Student, error) {
	return s.studentRepo.GetAll(ctx)
}

func (s *studentService) Search(ctx context.Context, query string) ([]models.Student, error) {
	students, err := s.studentRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByName(students, query), nil
}

// FilterByName оставляет учеников, в имени которых есть query (без учета регистра).
// Пустой query возвращает список как есть.
func FilterByName(students []models.Student, query string) []models.Student {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return students
	}

	matching := make([]models.Student, 0, len(students))
	for _, st := range students {
		if strings.Contains(strings.ToLower(st.FullName), query) {
			matching = append(matching, st)
		}
	}
	return matching
}
