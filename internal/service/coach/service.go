package coach_service

import (
	"context"
	"strings"

	"gym-panel/internal/models"
	"gym-panel/internal/repository"
	"gym-panel/internal/service"
)

type coachService struct {
	coachRepo repository.CoachRepository
}

func NewCoachService(coachRepo repository.CoachRepository) service.CoachService {
	return &coachService{
		coachRepo: coachRepo,
	}
}

func validateCoach(coach *models.Coach) error {
	coach.FullName = strings.TrimSpace(coach.FullName)
	if coach.FullName == "" {
		return service.Invalid("full_name", "укажите имя тренера")
	}
	if !(coach.Salary >= 0) || !service.ValidMoney(coach.Salary) {
		return service.Invalid("salary", "оклад не может быть отрицательным")
	}
	if !(coach.PTRate >= 0) || !service.ValidMoney(coach.PTRate) {
		return service.Invalid("pt_rate", "ставка PT не может быть отрицательной")
	}
	switch coach.Role {
	case "":
		coach.Role = models.CoachRoleCoach
	case models.CoachRoleCoach, models.CoachRoleHeadCoach:
	default:
		return service.Invalid("role", "неизвестная роль тренера")
	}
	return nil
}

func (s *coachService) Create(ctx context.Context, coach *models.Coach) error {
	if err := validateCoach(coach); err != nil {
		return err
	}
	return s.coachRepo.Create(ctx, coach)
}

func (s *coachService) Update(ctx context.Context, coach *models.Coach) error {
	if err := validateCoach(coach); err != nil {
		return err
	}
	return s.coachRepo.Update(ctx, coach)
}

func (s *coachService) Delete(ctx context.Context, id int64) error {
	return s.coachRepo.Delete(ctx, id)
}

func (s *coachService) GetByID(ctx context.Context, id int64) (*models.Coach, error) {
	return s.coachRepo.GetByID(ctx, id)
}

func (s *coachService) GetByTelegramID(ctx context.Context, telegramID int64) (*models.Coach, error) {
	return s.coachRepo.GetByTelegramID(ctx, telegramID)
}

func (s *coachService) List(ctx context.Context) ([]models.Coach, error) {
	return s.coachRepo.GetAll(ctx)
}
