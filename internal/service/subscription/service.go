package subscription_service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gym-panel/internal/models"
	"gym-panel/internal/repository"
	"gym-panel/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ResetWindow сколько времени после отметки ее можно отменить
const ResetWindow = 24 * time.Hour

type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	attendanceRepo   repository.AttendanceRepository
	studentRepo      repository.StudentRepository
	coachRepo        repository.CoachRepository
	notifier         service.Notifier
	logger           *zap.Logger
	now              func() time.Time
}

func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	attendanceRepo repository.AttendanceRepository,
	studentRepo repository.StudentRepository,
	coachRepo repository.CoachRepository,
	notifier service.Notifier,
	logger *zap.Logger,
) service.PTService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		attendanceRepo:   attendanceRepo,
		studentRepo:      studentRepo,
		coachRepo:        coachRepo,
		notifier:         notifier,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, input service.SubscriptionInput) (*models.PTSubscription, error) {
	if input.StudentID == 0 {
		return nil, service.Invalid("student_id", "выберите ученика")
	}
	if input.CoachID == 0 {
		return nil, service.Invalid("coach_id", "выберите тренера")
	}
	if input.TotalSessions < 1 {
		return nil, service.Invalid("total_sessions", "в пакете должно быть хотя бы одно занятие")
	}
	if !(input.Rate >= 0) || !service.ValidMoney(input.Rate) {
		return nil, service.Invalid("rate", "стоимость не может быть отрицательной")
	}

	subscription := &models.PTSubscription{
		StudentID:         input.StudentID,
		CoachID:           input.CoachID,
		TotalSessions:     input.TotalSessions,
		SessionsRemaining: input.TotalSessions,
		Rate:              input.Rate,
		ExpiresAt:         input.ExpiresAt,
		Status:            models.PTStatusActive,
	}
	if err := s.subscriptionRepo.Create(ctx, subscription); err != nil {
		return nil, err
	}
	return subscription, nil
}

func (s *subscriptionService) DeleteSubscription(ctx context.Context, id int64) error {
	return s.subscriptionRepo.Delete(ctx, id)
}

// StatusFor статус абонемента при данном остатке
func StatusFor(remaining int) string {
	if remaining <= 0 {
		return models.PTStatusExpired
	}
	return models.PTStatusActive
}

func (s *subscriptionService) RecordSession(ctx context.Context, subscriptionID int64, date time.Time, count int) (*models.PTSubscription, error) {
	if count < 1 {
		return nil, service.Invalid("session_count", "количество занятий должно быть не меньше 1")
	}

	sub, err := s.subscriptionRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.SessionsRemaining < count {
		return nil, fmt.Errorf("абонемент %d: осталось %d, списывается %d: %w",
			sub.ID, sub.SessionsRemaining, count, service.ErrNoSessionsLeft)
	}

	if date.IsZero() {
		y, m, d := s.now().Date()
		date = time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	}
	session := &models.PTSession{
		SubscriptionID: sub.ID,
		CoachID:        sub.CoachID,
		Date:           date,
		SessionCount:   count,
	}
	if err := s.attendanceRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	expected := sub.SessionsRemaining
	remaining := expected - count
	status := StatusFor(remaining)

	ok, err := s.subscriptionRepo.UpdateRemaining(ctx, sub.ID, expected, remaining, status)
	if err != nil || !ok {
		// счетчик не изменился - убираем только что добавленную отметку
		if delErr := s.attendanceRepo.Delete(ctx, session.ID); delErr != nil {
			s.logger.Error("Не удалось откатить отметку PT занятия",
				zap.Int64("subscription_id", sub.ID),
				zap.Int64("session_id", session.ID),
				zap.Error(delErr))
		}
		if err != nil {
			return nil, fmt.Errorf("обновление остатка абонемента %d: %w", sub.ID, errors.Join(service.ErrConflict, err))
		}
		return nil, fmt.Errorf("абонемент %d: %w", sub.ID, service.ErrConflict)
	}

	sub.SessionsRemaining = remaining
	sub.Status = status
	s.logger.Info("Отмечено PT занятие",
		zap.Int64("subscription_id", sub.ID),
		zap.Int("count", count),
		zap.Int("remaining", remaining))

	if remaining == 0 {
		s.notifyExhausted(ctx, *sub)
	}
	return sub, nil
}

func (s *subscriptionService) ResetSession(ctx context.Context, subscriptionID int64, now time.Time) (*models.PTSubscription, error) {
	sub, err := s.subscriptionRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	last, err := s.attendanceRepo.GetLatestSince(ctx, sub.ID, now.Add(-ResetWindow))
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, fmt.Errorf("абонемент %d: %w", sub.ID, service.ErrNothingToReset)
	}

	expected := sub.SessionsRemaining
	remaining := min(expected+last.SessionCount, sub.TotalSessions)
	status := StatusFor(remaining)

	ok, err := s.subscriptionRepo.UpdateRemaining(ctx, sub.ID, expected, remaining, status)
	if err != nil {
		return nil, fmt.Errorf("обновление остатка абонемента %d: %w", sub.ID, errors.Join(service.ErrConflict, err))
	}
	if !ok {
		return nil, fmt.Errorf("абонемент %d: %w", sub.ID, service.ErrConflict)
	}

	if err := s.attendanceRepo.Delete(ctx, last.ID); err != nil {
		// отметку удалить не вышло - возвращаем счетчик
		if _, undoErr := s.subscriptionRepo.UpdateRemaining(ctx, sub.ID, remaining, expected, sub.Status); undoErr != nil {
			s.logger.Error("Не удалось вернуть остаток абонемента",
				zap.Int64("subscription_id", sub.ID),
				zap.Int("remaining", expected),
				zap.Error(undoErr))
		}
		return nil, fmt.Errorf("удаление отметки %d: %w", last.ID, errors.Join(service.ErrConflict, err))
	}

	sub.SessionsRemaining = remaining
	sub.Status = status
	s.logger.Info("Отменена PT отметка",
		zap.Int64("subscription_id", sub.ID),
		zap.Int64("session_id", last.ID),
		zap.Int("remaining", remaining))
	return sub, nil
}

func (s *subscriptionService) notifyExhausted(ctx context.Context, sub models.PTSubscription) {
	if s.notifier == nil {
		return
	}
	studentName, coachName := s.names(ctx, sub.StudentID, sub.CoachID)
	view := NewView(sub, studentName, coachName, nil, s.now())
	if err := s.notifier.SubscriptionExhausted(ctx, view); err != nil {
		s.logger.Warn("Не удалось отправить уведомление о закончившемся абонементе",
			zap.Int64("subscription_id", sub.ID),
			zap.Error(err))
	}
}

func (s *subscriptionService) names(ctx context.Context, studentID, coachID int64) (string, string) {
	studentName := fmt.Sprintf("Ученик #%d", studentID)
	if st, err := s.studentRepo.GetByID(ctx, studentID); err == nil {
		studentName = st.FullName
	}
	coachName := fmt.Sprintf("Тренер #%d", coachID)
	if c, err := s.coachRepo.GetByID(ctx, coachID); err == nil {
		coachName = c.FullName
	}
	return studentName, coachName
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id int64) (*models.PTSubscriptionView, error) {
	sub, err := s.subscriptionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sessions, err := s.attendanceRepo.GetBySubscription(ctx, id)
	if err != nil {
		return nil, err
	}
	studentName, coachName := s.names(ctx, sub.StudentID, sub.CoachID)
	view := NewView(*sub, studentName, coachName, sessions, s.now())
	return &view, nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context) ([]models.PTSubscriptionView, error) {
	subs, err := s.subscriptionRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, subs)
}

func (s *subscriptionService) ListByCoach(ctx context.Context, coachID int64) ([]models.PTSubscriptionView, error) {
	subs, err := s.subscriptionRepo.GetByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, subs)
}

func (s *subscriptionService) views(ctx context.Context, subs []models.PTSubscription) ([]models.PTSubscriptionView, error) {
	if len(subs) == 0 {
		return []models.PTSubscriptionView{}, nil
	}

	subIDs := make([]int64, 0, len(subs))
	studentIDs := make([]int64, 0, len(subs))
	for _, sub := range subs {
		subIDs = append(subIDs, sub.ID)
		studentIDs = append(studentIDs, sub.StudentID)
	}

	var (
		students []models.Student
		coaches  []models.Coach
		sessions []models.PTSession
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		students, err = s.studentRepo.GetByIDs(gctx, studentIDs)
		return err
	})
	g.Go(func() (err error) {
		coaches, err = s.coachRepo.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		sessions, err = s.attendanceRepo.GetBySubscriptions(gctx, subIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	studentNames := make(map[int64]string, len(students))
	for _, st := range students {
		studentNames[st.ID] = st.FullName
	}
	coachNames := make(map[int64]string, len(coaches))
	for _, c := range coaches {
		coachNames[c.ID] = c.FullName
	}
	bySub := make(map[int64][]models.PTSession)
	for _, session := range sessions {
		bySub[session.SubscriptionID] = append(bySub[session.SubscriptionID], session)
	}

	now := s.now()
	views := make([]models.PTSubscriptionView, 0, len(subs))
	for _, sub := range subs {
		studentName, ok := studentNames[sub.StudentID]
		if !ok {
			studentName = fmt.Sprintf("Ученик #%d", sub.StudentID)
		}
		coachName, ok := coachNames[sub.CoachID]
		if !ok {
			coachName = fmt.Sprintf("Тренер #%d", sub.CoachID)
		}
		views = append(views, NewView(sub, studentName, coachName, bySub[sub.ID], now))
	}
	return views, nil
}
