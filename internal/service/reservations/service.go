package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
	reservationRepo "github.com/m04kA/SMC-VenueBooking/internal/infra/storage/reservation"
	venueClient "github.com/m04kA/SMC-VenueBooking/internal/integrations/venuecatalog"
	"github.com/m04kA/SMC-VenueBooking/internal/service/availability"
	"github.com/m04kA/SMC-VenueBooking/internal/service/reservations/models"
)

const stageApproval = "approval"

// Service сервис жизненного цикла бронирований: просмотр, решение менеджера, отмена
type Service struct {
	reservationRepo ReservationRepository
	checker         AvailabilityChecker
	venueClient     VenueCatalogClient
	txManager       TransactionManager
	publisher       EventPublisher
	cache           AvailabilityCache
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	checker AvailabilityChecker,
	venueClient VenueCatalogClient,
	txManager TransactionManager,
	publisher EventPublisher,
	cache AvailabilityCache,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		checker:         checker,
		venueClient:     venueClient,
		txManager:       txManager,
		publisher:       publisher,
		cache:           cache,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает бронирование по ID
// Видеть бронирование может автор заявки или менеджер площадки
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d for user=%d", id, userID)

	reservation, err := s.getReservation(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if reservation.RequesterID != userID {
		if err := s.checkManagerAccess(ctx, reservation.VenueID, userID); err != nil {
			s.logger.Warn("GetByID: access denied for user=%d to reservation id=%d", userID, id)
			return nil, err
		}
	}

	return models.FromDomainReservation(reservation), nil
}

// GetUserReservations получает историю бронирований пользователя
// Пользователь видит только свои бронирования
func (s *Service) GetUserReservations(ctx context.Context, req *models.GetUserReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetUserReservations: fetching reservations of user=%d for user=%d, status=%v",
		req.TargetUserID, req.UserID, req.Status)

	if req.UserID != req.TargetUserID {
		s.logger.Warn("GetUserReservations: user=%d is not allowed to see reservations of user=%d", req.UserID, req.TargetUserID)
		return nil, ErrAccessDenied
	}

	filter := domain.ReservationsFilter{RequesterID: &req.TargetUserID}
	if req.Status != nil {
		status, err := domain.ParseReservationStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserReservations: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Statuses = []domain.ReservationStatus{status}
	}

	reservations, err := s.reservationRepo.GetByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserReservations: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserReservations - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserReservations: fetched %d reservations for user=%d", len(reservations), req.UserID)
	return models.FromDomainReservationList(reservations), nil
}

// GetVenueReservations получает бронирования площадки с фильтрацией по периоду и статусу
// Доступно только менеджерам площадки
func (s *Service) GetVenueReservations(ctx context.Context, req *models.GetVenueReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetVenueReservations: fetching reservations for venue=%d, user=%d", req.VenueID, req.UserID)

	if err := s.checkManagerAccess(ctx, req.VenueID, req.UserID); err != nil {
		return nil, err
	}

	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetVenueReservations: invalid filter for venue=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	reservations, err := s.reservationRepo.GetByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetVenueReservations: repository error for venue=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: GetVenueReservations - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetVenueReservations: fetched %d reservations for venue=%d", len(reservations), req.VenueID)
	return models.FromDomainReservationList(reservations), nil
}

// Decide одобряет или отклоняет заявку в статусе pending
// Решение принимает только менеджер площадки. Одобрение выполняется под блокировкой площадки
// и проверяет, что слот не занят другим одобренным бронированием.
func (s *Service) Decide(ctx context.Context, reservationID int64, req *models.DecideRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Decide: %s reservation id=%d by user=%d", req.Decision, reservationID, req.UserID)

	decision, err := models.ParseDecision(req.Decision)
	if err != nil {
		s.logger.Warn("Decide: invalid decision=%q for reservation id=%d", req.Decision, reservationID)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	current, err := s.getReservation(ctx, "Decide", reservationID)
	if err != nil {
		return nil, err
	}

	if err := s.checkManagerAccess(ctx, current.VenueID, req.UserID); err != nil {
		s.logger.Warn("Decide: user=%d cannot decide on reservation id=%d", req.UserID, reservationID)
		return nil, err
	}

	now := s.timeProvider.Now().UTC()
	var updated *domain.Reservation

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if decision == models.DecisionApprove {
			if err := s.reservationRepo.LockVenue(txCtx, current.VenueID); err != nil {
				return fmt.Errorf("%w: lock venue: %v", ErrInternal, err)
			}
		}

		reservation, err := s.reservationRepo.GetByID(txCtx, reservationID)
		if err != nil {
			return err
		}

		switch decision {
		case models.DecisionApprove:
			if !reservation.CanTransitionTo(domain.StatusApproved) {
				return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, reservation.Status, domain.StatusApproved)
			}
			if err := s.ensureSlotFree(txCtx, reservation); err != nil {
				return err
			}
			if err := reservation.Approve(req.UserID, now); err != nil {
				return err
			}
		case models.DecisionDecline:
			if err := reservation.Decline(req.UserID, req.Reason, now); err != nil {
				return err
			}
		}

		if err := s.reservationRepo.UpdateLifecycle(txCtx, reservation); err != nil {
			return err
		}
		updated = reservation
		return nil
	})

	if err != nil {
		return nil, s.mapLifecycleError("Decide", current, err)
	}

	s.logger.Info("Decide: reservation id=%d is now %s", reservationID, updated.Status)
	s.afterTransition(ctx, updated, req.UserID, now)

	return models.FromDomainReservation(updated), nil
}

// Cancel отменяет бронирование в статусе pending или approved
// Отменить может автор заявки или менеджер площадки
func (s *Service) Cancel(ctx context.Context, reservationID int64, req *models.CancelRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Cancel: cancelling reservation id=%d by user=%d", reservationID, req.UserID)

	current, err := s.getReservation(ctx, "Cancel", reservationID)
	if err != nil {
		return nil, err
	}

	if current.RequesterID != req.UserID {
		if err := s.checkManagerAccess(ctx, current.VenueID, req.UserID); err != nil {
			s.logger.Warn("Cancel: access denied for user=%d to cancel reservation id=%d", req.UserID, reservationID)
			return nil, err
		}
	}

	now := s.timeProvider.Now().UTC()
	var updated *domain.Reservation

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		reservation, err := s.reservationRepo.GetByID(txCtx, reservationID)
		if err != nil {
			return err
		}

		if err := reservation.Cancel(req.UserID, req.CancellationReason, now); err != nil {
			return err
		}

		if err := s.reservationRepo.UpdateLifecycle(txCtx, reservation); err != nil {
			return err
		}
		updated = reservation
		return nil
	})

	if err != nil {
		return nil, s.mapLifecycleError("Cancel", current, err)
	}

	s.logger.Info("Cancel: reservation id=%d cancelled", reservationID)
	s.afterTransition(ctx, updated, req.UserID, now)

	return models.FromDomainReservation(updated), nil
}

// Вспомогательные методы

// ensureSlotFree проверяет, что окно заявки не пересекается с уже одобренными бронированиями
func (s *Service) ensureSlotFree(ctx context.Context, reservation *domain.Reservation) error {
	results, err := s.checker.Check(ctx, reservation.VenueID, []domain.TimeWindow{reservation.Window()}, domain.SlotHoldingStatuses)
	if err != nil {
		return fmt.Errorf("%w: approval check: %v", ErrInternal, err)
	}

	if conflict := availability.FirstConflict(reservation.VenueID, results); conflict != nil {
		s.metrics.SlotConflict(stageApproval)
		return conflict
	}
	return nil
}

// afterTransition публикует событие и сбрасывает кэш занятости; ошибки только логируются
func (s *Service) afterTransition(ctx context.Context, reservation *domain.Reservation, actorID int64, at time.Time) {
	s.metrics.Transition(string(reservation.Status))

	if err := s.publisher.Publish(ctx, domain.NewLifecycleEvent(reservation, actorID, at)); err != nil {
		s.logger.Warn("afterTransition: failed to publish event for reservation id=%d: %v", reservation.ID, err)
	}

	// pending -> declined не меняет занятость
	if reservation.Status == domain.StatusDeclined {
		return
	}
	if err := s.cache.Invalidate(ctx, reservation.VenueID); err != nil {
		s.logger.Warn("afterTransition: failed to invalidate availability cache for venue id=%d: %v", reservation.VenueID, err)
	}
}

func (s *Service) getReservation(ctx context.Context, op string, id int64) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("%s: reservation id=%d not found", op, id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return reservation, nil
}

// mapLifecycleError приводит ошибку транзакции к ошибке сервиса
func (s *Service) mapLifecycleError(op string, current *domain.Reservation, err error) error {
	id := current.ID
	var conflict *domain.SlotConflictError
	switch {
	case errors.As(err, &conflict):
		s.logger.Warn("%s: reservation id=%d conflicts with approved reservations: %v", op, id, conflict)
		return conflict
	case reservationRepo.IsSlotConflict(err):
		s.metrics.SlotConflict(stageApproval)
		s.logger.Warn("%s: database rejected reservation id=%d: %v", op, id, err)
		return &domain.SlotConflictError{VenueID: current.VenueID, Date: current.Date}
	case errors.Is(err, domain.ErrNotFound):
		return ErrReservationNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		s.logger.Warn("%s: reservation id=%d: %v", op, id, err)
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	case errors.Is(err, domain.ErrValidation):
		s.logger.Warn("%s: reservation id=%d: %v", op, id, err)
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, ErrInternal):
		s.logger.Error("%s: reservation id=%d: %v", op, id, err)
		return err
	default:
		s.logger.Error("%s: repository error for reservation id=%d: %v", op, id, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
}

// checkManagerAccess проверяет, что пользователь является менеджером площадки
func (s *Service) checkManagerAccess(ctx context.Context, venueID int64, userID int64) error {
	venue, err := s.venueClient.GetVenue(ctx, venueID)
	if err != nil {
		if errors.Is(err, venueClient.ErrVenueNotFound) {
			s.logger.Warn("checkManagerAccess: venue id=%d not found", venueID)
			return ErrVenueNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get venue id=%d: %v", venueID, err)
		return fmt.Errorf("%w: checkManagerAccess - failed to get venue: %v", ErrInternal, err)
	}

	if !venue.IsManager(userID) {
		s.logger.Warn("checkManagerAccess: user=%d is not a manager of venue=%d", userID, venueID)
		return ErrAccessDenied
	}

	return nil
}
