package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
	reservationRepo "github.com/m04kA/SMC-VenueBooking/internal/infra/storage/reservation"
	venueClient "github.com/m04kA/SMC-VenueBooking/internal/integrations/venuecatalog"
	"github.com/m04kA/SMC-VenueBooking/internal/service/availability"
)

// Стадии обнаружения конфликта для метрик
const (
	stagePrecheck = "precheck"
	stageCommit   = "commit"
	stageDatabase = "database"
)

// UseCase use case создания бронирования (однократного или еженедельного)
type UseCase struct {
	reservationRepo ReservationRepository
	checker         AvailabilityChecker
	venueClient     VenueCatalogClient
	txManager       TransactionManager
	publisher       EventPublisher
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
	opts            Options
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	checker AvailabilityChecker,
	venueClient VenueCatalogClient,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	logger Logger,
	opts Options,
) *UseCase {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &UseCase{
		reservationRepo: reservationRepo,
		checker:         checker,
		venueClient:     venueClient,
		txManager:       txManager,
		publisher:       publisher,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
		opts:            opts,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования.
// Либо создаются все вхождения в статусе pending, либо ни одного.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: requester=%d, venue=%d, date=%s, time=%s-%s, recurrence=%s",
		req.RequesterID, req.VenueID, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime, req.Recurrence.Kind)

	// 1. Валидация входных данных
	window, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Разворачиваем повторения в конкретные окна
	windows, err := domain.ExpandOccurrences(window, req.Recurrence)
	if err != nil {
		uc.logger.Warn("CreateReservation: invalid recurrence: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	// 3. Получаем площадку и проверяем правила бронирования
	venue, err := uc.venueClient.GetVenue(ctx, req.VenueID)
	if err != nil {
		if errors.Is(err, venueClient.ErrVenueNotFound) {
			uc.logger.Warn("CreateReservation: venue id=%d not found", req.VenueID)
			return nil, ErrVenueNotFound
		}
		uc.logger.Error("CreateReservation: failed to get venue id=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: failed to get venue: %v", ErrInternal, err)
	}

	if err := validateVenue(venue, window); err != nil {
		uc.logger.Warn("CreateReservation: venue id=%d rejected request: %v", req.VenueID, err)
		return nil, err
	}

	now := uc.timeProvider.Now().In(uc.opts.Location)
	if err := validateDates(windows, now, uc.opts.AdvanceBookingDays); err != nil {
		uc.logger.Warn("CreateReservation: date validation failed: %v", err)
		return nil, err
	}

	// 4. Оптимистичная предварительная проверка без блокировок
	results, err := uc.checker.Check(ctx, req.VenueID, windows, domain.SlotHoldingStatuses)
	if err != nil {
		uc.logger.Error("CreateReservation: pre-check failed: %v", err)
		return nil, fmt.Errorf("%w: pre-check: %v", ErrInternal, err)
	}
	if conflict := availability.FirstConflict(req.VenueID, results); conflict != nil {
		uc.logger.Warn("CreateReservation: pre-check conflict: %v", conflict)
		uc.metrics.SlotConflict(stagePrecheck)
		return nil, conflict
	}

	var seriesID *uuid.UUID
	if req.Recurrence.Kind == domain.RecurrenceWeekly {
		id := uuid.New()
		seriesID = &id
	}

	// 5. Повторная проверка и запись под блокировкой площадки.
	// Блокировка берётся первым запросом транзакции, поэтому повторная проверка
	// видит всё, что конкуренты успели зафиксировать до нас.
	var created []*domain.Reservation
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.reservationRepo.LockVenue(txCtx, req.VenueID); err != nil {
			return fmt.Errorf("%w: lock venue: %w", ErrInternal, err)
		}

		results, err := uc.checker.Check(txCtx, req.VenueID, windows, uc.commitStatuses())
		if err != nil {
			return fmt.Errorf("%w: commit-time check: %w", ErrInternal, err)
		}
		if conflict := availability.FirstConflict(req.VenueID, results); conflict != nil {
			uc.metrics.SlotConflict(stageCommit)
			return conflict
		}

		reservations := make([]*domain.Reservation, len(windows))
		for i, w := range windows {
			reservations[i] = domain.NewPendingReservation(req.VenueID, req.RequesterID, w, req.Purpose, seriesID, now.UTC())
		}

		created, err = uc.reservationRepo.CreateBatch(txCtx, reservations)
		if err != nil {
			return err
		}
		return nil
	})

	if err != nil {
		return nil, uc.commitError(ctx, req.VenueID, windows, err)
	}

	uc.logger.Info("CreateReservation: created %d reservation(s) for venue id=%d, first id=%d",
		len(created), req.VenueID, created[0].ID)
	uc.metrics.ReservationsCreated(string(req.Recurrence.Kind), len(created))

	// 6. События после фиксации; доставка не влияет на результат
	events := make([]domain.LifecycleEvent, len(created))
	for i, r := range created {
		events[i] = domain.NewLifecycleEvent(r, req.RequesterID, now.UTC())
	}
	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.logger.Warn("CreateReservation: failed to publish %d event(s): %v", len(events), err)
	}

	return toResponse(seriesID, created), nil
}

// commitStatuses статусы, которые занимают слот при фиксации
func (uc *UseCase) commitStatuses() []domain.ReservationStatus {
	if uc.opts.PendingBlocksPending {
		return domain.ActiveStatuses
	}
	return domain.SlotHoldingStatuses
}

// commitError приводит ошибку транзакции к ошибке use case.
// Конфликт, обнаруженный базой (exclusion constraint, сериализация), отдаётся как SlotConflictError
// с первой занятой датой, если её удаётся найти повторной проверкой.
func (uc *UseCase) commitError(ctx context.Context, venueID int64, windows []domain.TimeWindow, err error) error {
	var conflict *domain.SlotConflictError
	if errors.As(err, &conflict) {
		uc.logger.Warn("CreateReservation: commit-time conflict: %v", conflict)
		return conflict
	}

	if reservationRepo.IsSlotConflict(err) {
		uc.metrics.SlotConflict(stageDatabase)
		conflict = &domain.SlotConflictError{VenueID: venueID, Date: windows[0].Date}
		if results, checkErr := uc.checker.Check(ctx, venueID, windows, uc.commitStatuses()); checkErr == nil {
			if found := availability.FirstConflict(venueID, results); found != nil {
				conflict = found
			}
		}
		uc.logger.Warn("CreateReservation: database rejected batch: %v (%v)", conflict, err)
		return conflict
	}

	if errors.Is(err, ErrInternal) {
		uc.logger.Error("CreateReservation: transaction failed: %v", err)
		return err
	}

	uc.logger.Error("CreateReservation: failed to create reservations: %v", err)
	return fmt.Errorf("%w: failed to create reservations: %v", ErrInternal, err)
}
