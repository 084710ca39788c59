package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
)

// Checker проверяет окна-кандидаты на пересечение с уже занятыми слотами площадки.
// Только читает хранилище и безопасен для конкурентного использования.
type Checker struct {
	repo ReservationRepository
}

// NewChecker создает новый экземпляр проверки доступности
func NewChecker(repo ReservationRepository) *Checker {
	return &Checker{repo: repo}
}

// Check возвращает результат по каждому кандидату в порядке входа.
// statuses определяет, какие бронирования занимают слот; пустой список = domain.SlotHoldingStatuses.
// Все даты кандидатов читаются одним запросом.
func (c *Checker) Check(ctx context.Context, venueID int64, windows []domain.TimeWindow, statuses []domain.ReservationStatus) ([]Result, error) {
	if len(windows) == 0 {
		return nil, ErrNoCandidates
	}
	if len(statuses) == 0 {
		statuses = domain.SlotHoldingStatuses
	}

	dates := make([]time.Time, 0, len(windows))
	seen := make(map[string]struct{}, len(windows))
	for _, w := range windows {
		key := w.Date.Format(domain.DateFormat)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		dates = append(dates, w.Date)
	}

	existing, err := c.repo.GetByFilter(ctx, domain.ReservationsFilter{
		VenueID:  &venueID,
		Dates:    dates,
		Statuses: statuses,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: venue_id=%d: %v", ErrRepositoryError, venueID, err)
	}

	return Evaluate(windows, existing), nil
}

// Evaluate сопоставляет кандидатов с уже загруженными бронированиями.
// Бронирования считаются занимающими слот независимо от статуса: фильтрация по статусу - забота вызывающего.
func Evaluate(windows []domain.TimeWindow, existing []*domain.Reservation) []Result {
	results := make([]Result, len(windows))
	for i, w := range windows {
		results[i] = Result{Window: w, Available: true}
		for _, r := range existing {
			if w.Overlaps(r.Window()) {
				results[i].Available = false
				results[i].BlockingIDs = append(results[i].BlockingIDs, r.ID)
			}
		}
	}
	return results
}

// FirstConflict возвращает ошибку по первому занятому кандидату в порядке запроса
// или nil, если свободны все
func FirstConflict(venueID int64, results []Result) *domain.SlotConflictError {
	for _, res := range results {
		if !res.Available {
			return &domain.SlotConflictError{
				VenueID:     venueID,
				Date:        res.Window.Date,
				BlockingIDs: res.BlockingIDs,
			}
		}
	}
	return nil
}
