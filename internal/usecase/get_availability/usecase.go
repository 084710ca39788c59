package get_availability

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
	venueClient "github.com/m04kA/SMC-VenueBooking/internal/integrations/venuecatalog"
)

// Результаты обращения к кэшу для метрик
const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

// UseCase use case получения занятости площадки по датам
type UseCase struct {
	reservationRepo ReservationRepository
	venueClient     VenueCatalogClient
	cache           AvailabilityCache
	metrics         Metrics
	logger          Logger
	opts            Options
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	venueClient VenueCatalogClient,
	cache AvailabilityCache,
	metrics Metrics,
	logger Logger,
	opts Options,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		venueClient:     venueClient,
		cache:           cache,
		metrics:         metrics,
		logger:          logger,
		opts:            opts,
	}
}

// Execute возвращает одобренные окна площадки на каждую дату периода.
// Состояние не меняется; повторный вызов без промежуточных изменений даёт тот же ответ.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация периода
	days, err := validateRequest(req, uc.opts.MaxQueryDays)
	if err != nil {
		uc.logger.Warn("GetAvailability: validation failed for venue=%d: %v", req.VenueID, err)
		return nil, err
	}

	uc.logger.Info("GetAvailability: user=%d, venue=%d, from=%s, to=%s",
		req.UserID, req.VenueID, req.From.Format(domain.DateFormat), req.To.Format(domain.DateFormat))

	// 2. Проверяем, что площадка существует
	if _, err := uc.venueClient.GetVenue(ctx, req.VenueID); err != nil {
		if errors.Is(err, venueClient.ErrVenueNotFound) {
			uc.logger.Warn("GetAvailability: venue id=%d not found", req.VenueID)
			return nil, ErrVenueNotFound
		}
		uc.logger.Error("GetAvailability: failed to get venue id=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: failed to get venue: %v", ErrInternal, err)
	}

	// 3. Пробуем кэш
	key := rangeKey(req)
	var cached Response
	version, found, err := uc.cache.Get(ctx, req.VenueID, key, &cached)
	cacheable := err == nil
	switch {
	case err != nil:
		uc.metrics.AvailabilityCache(cacheError)
		uc.logger.Warn("GetAvailability: cache read failed for venue=%d: %v", req.VenueID, err)
	case found:
		uc.metrics.AvailabilityCache(cacheHit)
		return &cached, nil
	default:
		uc.metrics.AvailabilityCache(cacheMiss)
	}

	// 4. Читаем одобренные бронирования периода
	reservations, err := uc.reservationRepo.GetByFilter(ctx, domain.ReservationsFilter{
		VenueID:   &req.VenueID,
		StartDate: &req.From,
		EndDate:   &req.To,
		Statuses:  domain.SlotHoldingStatuses,
	})
	if err != nil {
		uc.logger.Error("GetAvailability: repository error for venue=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: repository error: %v", ErrInternal, err)
	}

	resp := buildResponse(req, days, reservations)

	// Пишем под версией, прочитанной до загрузки: сброс во время чтения делает запись недостижимой
	if cacheable {
		if err := uc.cache.Set(ctx, req.VenueID, version, key, resp); err != nil {
			uc.logger.Warn("GetAvailability: cache write failed for venue=%d: %v", req.VenueID, err)
		}
	}

	return resp, nil
}

// buildResponse раскладывает бронирования по датам периода
func buildResponse(req *Request, days int, reservations []*domain.Reservation) *Response {
	resp := &Response{
		VenueID: req.VenueID,
		From:    req.From,
		To:      req.To,
		Days:    make([]Day, days),
	}

	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := req.From.AddDate(0, 0, i)
		resp.Days[i] = Day{Date: date, Windows: []Window{}}
		index[date.Format(domain.DateFormat)] = i
	}

	for _, r := range reservations {
		if !r.IsSlotHolding() {
			continue
		}
		i, ok := index[r.Date.Format(domain.DateFormat)]
		if !ok {
			continue
		}
		resp.Days[i].Windows = append(resp.Days[i].Windows, Window{
			ReservationID: r.ID,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
		})
	}

	for i := range resp.Days {
		windows := resp.Days[i].Windows
		sort.Slice(windows, func(a, b int) bool {
			if windows[a].StartTime != windows[b].StartTime {
				return windows[a].StartTime.IsBefore(windows[b].StartTime)
			}
			return windows[a].ReservationID < windows[b].ReservationID
		})
	}

	return resp
}

func rangeKey(req *Request) string {
	return req.From.Format(domain.DateFormat) + ":" + req.To.Format(domain.DateFormat)
}
