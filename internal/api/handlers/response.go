package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
)

const (
	msgInternalError = "внутренняя ошибка сервера"
	msgSlotConflict  = "выбранное время уже занято"

	maxBodyBytes = 1 << 20
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SlotConflictResponse тело ответа 409 при конфликте слота
type SlotConflictResponse struct {
	Code        int     `json:"code"`
	Message     string  `json:"message"`
	VenueID     int64   `json:"venueId"`
	Date        string  `json:"date"`
	BlockingIDs []int64 `json:"blockingIds,omitempty"`
}

// DecodeJSON декодирует тело запроса, отклоняя неизвестные поля
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// RespondJSON пишет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Code: status, Message: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondConflict(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusConflict, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// RespondSlotConflict отвечает 409 с датой первого конфликта и занявшими слот бронированиями
func RespondSlotConflict(w http.ResponseWriter, err error) {
	var conflict *domain.SlotConflictError
	if !errors.As(err, &conflict) {
		RespondConflict(w, msgSlotConflict)
		return
	}
	RespondJSON(w, http.StatusConflict, SlotConflictResponse{
		Code:        http.StatusConflict,
		Message:     msgSlotConflict,
		VenueID:     conflict.VenueID,
		Date:        conflict.Date.Format(domain.DateFormat),
		BlockingIDs: conflict.BlockingIDs,
	})
}

// FormatTime форматирует время ответа
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
