package get_availability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VenueBooking/internal/api/middleware"
	getAvailability "github.com/m04kA/SMC-VenueBooking/internal/usecase/get_availability"
	"github.com/m04kA/SMC-VenueBooking/pkg/logger"
)

type stubUseCase struct {
	gotReq *getAvailability.Request
	err    error
}

func (s *stubUseCase) Execute(_ context.Context, req *getAvailability.Request) (*getAvailability.Response, error) {
	s.gotReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &getAvailability.Response{
		VenueID: req.VenueID,
		From:    req.From,
		To:      req.To,
		Days: []getAvailability.Day{
			{
				Date: req.From,
				Windows: []getAvailability.Window{
					{ReservationID: 3, StartTime: "10:00", EndTime: "12:00"},
				},
			},
		},
	}, nil
}

func serve(uc *stubUseCase, path string, userID string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/venues/{venueId}/availability", NewHandler(uc, logger.Nop()).Handle).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_SingleDateWithoutUser(t *testing.T) {
	uc := &stubUseCase{}
	rec := serve(uc, "/venues/7/availability?from=2024-06-10", "")

	require.Equal(t, http.StatusOK, rec.Code)
	june10 := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, int64(7), uc.gotReq.VenueID)
	assert.True(t, uc.gotReq.From.Equal(june10))
	assert.True(t, uc.gotReq.To.Equal(june10))

	var body AvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Days, 1)
	assert.Equal(t, "2024-06-10", body.Days[0].Date)
	assert.Equal(t, []WindowResponse{{ReservationID: 3, StartTime: "10:00", EndTime: "12:00"}}, body.Days[0].Occupied)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
	}{
		{name: "bad venue id", path: "/venues/abc/availability?from=2024-06-10", status: http.StatusBadRequest},
		{name: "missing from", path: "/venues/7/availability", status: http.StatusBadRequest},
		{name: "bad to", path: "/venues/7/availability?from=2024-06-10&to=10.06.2024", status: http.StatusBadRequest},
		{name: "range", path: "/venues/7/availability?from=2024-06-10&to=2024-06-01", err: getAvailability.ErrInvalidRange, status: http.StatusBadRequest},
		{name: "too long", path: "/venues/7/availability?from=2024-06-01&to=2025-06-01", err: getAvailability.ErrRangeTooLong, status: http.StatusBadRequest},
		{name: "venue not found", path: "/venues/7/availability?from=2024-06-10", err: getAvailability.ErrVenueNotFound, status: http.StatusNotFound},
		{name: "internal", path: "/venues/7/availability?from=2024-06-10", err: getAvailability.ErrInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&stubUseCase{err: tt.err}, tt.path, "100")
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
