package handlers

import (
	"net/http"
	"testing"
	"time"

	"bizdesk/internal/adapter/http/handlers/mocks"
	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func newAppointmentRouter(h *AppointmentHandler) *gin.Engine {
	r := gin.New()
	r.POST("/v1/appointments", h.CreateAppointment)
	r.GET("/v1/appointments", h.ListAppointments)
	r.GET("/v1/appointments/:id", h.GetAppointment)
	r.PUT("/v1/appointments/:id", h.UpdateAppointment)
	r.DELETE("/v1/appointments/:id", h.DeleteAppointment)
	return r
}

func TestAppointmentHandler_CreateAppointment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("bad date", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIAppointmentUseCase(ctrl)
		r := newAppointmentRouter(NewAppointmentHandler(uc))

		w := serve(r, http.MethodPost, "/v1/appointments", `{"title":"Visit","date":"tomorrow"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("created", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIAppointmentUseCase(ctrl)
		r := newAppointmentRouter(NewAppointmentHandler(uc))

		date := time.Date(2026, 4, 10, 13, 0, 0, 0, time.UTC)
		uc.EXPECT().
			Create(gomock.Any(), usecase.AppointmentInput{Title: "Visit", ClientName: "Ana", Date: date}).
			Return(entities.Appointment{ID: "a-1", Title: "Visit", Date: date, Status: entities.AppointmentStatusScheduled}, nil)

		w := serve(r, http.MethodPost, "/v1/appointments", `{"title":"Visit","client_name":"Ana","date":"2026-04-10T13:00:00Z"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("missing client", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIAppointmentUseCase(ctrl)
		r := newAppointmentRouter(NewAppointmentHandler(uc))

		uc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Appointment{}, usecase.ErrAppointmentClientMissing)

		w := serve(r, http.MethodPost, "/v1/appointments", `{"title":"Visit","date":"2026-04-10T13:00:00Z"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestAppointmentHandler_GetAppointment_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIAppointmentUseCase(ctrl)
	r := newAppointmentRouter(NewAppointmentHandler(uc))

	uc.EXPECT().GetByID(gomock.Any(), "a-1").Return(entities.Appointment{}, usecase.ErrAppointmentNotFound)

	w := serve(r, http.MethodGet, "/v1/appointments/a-1", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Code != "APPOINTMENT_NOT_FOUND" {
		t.Fatalf("unexpected code %q", body.Code)
	}
}
