package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	response "bizdesk/internal/adapter/http/dto/response"
	"bizdesk/internal/adapter/http/handlers/mocks"
	"bizdesk/internal/domain/aggregation"
	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

func TestDashboardHandler_GetDashboard(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("month query", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIDashboardUseCase(ctrl)
		r := gin.New()
		r.GET("/v1/dashboard", NewDashboardHandler(uc).GetDashboard)

		start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		uc.EXPECT().Summary(gomock.Any(), "2026-02").Return(usecase.Dashboard{
			Window:  aggregation.Window{Start: start, End: start.AddDate(0, 1, 0)},
			Summary: aggregation.Summary{Received: decimal.RequireFromString("80"), ReceivedCount: 1},
			RecentActivity: []entities.Payment{
				{ID: "p-1", Value: decimal.RequireFromString("80"), Status: entities.PaymentStatusPaid},
			},
		}, nil)

		w := serve(r, http.MethodGet, "/v1/dashboard?month=2026-02", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body response.DashboardResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Received != "80.00" || body.Pending != "0.00" || len(body.RecentActivity) != 1 {
			t.Fatalf("unexpected body %+v", body)
		}
	})

	t.Run("invalid month", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIDashboardUseCase(ctrl)
		r := gin.New()
		r.GET("/v1/dashboard", NewDashboardHandler(uc).GetDashboard)

		uc.EXPECT().Summary(gomock.Any(), "2026-13").Return(usecase.Dashboard{}, fmt.Errorf("%w: month", aggregation.ErrInvalidWindow))

		w := serve(r, http.MethodGet, "/v1/dashboard?month=2026-13", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestPing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/v1/ping", Ping)

	w := serve(r, http.MethodGet, "/v1/ping", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
