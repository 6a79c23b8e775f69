package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	response "bizdesk/internal/adapter/http/dto/response"
	"bizdesk/internal/adapter/http/handlers/mocks"
	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func newPaymentRouter(h *PaymentHandler) *gin.Engine {
	r := gin.New()
	r.POST("/v1/payments", h.CreatePayment)
	r.GET("/v1/payments", h.ListPayments)
	r.GET("/v1/payments/:id", h.GetPayment)
	r.PUT("/v1/payments/:id", h.UpdatePayment)
	r.DELETE("/v1/payments/:id", h.DeletePayment)
	r.PATCH("/v1/payments/:id/paid", h.MarkAsPaid)
	r.PATCH("/v1/payments/:id/pending", h.MarkAsPending)
	r.POST("/v1/payments/:id/pix", h.ChargePix)
	return r
}

func TestPaymentHandler_CreatePayment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("quote already linked", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(NewPaymentHandler(uc))

		uc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Payment{}, usecase.ErrQuoteAlreadyLinked)

		w := serve(r, http.MethodPost, "/v1/payments", `{"quote_id":"q-1","client_name":"Ana","service":"Repair","value":"10"}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
		if body := decodeError(t, w); body.Code != "QUOTE_ALREADY_LINKED" {
			t.Fatalf("unexpected code %q", body.Code)
		}
	})

	t.Run("paid without method", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(NewPaymentHandler(uc))

		uc.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(entities.Payment{}, fmt.Errorf("%w: paid requires a payment method", entities.ErrInvalidTransition))

		w := serve(r, http.MethodPost, "/v1/payments", `{"client_name":"Ana","service":"Repair","value":"10","status":"paid"}`)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", w.Code)
		}
	})

	t.Run("created", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(NewPaymentHandler(uc))

		cash := entities.PaymentMethodCash
		uc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Payment{ID: "p-1", Status: entities.PaymentStatusPaid, Method: &cash}, nil)

		w := serve(r, http.MethodPost, "/v1/payments", `{"client_name":"Ana","service":"Repair","value":"10","status":"paid","payment_method":"cash"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
	})
}

func TestPaymentHandler_MarkAsPaid(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("forwards method", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(NewPaymentHandler(uc))

		pix := entities.PaymentMethodPix
		uc.EXPECT().MarkAsPaid(gomock.Any(), "p-1", &pix).Return(entities.Payment{ID: "p-1", Status: entities.PaymentStatusPaid, Method: &pix}, nil)

		w := serve(r, http.MethodPatch, "/v1/payments/p-1/paid", `{"payment_method":"pix"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var body response.PaymentResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.PaymentMethod == nil || *body.PaymentMethod != "pix" {
			t.Fatalf("expected pix, got %v", body.PaymentMethod)
		}
	})

	t.Run("missing method", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(NewPaymentHandler(uc))

		uc.EXPECT().
			MarkAsPaid(gomock.Any(), "p-1", gomock.Nil()).
			Return(entities.Payment{}, fmt.Errorf("%w: payment method required", entities.ErrInvalidTransition))

		w := serve(r, http.MethodPatch, "/v1/payments/p-1/paid", `{}`)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", w.Code)
		}
	})
}

func TestPaymentHandler_MarkAsPending(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("empty body keeps paid_at", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(NewPaymentHandler(uc))

		uc.EXPECT().MarkAsPending(gomock.Any(), "p-1", false).Return(entities.Payment{ID: "p-1", Status: entities.PaymentStatusPending}, nil)

		w := serve(r, http.MethodPatch, "/v1/payments/p-1/pending", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("clear paid_at", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(NewPaymentHandler(uc))

		uc.EXPECT().MarkAsPending(gomock.Any(), "p-1", true).Return(entities.Payment{ID: "p-1", Status: entities.PaymentStatusPending}, nil)

		w := serve(r, http.MethodPatch, "/v1/payments/p-1/pending", `{"clear_paid_at":true}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(NewPaymentHandler(uc))

		w := serve(r, http.MethodPatch, "/v1/payments/p-1/pending", `{"clear_paid_at":`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestPaymentHandler_ChargePix(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not configured", usecase.ErrPaymentGatewayNotConfigured, http.StatusServiceUnavailable},
		{"already paid", usecase.ErrPaymentAlreadyPaid, http.StatusConflict},
		{"gateway failed", fmt.Errorf("%w: %w", usecase.ErrPaymentGatewayFailed, errors.New("timeout")), http.StatusBadGateway},
		{"not found", usecase.ErrPaymentNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			uc := mocks.NewMockIPaymentUseCase(ctrl)
			r := newPaymentRouter(NewPaymentHandler(uc))

			uc.EXPECT().ChargePix(gomock.Any(), "p-1").Return(usecase.PixCharge{}, tt.err)

			w := serve(r, http.MethodPost, "/v1/payments/p-1/pix", "")
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
		})
	}

	t.Run("approved", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(NewPaymentHandler(uc))

		uc.EXPECT().ChargePix(gomock.Any(), "p-1").Return(usecase.PixCharge{
			Payment:           entities.Payment{ID: "p-1", Status: entities.PaymentStatusPaid},
			ProviderPaymentID: "987",
			ProviderStatus:    "approved",
			ProviderResponse:  json.RawMessage(`{"status":"approved"}`),
		}, nil)

		w := serve(r, http.MethodPost, "/v1/payments/p-1/pix", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body response.PixChargeResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.ProviderPaymentID != "987" || body.Payment.Status != "paid" {
			t.Fatalf("unexpected body %+v", body)
		}
	})
}
