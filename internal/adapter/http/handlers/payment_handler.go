package handlers

import (
	"errors"
	"io"
	"net/http"

	request "bizdesk/internal/adapter/http/dto/request"
	response "bizdesk/internal/adapter/http/dto/response"
	"bizdesk/internal/usecase"
	"bizdesk/pkg"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidPaymentPayload = pkg.NewDomainErrorSimple("INVALID_PAYMENT_INPUT", "Invalid payment payload", http.StatusBadRequest)
)

type PaymentHandler struct {
	usecase usecase.IPaymentUseCase
}

func NewPaymentHandler(uc usecase.IPaymentUseCase) *PaymentHandler {
	return &PaymentHandler{usecase: uc}
}

// CreatePayment godoc
// @Summary  Create a payment
// @Description quote_id links the payment to an existing quote that has no payment yet.
// @Tags     payments
// @Accept   json
// @Produce  json
// @Param    payment body request.PaymentRequest true "Payment"
// @Success  201 {object} response.PaymentResponse
// @Failure  400 {object} pkg.HTTPError
// @Failure  409 {object} pkg.HTTPError
// @Security Bearer
// @Router   /payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	in, ok := bindPayment(c)
	if !ok {
		return
	}

	payment, err := h.usecase.Create(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, mapPaymentError(err))
		return
	}
	c.JSON(http.StatusCreated, response.FromPayment(payment))
}

// ListPayments godoc
// @Summary  List payments
// @Tags     payments
// @Produce  json
// @Success  200 {array} response.PaymentResponse
// @Security Bearer
// @Router   /payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	payments, err := h.usecase.List(c.Request.Context())
	if err != nil {
		abortWithError(c, mapPaymentError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromPayments(payments))
}

// GetPayment godoc
// @Summary  Get a payment
// @Tags     payments
// @Produce  json
// @Param    id path string true "Payment ID"
// @Success  200 {object} response.PaymentResponse
// @Failure  404 {object} pkg.HTTPError
// @Security Bearer
// @Router   /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, mapPaymentError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromPayment(payment))
}

// UpdatePayment godoc
// @Summary  Update a payment
// @Tags     payments
// @Accept   json
// @Produce  json
// @Param    id      path string                 true "Payment ID"
// @Param    payment body request.PaymentRequest true "Payment"
// @Success  200 {object} response.PaymentResponse
// @Failure  422 {object} pkg.HTTPError
// @Security Bearer
// @Router   /payments/{id} [put]
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	in, ok := bindPayment(c)
	if !ok {
		return
	}

	payment, err := h.usecase.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		abortWithError(c, mapPaymentError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromPayment(payment))
}

// DeletePayment godoc
// @Summary  Delete a payment
// @Tags     payments
// @Param    id path string true "Payment ID"
// @Success  204
// @Security Bearer
// @Router   /payments/{id} [delete]
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	if err := h.usecase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, mapPaymentError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAsPaid godoc
// @Summary  Mark a payment as paid
// @Tags     payments
// @Accept   json
// @Produce  json
// @Param    id   path string                  true "Payment ID"
// @Param    body body request.MarkPaidRequest true "Payment method"
// @Success  200 {object} response.PaymentResponse
// @Failure  422 {object} pkg.HTTPError
// @Security Bearer
// @Router   /payments/{id}/paid [patch]
func (h *PaymentHandler) MarkAsPaid(c *gin.Context) {
	var payload request.MarkPaidRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, errInvalidPaymentPayload)
		return
	}

	payment, err := h.usecase.MarkAsPaid(c.Request.Context(), c.Param("id"), payload.Method())
	if err != nil {
		abortWithError(c, mapPaymentError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromPayment(payment))
}

// MarkAsPending godoc
// @Summary  Mark a payment as pending
// @Description paid_at and payment_method are kept unless clear_paid_at is set.
// @Tags     payments
// @Accept   json
// @Produce  json
// @Param    id   path string                     true  "Payment ID"
// @Param    body body request.MarkPendingRequest false "Options"
// @Success  200 {object} response.PaymentResponse
// @Security Bearer
// @Router   /payments/{id}/pending [patch]
func (h *PaymentHandler) MarkAsPending(c *gin.Context) {
	var payload request.MarkPendingRequest
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, errInvalidPaymentPayload)
		return
	}

	payment, err := h.usecase.MarkAsPending(c.Request.Context(), c.Param("id"), payload.ClearPaidAt)
	if err != nil {
		abortWithError(c, mapPaymentError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromPayment(payment))
}

// ChargePix godoc
// @Summary  Charge a payment through PIX
// @Tags     payments
// @Produce  json
// @Param    id path string true "Payment ID"
// @Success  200 {object} response.PixChargeResponse
// @Failure  409 {object} pkg.HTTPError
// @Failure  502 {object} pkg.HTTPError
// @Security Bearer
// @Router   /payments/{id}/pix [post]
func (h *PaymentHandler) ChargePix(c *gin.Context) {
	charge, err := h.usecase.ChargePix(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, mapPaymentError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromPixCharge(charge))
}

func bindPayment(c *gin.Context) (usecase.PaymentInput, bool) {
	var payload request.PaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, errInvalidPaymentPayload)
		return usecase.PaymentInput{}, false
	}
	in, err := payload.ToInput()
	if err != nil {
		abortWithError(c, errInvalidValue)
		return usecase.PaymentInput{}, false
	}
	return in, true
}

func mapPaymentError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidPaymentID),
		errors.Is(err, usecase.ErrInvalidPaymentService),
		errors.Is(err, usecase.ErrPaymentClientRequired),
		errors.Is(err, usecase.ErrUnknownClient):
		return pkg.NewDomainError("INVALID_REQUEST", err.Error(), err, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPaymentNotFound):
		return pkg.NewDomainErrorSimple("PAYMENT_NOT_FOUND", "Payment not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrQuoteNotFound):
		return pkg.NewDomainErrorSimple("QUOTE_NOT_FOUND", "Quote not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrQuoteAlreadyLinked):
		return pkg.NewDomainErrorSimple("QUOTE_ALREADY_LINKED", "Quote already has a payment", http.StatusConflict)
	case errors.Is(err, usecase.ErrPaymentAlreadyPaid):
		return pkg.NewDomainErrorSimple("PAYMENT_ALREADY_PAID", "Payment is already paid", http.StatusConflict)
	case errors.Is(err, usecase.ErrPaymentGatewayNotConfigured):
		return pkg.NewDomainErrorSimple("PAYMENT_GATEWAY_NOT_CONFIGURED", "Payment gateway is not configured", http.StatusServiceUnavailable)
	case errors.Is(err, usecase.ErrPaymentGatewayFailed):
		return pkg.NewDomainError("PAYMENT_GATEWAY_ERROR", "Payment gateway request failed", err, http.StatusBadGateway)
	default:
		return mapCommonError(err)
	}
}
