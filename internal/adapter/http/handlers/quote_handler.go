package handlers

import (
	"errors"
	"net/http"

	request "bizdesk/internal/adapter/http/dto/request"
	response "bizdesk/internal/adapter/http/dto/response"
	"bizdesk/internal/usecase"
	"bizdesk/pkg"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidQuotePayload = pkg.NewDomainErrorSimple("INVALID_QUOTE_INPUT", "Invalid quote payload", http.StatusBadRequest)
)

// QuoteHandler serves quotes. Saving a quote as approved also creates or
// refreshes its payment before the response is written.
type QuoteHandler struct {
	usecase usecase.IQuoteUseCase
}

func NewQuoteHandler(uc usecase.IQuoteUseCase) *QuoteHandler {
	return &QuoteHandler{usecase: uc}
}

// CreateQuote godoc
// @Summary  Create a quote
// @Tags     quotes
// @Accept   json
// @Produce  json
// @Param    quote body request.QuoteRequest true "Quote"
// @Success  201 {object} response.QuoteResponse
// @Failure  400 {object} pkg.HTTPError
// @Failure  422 {object} pkg.HTTPError
// @Security Bearer
// @Router   /quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	in, ok := bindQuote(c)
	if !ok {
		return
	}

	quote, err := h.usecase.Create(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, mapQuoteError(err))
		return
	}
	c.JSON(http.StatusCreated, response.FromQuote(quote))
}

// ListQuotes godoc
// @Summary  List quotes
// @Tags     quotes
// @Produce  json
// @Success  200 {array} response.QuoteResponse
// @Security Bearer
// @Router   /quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	quotes, err := h.usecase.List(c.Request.Context())
	if err != nil {
		abortWithError(c, mapQuoteError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromQuotes(quotes))
}

// GetQuote godoc
// @Summary  Get a quote
// @Tags     quotes
// @Produce  json
// @Param    id path string true "Quote ID"
// @Success  200 {object} response.QuoteResponse
// @Failure  404 {object} pkg.HTTPError
// @Security Bearer
// @Router   /quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	quote, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, mapQuoteError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromQuote(quote))
}

// UpdateQuote godoc
// @Summary  Update a quote
// @Description Approving a quote creates its payment; edits to an approved quote are copied to it.
// @Tags     quotes
// @Accept   json
// @Produce  json
// @Param    id    path string               true "Quote ID"
// @Param    quote body request.QuoteRequest true "Quote"
// @Success  200 {object} response.QuoteResponse
// @Failure  422 {object} pkg.HTTPError
// @Failure  503 {object} pkg.HTTPError
// @Security Bearer
// @Router   /quotes/{id} [put]
func (h *QuoteHandler) UpdateQuote(c *gin.Context) {
	in, ok := bindQuote(c)
	if !ok {
		return
	}

	quote, err := h.usecase.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		abortWithError(c, mapQuoteError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromQuote(quote))
}

// DeleteQuote godoc
// @Summary  Delete a quote
// @Description Payments derived from the quote are kept and unlinked.
// @Tags     quotes
// @Param    id path string true "Quote ID"
// @Success  204
// @Security Bearer
// @Router   /quotes/{id} [delete]
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	if err := h.usecase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, mapQuoteError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func bindQuote(c *gin.Context) (usecase.QuoteInput, bool) {
	var payload request.QuoteRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, errInvalidQuotePayload)
		return usecase.QuoteInput{}, false
	}
	in, err := payload.ToInput()
	if err != nil {
		abortWithError(c, errInvalidValue)
		return usecase.QuoteInput{}, false
	}
	return in, true
}

func mapQuoteError(err error) *pkg.AppError {
	switch {
	// The quote itself was stored; only its payment is missing.
	case errors.Is(err, usecase.ErrQuotePaymentNotSaved):
		return pkg.NewDomainError("QUOTE_PAYMENT_NOT_SAVED", "Quote saved but its payment could not be created, retry the update", err, http.StatusServiceUnavailable)
	case errors.Is(err, usecase.ErrInvalidQuoteID),
		errors.Is(err, usecase.ErrInvalidQuoteService),
		errors.Is(err, usecase.ErrQuoteClientRequired),
		errors.Is(err, usecase.ErrUnknownClient):
		return pkg.NewDomainError("INVALID_REQUEST", err.Error(), err, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrQuoteNotFound):
		return pkg.NewDomainErrorSimple("QUOTE_NOT_FOUND", "Quote not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrLinkageConflict):
		return pkg.NewDomainError("LINKAGE_CONFLICT", "Another payment was linked to this quote, retry", err, http.StatusConflict)
	default:
		return mapCommonError(err)
	}
}
