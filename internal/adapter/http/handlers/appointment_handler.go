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
	errInvalidAppointmentPayload = pkg.NewDomainErrorSimple("INVALID_APPOINTMENT_INPUT", "Invalid appointment payload", http.StatusBadRequest)
)

type AppointmentHandler struct {
	usecase usecase.IAppointmentUseCase
}

func NewAppointmentHandler(uc usecase.IAppointmentUseCase) *AppointmentHandler {
	return &AppointmentHandler{usecase: uc}
}

// CreateAppointment godoc
// @Summary  Schedule an appointment
// @Tags     appointments
// @Accept   json
// @Produce  json
// @Param    appointment body request.AppointmentRequest true "Appointment"
// @Success  201 {object} response.AppointmentResponse
// @Failure  400 {object} pkg.HTTPError
// @Security Bearer
// @Router   /appointments [post]
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var payload request.AppointmentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, errInvalidAppointmentPayload)
		return
	}

	appointment, err := h.usecase.Create(c.Request.Context(), payload.ToInput())
	if err != nil {
		abortWithError(c, mapAppointmentError(err))
		return
	}
	c.JSON(http.StatusCreated, response.FromAppointment(appointment))
}

// ListAppointments godoc
// @Summary  List appointments
// @Tags     appointments
// @Produce  json
// @Success  200 {array} response.AppointmentResponse
// @Security Bearer
// @Router   /appointments [get]
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	appointments, err := h.usecase.List(c.Request.Context())
	if err != nil {
		abortWithError(c, mapAppointmentError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromAppointments(appointments))
}

// GetAppointment godoc
// @Summary  Get an appointment
// @Tags     appointments
// @Produce  json
// @Param    id path string true "Appointment ID"
// @Success  200 {object} response.AppointmentResponse
// @Failure  404 {object} pkg.HTTPError
// @Security Bearer
// @Router   /appointments/{id} [get]
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	appointment, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, mapAppointmentError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromAppointment(appointment))
}

// UpdateAppointment godoc
// @Summary  Update an appointment
// @Tags     appointments
// @Accept   json
// @Produce  json
// @Param    id          path string                     true "Appointment ID"
// @Param    appointment body request.AppointmentRequest true "Appointment"
// @Success  200 {object} response.AppointmentResponse
// @Failure  422 {object} pkg.HTTPError
// @Security Bearer
// @Router   /appointments/{id} [put]
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	var payload request.AppointmentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, errInvalidAppointmentPayload)
		return
	}

	appointment, err := h.usecase.Update(c.Request.Context(), c.Param("id"), payload.ToInput())
	if err != nil {
		abortWithError(c, mapAppointmentError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromAppointment(appointment))
}

// DeleteAppointment godoc
// @Summary  Delete an appointment
// @Tags     appointments
// @Param    id path string true "Appointment ID"
// @Success  204
// @Security Bearer
// @Router   /appointments/{id} [delete]
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	if err := h.usecase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, mapAppointmentError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func mapAppointmentError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidAppointmentID),
		errors.Is(err, usecase.ErrAppointmentTitleRequired),
		errors.Is(err, usecase.ErrAppointmentDateRequired),
		errors.Is(err, usecase.ErrAppointmentClientMissing),
		errors.Is(err, usecase.ErrUnknownClient):
		return pkg.NewDomainError("INVALID_REQUEST", err.Error(), err, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		return pkg.NewDomainErrorSimple("APPOINTMENT_NOT_FOUND", "Appointment not found", http.StatusNotFound)
	default:
		return mapCommonError(err)
	}
}
