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
	errInvalidClientPayload = pkg.NewDomainErrorSimple("INVALID_CLIENT_INPUT", "Invalid client payload", http.StatusBadRequest)
)

type ClientHandler struct {
	usecase usecase.IClientUseCase
}

func NewClientHandler(uc usecase.IClientUseCase) *ClientHandler {
	return &ClientHandler{usecase: uc}
}

// CreateClient godoc
// @Summary  Create a client
// @Tags     clients
// @Accept   json
// @Produce  json
// @Param    client body request.ClientRequest true "Client"
// @Success  201 {object} response.ClientResponse
// @Failure  400 {object} pkg.HTTPError
// @Security Bearer
// @Router   /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var payload request.ClientRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, errInvalidClientPayload)
		return
	}

	client, err := h.usecase.Create(c.Request.Context(), payload.ToInput())
	if err != nil {
		abortWithError(c, mapClientError(err))
		return
	}

	c.JSON(http.StatusCreated, response.FromClient(client))
}

// ListClients godoc
// @Summary  List clients
// @Tags     clients
// @Produce  json
// @Success  200 {array} response.ClientResponse
// @Security Bearer
// @Router   /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	clients, err := h.usecase.List(c.Request.Context())
	if err != nil {
		abortWithError(c, mapClientError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromClients(clients))
}

// GetClient godoc
// @Summary  Get a client
// @Tags     clients
// @Produce  json
// @Param    id path string true "Client ID"
// @Success  200 {object} response.ClientResponse
// @Failure  404 {object} pkg.HTTPError
// @Security Bearer
// @Router   /clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	client, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, mapClientError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromClient(client))
}

// UpdateClient godoc
// @Summary  Update a client
// @Description Name snapshots already copied into quotes and payments are kept.
// @Tags     clients
// @Accept   json
// @Produce  json
// @Param    id     path string                true "Client ID"
// @Param    client body request.ClientRequest true "Client"
// @Success  200 {object} response.ClientResponse
// @Failure  400 {object} pkg.HTTPError
// @Failure  404 {object} pkg.HTTPError
// @Security Bearer
// @Router   /clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var payload request.ClientRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, errInvalidClientPayload)
		return
	}

	client, err := h.usecase.Update(c.Request.Context(), c.Param("id"), payload.ToInput())
	if err != nil {
		abortWithError(c, mapClientError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromClient(client))
}

// DeleteClient godoc
// @Summary  Delete a client
// @Tags     clients
// @Param    id path string true "Client ID"
// @Success  204
// @Failure  409 {object} pkg.HTTPError
// @Security Bearer
// @Router   /clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	if err := h.usecase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, mapClientError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func mapClientError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidClientID),
		errors.Is(err, usecase.ErrClientNameRequired),
		errors.Is(err, usecase.ErrClientPhoneRequired),
		errors.Is(err, usecase.ErrClientServiceTypeRequired):
		return pkg.NewDomainError("INVALID_REQUEST", err.Error(), err, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrClientNotFound):
		return pkg.NewDomainErrorSimple("CLIENT_NOT_FOUND", "Client not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrClientInUse):
		return pkg.NewDomainError("CLIENT_IN_USE", "Client is still referenced by quotes, payments or appointments", err, http.StatusConflict)
	default:
		return mapCommonError(err)
	}
}
