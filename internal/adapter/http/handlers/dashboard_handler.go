package handlers

import (
	"errors"
	"net/http"

	response "bizdesk/internal/adapter/http/dto/response"
	"bizdesk/internal/domain/aggregation"
	"bizdesk/internal/usecase"
	"bizdesk/pkg"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	usecase usecase.IDashboardUseCase
}

func NewDashboardHandler(uc usecase.IDashboardUseCase) *DashboardHandler {
	return &DashboardHandler{usecase: uc}
}

// GetDashboard godoc
// @Summary  Monthly financial summary
// @Tags     dashboard
// @Produce  json
// @Param    month query string false "Month as YYYY-MM, defaults to the current month"
// @Success  200 {object} response.DashboardResponse
// @Failure  400 {object} pkg.HTTPError
// @Security Bearer
// @Router   /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.usecase.Summary(c.Request.Context(), c.Query("month"))
	if err != nil {
		abortWithError(c, mapDashboardError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromDashboard(dashboard))
}

func mapDashboardError(err error) *pkg.AppError {
	if errors.Is(err, aggregation.ErrInvalidWindow) {
		return pkg.NewDomainError("INVALID_MONTH", "month must be formatted as YYYY-MM", err, http.StatusBadRequest)
	}
	return mapCommonError(err)
}
