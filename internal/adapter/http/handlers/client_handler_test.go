package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"bizdesk/internal/adapter/http/handlers/mocks"
	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func newClientRouter(h *ClientHandler) *gin.Engine {
	r := gin.New()
	r.POST("/v1/clients", h.CreateClient)
	r.GET("/v1/clients", h.ListClients)
	r.GET("/v1/clients/:id", h.GetClient)
	r.PUT("/v1/clients/:id", h.UpdateClient)
	r.DELETE("/v1/clients/:id", h.DeleteClient)
	return r
}

func TestClientHandler_CreateClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("invalid json", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIClientUseCase(ctrl)
		r := newClientRouter(NewClientHandler(uc))

		w := serve(r, http.MethodPost, "/v1/clients", "{")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if body := decodeError(t, w); body.Code != "INVALID_CLIENT_INPUT" {
			t.Fatalf("unexpected code %q", body.Code)
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIClientUseCase(ctrl)
		r := newClientRouter(NewClientHandler(uc))

		w := serve(r, http.MethodPost, "/v1/clients", `{"name":"Ana","phone":"11"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIClientUseCase(ctrl)
		r := newClientRouter(NewClientHandler(uc))

		uc.EXPECT().
			Create(gomock.Any(), usecase.ClientInput{Name: "Ana", Phone: "11", ServiceType: "plumbing"}).
			Return(entities.Client{ID: "c-1", Name: "Ana", Phone: "11", ServiceType: "plumbing"}, nil)

		w := serve(r, http.MethodPost, "/v1/clients", `{"name":"Ana","phone":"11","service_type":"plumbing"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIClientUseCase(ctrl)
		r := newClientRouter(NewClientHandler(uc))

		uc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Client{}, entities.ErrNotAuthenticated)

		w := serve(r, http.MethodPost, "/v1/clients", `{"name":"Ana","phone":"11","service_type":"plumbing"}`)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}

func TestClientHandler_DeleteClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "deleted", status: http.StatusNoContent},
		{name: "in use", err: usecase.ErrClientInUse, status: http.StatusConflict, code: "CLIENT_IN_USE"},
		{name: "not found", err: usecase.ErrClientNotFound, status: http.StatusNotFound, code: "CLIENT_NOT_FOUND"},
		{name: "store down", err: fmt.Errorf("delete: %w", entities.ErrStoreUnavailable), status: http.StatusServiceUnavailable, code: "STORE_UNAVAILABLE"},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			uc := mocks.NewMockIClientUseCase(ctrl)
			r := newClientRouter(NewClientHandler(uc))

			uc.EXPECT().Delete(gomock.Any(), "c-1").Return(tt.err)

			w := serve(r, http.MethodDelete, "/v1/clients/c-1", "")
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
			if tt.code != "" {
				if body := decodeError(t, w); body.Code != tt.code {
					t.Fatalf("expected code %q, got %q", tt.code, body.Code)
				}
			}
		})
	}
}

func TestClientHandler_ListAndGet(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("list", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIClientUseCase(ctrl)
		r := newClientRouter(NewClientHandler(uc))

		uc.EXPECT().List(gomock.Any()).Return([]entities.Client{{ID: "c-1"}, {ID: "c-2"}}, nil)

		w := serve(r, http.MethodGet, "/v1/clients", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("get passes path id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIClientUseCase(ctrl)
		r := newClientRouter(NewClientHandler(uc))

		uc.EXPECT().GetByID(gomock.Any(), "c-9").DoAndReturn(func(_ context.Context, id string) (entities.Client, error) {
			return entities.Client{ID: id}, nil
		})

		w := serve(r, http.MethodGet, "/v1/clients/c-9", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("update validation error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIClientUseCase(ctrl)
		r := newClientRouter(NewClientHandler(uc))

		uc.EXPECT().Update(gomock.Any(), "c-1", gomock.Any()).Return(entities.Client{}, usecase.ErrClientNameRequired)

		w := serve(r, http.MethodPut, "/v1/clients/c-1", `{"name":" ","phone":"11","service_type":"x"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}
