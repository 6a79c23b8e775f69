package usecase

import (
	"context"
	"errors"
	"testing"

	"bizdesk/internal/domain/entities"
	mock_interfaces "bizdesk/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

func TestClientUseCase(t *testing.T) {
	t.Run("required fields", func(t *testing.T) {
		uc := NewClientUseCase(nil)
		cases := map[error]ClientInput{
			ErrClientNameRequired:        {Phone: "1", ServiceType: "x"},
			ErrClientPhoneRequired:       {Name: "Ana", ServiceType: "x"},
			ErrClientServiceTypeRequired: {Name: "Ana", Phone: "1"},
		}
		for want, in := range cases {
			if _, err := uc.Create(acctCtx(), in); !errors.Is(err, want) {
				t.Fatalf("expected %v, got %v", want, err)
			}
		}
	})

	t.Run("blank notes are dropped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIClientRepository(ctrl)
		uc := NewClientUseCase(repo)

		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c entities.Client) (entities.Client, error) {
			if c.Notes != nil {
				t.Fatalf("expected nil notes, got %q", *c.Notes)
			}
			return c, nil
		})
		if _, err := uc.Create(acctCtx(), ClientInput{Name: "Ana", Phone: "1", ServiceType: "x", Notes: strPtr("  ")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("delete referenced client", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIClientRepository(ctrl)
		uc := NewClientUseCase(repo)

		repo.EXPECT().GetByID(gomock.Any(), "c-1").Return(entities.Client{ID: "c-1"}, nil)
		repo.EXPECT().Delete(gomock.Any(), "c-1").Return(entities.ErrReferentialConflict)

		if err := uc.Delete(acctCtx(), "c-1"); !errors.Is(err, ErrClientInUse) {
			t.Fatalf("expected ErrClientInUse, got %v", err)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIClientRepository(ctrl)
		uc := NewClientUseCase(repo)

		repo.EXPECT().GetByID(gomock.Any(), "c-1").Return(entities.Client{}, nil)
		if _, err := uc.GetByID(acctCtx(), "c-1"); !errors.Is(err, ErrClientNotFound) {
			t.Fatalf("expected ErrClientNotFound, got %v", err)
		}
	})
}
