package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase/interfaces"
)

var (
	ErrClientNotFound            = errors.New("client not found")
	ErrInvalidClientID           = errors.New("invalid client id")
	ErrClientNameRequired        = errors.New("client name is required")
	ErrClientPhoneRequired       = errors.New("client phone is required")
	ErrClientServiceTypeRequired = errors.New("client service type is required")
	ErrClientInUse               = fmt.Errorf("%w: client is referenced by quotes, payments or appointments", entities.ErrReferentialConflict)
)

type ClientInput struct {
	Name        string
	Phone       string
	ServiceType string
	Notes       *string
}

// IClientUseCase manages clients. Editing or deleting a client never rewrites
// the name snapshots kept on quotes and payments.
type IClientUseCase interface {
	Create(ctx context.Context, in ClientInput) (entities.Client, error)
	Update(ctx context.Context, id string, in ClientInput) (entities.Client, error)
	GetByID(ctx context.Context, id string) (entities.Client, error)
	List(ctx context.Context) ([]entities.Client, error)
	Delete(ctx context.Context, id string) error
}

type ClientUseCase struct {
	repo interfaces.IClientRepository
}

var _ IClientUseCase = (*ClientUseCase)(nil)

func NewClientUseCase(repo interfaces.IClientRepository) *ClientUseCase {
	return &ClientUseCase{repo: repo}
}

func (u *ClientUseCase) Create(ctx context.Context, in ClientInput) (entities.Client, error) {
	c, err := applyClientInput(entities.Client{}, in)
	if err != nil {
		return entities.Client{}, err
	}
	return u.repo.Create(ctx, c)
}

func (u *ClientUseCase) Update(ctx context.Context, id string, in ClientInput) (entities.Client, error) {
	existing, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.Client{}, err
	}
	c, err := applyClientInput(existing, in)
	if err != nil {
		return entities.Client{}, err
	}
	updated, err := u.repo.Update(ctx, c)
	if err != nil {
		return entities.Client{}, err
	}
	if updated.ID == "" {
		return entities.Client{}, ErrClientNotFound
	}
	return updated, nil
}

func (u *ClientUseCase) GetByID(ctx context.Context, id string) (entities.Client, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Client{}, ErrInvalidClientID
	}
	c, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Client{}, err
	}
	if c.ID == "" {
		return entities.Client{}, ErrClientNotFound
	}
	return c, nil
}

func (u *ClientUseCase) List(ctx context.Context) ([]entities.Client, error) {
	return u.repo.List(ctx)
}

// Delete is rejected while anything still references the client by id.
func (u *ClientUseCase) Delete(ctx context.Context, id string) error {
	c, err := u.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, c.ID); err != nil {
		if errors.Is(err, entities.ErrReferentialConflict) {
			return ErrClientInUse
		}
		return err
	}
	return nil
}

func applyClientInput(c entities.Client, in ClientInput) (entities.Client, error) {
	c.Name = strings.TrimSpace(in.Name)
	c.Phone = strings.TrimSpace(in.Phone)
	c.ServiceType = strings.TrimSpace(in.ServiceType)
	switch {
	case c.Name == "":
		return entities.Client{}, ErrClientNameRequired
	case c.Phone == "":
		return entities.Client{}, ErrClientPhoneRequired
	case c.ServiceType == "":
		return entities.Client{}, ErrClientServiceTypeRequired
	}
	c.Notes = nil
	if in.Notes != nil {
		if notes := strings.TrimSpace(*in.Notes); notes != "" {
			c.Notes = &notes
		}
	}
	return c, nil
}
