package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase/interfaces"
)

var (
	ErrAppointmentNotFound      = errors.New("appointment not found")
	ErrInvalidAppointmentID     = errors.New("invalid appointment id")
	ErrAppointmentTitleRequired = errors.New("appointment title is required")
	ErrAppointmentDateRequired  = errors.New("appointment date is required")
	ErrAppointmentClientMissing = errors.New("appointment needs a client id or a client name")
)

type AppointmentInput struct {
	Title      string
	ClientID   *string
	ClientName string
	Date       time.Time
	Status     entities.AppointmentStatus
	Notes      *string
}

type IAppointmentUseCase interface {
	Create(ctx context.Context, in AppointmentInput) (entities.Appointment, error)
	Update(ctx context.Context, id string, in AppointmentInput) (entities.Appointment, error)
	GetByID(ctx context.Context, id string) (entities.Appointment, error)
	List(ctx context.Context) ([]entities.Appointment, error)
	Delete(ctx context.Context, id string) error
}

type AppointmentUseCase struct {
	repo    interfaces.IAppointmentRepository
	clients interfaces.IClientRepository
}

var _ IAppointmentUseCase = (*AppointmentUseCase)(nil)

func NewAppointmentUseCase(repo interfaces.IAppointmentRepository, clients interfaces.IClientRepository) *AppointmentUseCase {
	return &AppointmentUseCase{repo: repo, clients: clients}
}

func (u *AppointmentUseCase) Create(ctx context.Context, in AppointmentInput) (entities.Appointment, error) {
	if in.Status == "" {
		in.Status = entities.AppointmentStatusScheduled
	}
	a, err := u.build(ctx, entities.Appointment{}, in)
	if err != nil {
		return entities.Appointment{}, err
	}
	return u.repo.Create(ctx, a)
}

func (u *AppointmentUseCase) Update(ctx context.Context, id string, in AppointmentInput) (entities.Appointment, error) {
	existing, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.Appointment{}, err
	}
	if in.Status == "" {
		in.Status = existing.Status
	}
	a, err := u.build(ctx, existing, in)
	if err != nil {
		return entities.Appointment{}, err
	}
	updated, err := u.repo.Update(ctx, a)
	if err != nil {
		return entities.Appointment{}, err
	}
	if updated.ID == "" {
		return entities.Appointment{}, ErrAppointmentNotFound
	}
	return updated, nil
}

func (u *AppointmentUseCase) GetByID(ctx context.Context, id string) (entities.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Appointment{}, ErrInvalidAppointmentID
	}
	a, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Appointment{}, err
	}
	if a.ID == "" {
		return entities.Appointment{}, ErrAppointmentNotFound
	}
	return a, nil
}

func (u *AppointmentUseCase) List(ctx context.Context) ([]entities.Appointment, error) {
	return u.repo.List(ctx)
}

func (u *AppointmentUseCase) Delete(ctx context.Context, id string) error {
	a, err := u.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return u.repo.Delete(ctx, a.ID)
}

func (u *AppointmentUseCase) build(ctx context.Context, base entities.Appointment, in AppointmentInput) (entities.Appointment, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return entities.Appointment{}, ErrAppointmentTitleRequired
	}
	if in.Date.IsZero() {
		return entities.Appointment{}, ErrAppointmentDateRequired
	}
	status, err := entities.ParseAppointmentStatus(string(in.Status))
	if err != nil {
		return entities.Appointment{}, err
	}
	clientID, clientName, err := resolveClient(ctx, u.clients, in.ClientID, in.ClientName)
	if err != nil {
		return entities.Appointment{}, err
	}
	if clientID == nil && clientName == "" {
		return entities.Appointment{}, ErrAppointmentClientMissing
	}

	base.Title = title
	base.ClientID = clientID
	base.ClientName = clientName
	base.Date = in.Date.UTC()
	base.Status = status
	base.Notes = nil
	if in.Notes != nil {
		if notes := strings.TrimSpace(*in.Notes); notes != "" {
			base.Notes = &notes
		}
	}
	return base, nil
}
