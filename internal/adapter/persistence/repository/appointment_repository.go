package repository

import (
	"context"

	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase/interfaces"
)

type AppointmentRepository struct {
	store interfaces.IEntityStore
}

var _ interfaces.IAppointmentRepository = (*AppointmentRepository)(nil)

func NewAppointmentRepository(store interfaces.IEntityStore) *AppointmentRepository {
	return &AppointmentRepository{store: store}
}

func (r *AppointmentRepository) Create(ctx context.Context, a entities.Appointment) (entities.Appointment, error) {
	row := appointmentColumns(a)
	if a.ID != "" {
		row[interfaces.ColID] = a.ID
	}
	created, err := r.store.Insert(ctx, interfaces.TableAppointments, row)
	if err != nil {
		return entities.Appointment{}, err
	}
	return appointmentFromRow(created)
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (entities.Appointment, error) {
	rows, err := r.store.List(ctx, interfaces.TableAppointments, byID(id))
	if err != nil {
		return entities.Appointment{}, err
	}
	if len(rows) == 0 {
		return entities.Appointment{}, nil
	}
	return appointmentFromRow(rows[0])
}

func (r *AppointmentRepository) List(ctx context.Context) ([]entities.Appointment, error) {
	rows, err := r.store.List(ctx, interfaces.TableAppointments, nil)
	if err != nil {
		return nil, err
	}
	items := make([]entities.Appointment, 0, len(rows))
	for _, row := range rows {
		a, err := appointmentFromRow(row)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, a entities.Appointment) (entities.Appointment, error) {
	if err := r.store.Update(ctx, interfaces.TableAppointments, a.ID, appointmentColumns(a)); err != nil {
		return entities.Appointment{}, err
	}
	return r.GetByID(ctx, a.ID)
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, interfaces.TableAppointments, id)
}

func appointmentColumns(a entities.Appointment) interfaces.Row {
	return interfaces.Row{
		"title":                  a.Title,
		interfaces.ColClientID:   optional(a.ClientID),
		interfaces.ColClientName: a.ClientName,
		"date":                   a.Date.UTC(),
		interfaces.ColStatus:     string(a.Status),
		"notes":                  optional(a.Notes),
	}
}

func appointmentFromRow(row interfaces.Row) (entities.Appointment, error) {
	r := rowReader{row: row}
	a := entities.Appointment{
		ID:         r.str(interfaces.ColID),
		UserID:     r.str(interfaces.ColUserID),
		Title:      r.str("title"),
		ClientID:   r.optStr(interfaces.ColClientID),
		ClientName: r.str(interfaces.ColClientName),
		Date:       r.timestamp("date"),
		Notes:      r.optStr("notes"),
		CreatedAt:  r.timestamp(interfaces.ColCreatedAt),
		UpdatedAt:  r.timestamp(interfaces.ColUpdatedAt),
	}
	status, err := entities.ParseAppointmentStatus(r.str(interfaces.ColStatus))
	r.check(err)
	a.Status = status
	if r.err != nil {
		return entities.Appointment{}, r.err
	}
	return a, nil
}
