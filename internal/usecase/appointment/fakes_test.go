package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	domain "github.com/BruksfildServices01/medspa-api/internal/domain/appointment"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

type fakeRepo struct {
	mu           sync.Mutex
	services     map[uint]models.Service
	staff        map[uint]models.User
	clients      map[uint]bool
	appointments map[uint]models.Appointment
	nextID       uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		services: map[uint]models.Service{
			1: {ID: 1, Name: "Botox", DurationMin: 30, Active: true},
			2: {ID: 2, Name: "Hydrafacial", DurationMin: 60, Active: true},
			3: {ID: 3, Name: "Retired Peel", DurationMin: 45, Active: false},
		},
		staff: map[uint]models.User{
			5: {ID: 5, Name: "Dr. Kim", Role: models.RoleStaff},
			6: {ID: 6, Name: "Alex Moreno", Role: models.RoleStaff},
		},
		clients:      map[uint]bool{1: true, 2: true},
		appointments: map[uint]models.Appointment{},
	}
}

func (r *fakeRepo) Transaction(ctx context.Context, fn func(tx domain.TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := make(map[uint]models.Appointment, len(r.appointments))
	for k, v := range r.appointments {
		saved[k] = v
	}
	if err := fn(&fakeTx{r: r}); err != nil {
		r.appointments = saved
		return err
	}
	return nil
}

func (r *fakeRepo) GetService(_ context.Context, id uint) (*models.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, httperr.ErrNotFound("service_not_found")
	}
	return &s, nil
}

func (r *fakeRepo) GetStaff(_ context.Context, id uint) (*models.User, error) {
	u, ok := r.staff[id]
	if !ok {
		return nil, httperr.ErrNotFound("staff_not_found")
	}
	return &u, nil
}

func (r *fakeRepo) ClientExists(_ context.Context, id uint) (bool, error) {
	return r.clients[id], nil
}

func (r *fakeRepo) GetAppointment(_ context.Context, id uint) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ap, ok := r.appointments[id]
	if !ok {
		return nil, httperr.ErrNotFound("appointment_not_found")
	}
	return &ap, nil
}

func (r *fakeRepo) ListAppointments(_ context.Context, f domain.ListFilter) ([]models.Appointment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Appointment
	for _, ap := range r.appointments {
		if f.StaffID != nil && ap.StaffID != *f.StaffID {
			continue
		}
		if f.ClientID != nil && ap.ClientID != *f.ClientID {
			continue
		}
		if f.From != nil && ap.StartTime.Before(*f.From) {
			continue
		}
		if f.To != nil && !ap.StartTime.Before(*f.To) {
			continue
		}
		ap.Service = r.services[ap.ServiceID]
		ap.Staff = r.staff[ap.StaffID]
		out = append(out, ap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, int64(len(out)), nil
}

type fakeTx struct {
	r *fakeRepo
}

func (t *fakeTx) GetAppointmentForUpdate(_ context.Context, id uint) (*models.Appointment, error) {
	ap, ok := t.r.appointments[id]
	if !ok {
		return nil, httperr.ErrNotFound("appointment_not_found")
	}
	return &ap, nil
}

func (t *fakeTx) AssertNoTimeConflict(_ context.Context, staffID uint, start, end time.Time, excludeID uint) error {
	slot := domain.TimeSlot{Start: start, End: end}
	for _, ap := range t.r.appointments {
		if ap.ID == excludeID || ap.StaffID != staffID || !domain.Status(ap.Status).IsOpen() {
			continue
		}
		if slot.Overlaps(domain.TimeSlot{Start: ap.StartTime, End: ap.EndTime}) {
			return httperr.ErrConflict("appointment_conflict")
		}
	}
	return nil
}

func (t *fakeTx) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	t.r.nextID++
	ap.ID = t.r.nextID
	t.r.appointments[ap.ID] = *ap
	return nil
}

func (t *fakeTx) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	t.r.appointments[ap.ID] = *ap
	return nil
}

type memorySink struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (s *memorySink) Log(_ context.Context, e audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}
