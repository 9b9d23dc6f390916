package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/medspa-api/internal/domain/appointment"
	"github.com/BruksfildServices01/medspa-api/internal/dto"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/timezone"
)

type ListAppointmentsInput struct {
	Filter domain.ListFilter

	// Date (YYYY-MM-DD) or Month (YYYY-MM) narrow the range in the clinic timezone.
	Date  string
	Month string
}

type ListAppointments struct {
	repo domain.Repository
	tz   string
}

func NewListAppointments(repo domain.Repository, tz string) *ListAppointments {
	return &ListAppointments{repo: repo, tz: tz}
}

func (uc *ListAppointments) Execute(
	ctx context.Context,
	in ListAppointmentsInput,
) ([]dto.AppointmentListDTO, int64, error) {

	f := in.Filter

	switch {
	case in.Date != "" && in.Month != "":
		return nil, 0, httperr.ErrBusiness("date_and_month_exclusive")
	case in.Date != "":
		start, end, err := timezone.DayRange(in.Date, uc.tz)
		if err != nil {
			return nil, 0, err
		}
		f.From, f.To = &start, &end
	case in.Month != "":
		start, end, err := timezone.MonthRange(in.Month, uc.tz)
		if err != nil {
			return nil, 0, err
		}
		f.From, f.To = &start, &end
	}

	appointments, total, err := uc.repo.ListAppointments(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, dto.NewAppointmentListDTO(ap))
	}

	return out, total, nil
}
