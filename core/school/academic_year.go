package school

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
)

const (
	errAcademicYearEmptyName = "O'quv yili nomi majburiy"
	errAcademicYearNoDates   = "Boshlanish va tugash sanasi majburiy"
	ErrAcademicYearNotFound  = "O'quv yili topilmadi"
	ErrNoActiveAcademicYear  = "Faol o'quv yili topilmadi"
)

type (
	AcademicYearRepository interface {
		Create(ctx context.Context, ay AcademicYear) error
		Get(ctx context.Context, id string) (AcademicYear, error)
		// List returns every academic year, newest first.
		List(ctx context.Context) ([]AcademicYear, error)
		// GetActive returns core.ErrNotFound when no year is active.
		GetActive(ctx context.Context) (AcademicYear, error)
		Update(ctx context.Context, ay AcademicYear) error
		Delete(ctx context.Context, id string) error
		// DeactivateOthers sets every year but exceptID inactive in a single batch.
		DeactivateOthers(ctx context.Context, exceptID string) error
	}

	AcademicYearService interface {
		Create(ctx context.Context, in AcademicYearInput) (AcademicYear, error)
		Get(ctx context.Context, id string) (AcademicYear, error)
		List(ctx context.Context) ([]AcademicYear, error)
		GetActive(ctx context.Context) (AcademicYear, error)
		Update(ctx context.Context, id string, in AcademicYearInput) (AcademicYear, error)
		Delete(ctx context.Context, id string) error
	}

	academicYearService struct {
		repo AcademicYearRepository
	}
)

var _ AcademicYearService = (*academicYearService)(nil)

func NewAcademicYearService(repo AcademicYearRepository) AcademicYearService {
	return &academicYearService{repo: repo}
}

func validateAcademicYear(in *AcademicYearInput) error {
	in.Name = core.CleanString(in.Name)
	in.StartDate = core.CleanString(in.StartDate)
	in.EndDate = core.CleanString(in.EndDate)
	if in.Name == "" {
		return core.NewInvalid(errAcademicYearEmptyName)
	}
	if in.StartDate == "" || in.EndDate == "" {
		return core.NewInvalid(errAcademicYearNoDates)
	}
	return nil
}

// Create always creates an active year: every other year is deactivated.
func (svc *academicYearService) Create(ctx context.Context, in AcademicYearInput) (AcademicYear, error) {
	if err := validateAcademicYear(&in); err != nil {
		return AcademicYear{}, err
	}
	ay := AcademicYear{
		ID:        uuid.NewString(),
		Name:      in.Name,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Semesters: cleanSemesters(in.Semesters),
		Status:    core.StatusActive,
		CreatedAt: core.NowFunc(),
	}
	if err := svc.repo.Create(ctx, ay); err != nil {
		return AcademicYear{}, errors.Wrap(err, "creating academic year")
	}
	if err := svc.repo.DeactivateOthers(ctx, ay.ID); err != nil {
		return AcademicYear{}, errors.Wrap(err, "deactivating other academic years")
	}
	return ay, nil
}

func (svc *academicYearService) Get(ctx context.Context, id string) (AcademicYear, error) {
	ay, err := svc.repo.Get(ctx, id)
	if err != nil {
		return AcademicYear{}, trapNotFound(err, ErrAcademicYearNotFound, "getting academic year")
	}
	return ay, nil
}

func (svc *academicYearService) List(ctx context.Context) ([]AcademicYear, error) {
	return svc.repo.List(ctx)
}

func (svc *academicYearService) GetActive(ctx context.Context) (AcademicYear, error) {
	ay, err := svc.repo.GetActive(ctx)
	if err != nil {
		return AcademicYear{}, trapNotFound(err, ErrNoActiveAcademicYear, "getting active academic year")
	}
	return ay, nil
}

// Update replaces the year. An omitted status means inactive.
func (svc *academicYearService) Update(ctx context.Context, id string, in AcademicYearInput) (AcademicYear, error) {
	if err := validateAcademicYear(&in); err != nil {
		return AcademicYear{}, err
	}
	ay, err := svc.Get(ctx, id)
	if err != nil {
		return AcademicYear{}, err
	}
	ay.Name = in.Name
	ay.StartDate = in.StartDate
	ay.EndDate = in.EndDate
	ay.Semesters = cleanSemesters(in.Semesters)
	ay.Status = in.Status
	if ay.Status == "" {
		ay.Status = core.StatusInactive
	}
	if err = svc.repo.Update(ctx, ay); err != nil {
		return AcademicYear{}, trapNotFound(err, ErrAcademicYearNotFound, "updating academic year")
	}
	if ay.IsActive() {
		if err = svc.repo.DeactivateOthers(ctx, ay.ID); err != nil {
			return AcademicYear{}, errors.Wrap(err, "deactivating other academic years")
		}
	}
	return ay, nil
}

// Delete removes the year. When it was active, the most recently created remaining year is activated.
func (svc *academicYearService) Delete(ctx context.Context, id string) error {
	ay, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.Delete(ctx, id); err != nil {
		return trapNotFound(err, ErrAcademicYearNotFound, "deleting academic year")
	}
	if !ay.IsActive() {
		return nil
	}

	remaining, err := svc.repo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "listing academic years")
	}
	if len(remaining) == 0 {
		return nil
	}
	latest := remaining[0]
	latest.Status = core.StatusActive
	return errors.Wrap(svc.repo.Update(ctx, latest), "activating latest academic year")
}
