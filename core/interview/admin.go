package interview

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/assignment"
	"github.com/kitobai/kitob/core/feedback"
	"github.com/kitobai/kitob/core/member"
	"github.com/kitobai/kitob/core/school"
)

const (
	ErrNotFound          = "Interview topilmadi"
	errFieldsRequired    = "Barcha maydonlar to'ldirilishi kerak"
	errQuestionsRequired = "Kamida bitta savol qo'shishingiz kerak"
	errDatesRequired     = "Sana va vaqt tanlanishi kerak"
	errDatesOrder        = "Tugash vaqti boshlanish vaqtidan oldin bo'lishi mumkin emas"
	errBranchNotFound    = "Filial topilmadi"
	errClassNotFound     = "Sinf topilmadi"
	errTeacherNotFound   = "O'qituvchi topilmadi"

	ErrNotStarted      = "Interview hali boshlanmagan"
	ErrExpired         = "Interview muddati tugagan"
	ErrAlreadyAnswered = "Siz bu interviewni allaqachon topshirgansiz"
)

type (
	// AdminRepository stores admin interviews.
	// Get, Update and Delete return core.ErrNotFound when no interview has the given id.
	AdminRepository interface {
		Create(ctx context.Context, ai AdminInterview) error
		Get(ctx context.Context, id string) (AdminInterview, error)
		// List returns the interviews matching filter, newest first.
		List(ctx context.Context, filter AdminFilter) ([]AdminInterview, error)
		// ListByAvailability returns every interview, the latest availableFrom first.
		ListByAvailability(ctx context.Context) ([]AdminInterview, error)
		Update(ctx context.Context, ai AdminInterview) error
		Delete(ctx context.Context, id string) error
		Count(ctx context.Context) (int, error)
	}

	AdminService interface {
		Create(ctx context.Context, in AdminInput, createdBy string) (AdminInterview, error)
		Get(ctx context.Context, id string) (AdminInterview, error)
		List(ctx context.Context, filter AdminFilter) ([]AdminInterview, error)
		Available(ctx context.Context) ([]AdminInterview, error)
		Update(ctx context.Context, id string, in AdminInput) (AdminInterview, error)
		Delete(ctx context.Context, id string) error
		// TeachersByClass returns the teachers assigned to classID for academicYear.
		TeachersByClass(ctx context.Context, classID, academicYear string) ([]TeacherOption, error)
		// AvailableForStudent returns the interviews of the classes the student linked to userID is assigned to.
		AvailableForStudent(ctx context.Context, userID string) ([]AdminInterview, error)
		// ForTeacher returns the interviews of the teacher linked to userID.
		ForTeacher(ctx context.Context, userID string) ([]AdminInterview, error)
		// CanStart returns a ValidationError when userID may not take ai at now.
		CanStart(ctx context.Context, ai AdminInterview, userID string, now time.Time) error
		// StudentView returns the interview without its answers, and whether userID may start it now.
		StudentView(ctx context.Context, id, userID string) (StudentInterview, error)
		feedback.AnswerSource
	}

	adminService struct {
		repo              AdminRepository
		branchRepo        school.NamedRepository
		classRepo         school.ClassRepository
		teacherRepo       member.PersonRepository
		assignmentSvc     assignment.Service
		teacherAssignRepo assignment.TeacherRepository
		feedbackRepo      feedback.Repository
	}
)

var _ AdminService = (*adminService)(nil)

func NewAdminService(
	repo AdminRepository,
	branchRepo school.NamedRepository,
	classRepo school.ClassRepository,
	teacherRepo member.PersonRepository,
	assignmentSvc assignment.Service,
	teacherAssignRepo assignment.TeacherRepository,
	feedbackRepo feedback.Repository,
) AdminService {
	return &adminService{
		repo:              repo,
		branchRepo:        branchRepo,
		classRepo:         classRepo,
		teacherRepo:       teacherRepo,
		assignmentSvc:     assignmentSvc,
		teacherAssignRepo: teacherAssignRepo,
		feedbackRepo:      feedbackRepo,
	}
}

func trapNotFound(err error, msg, wrapMsg string) error {
	if errors.Cause(err) == core.ErrNotFound {
		return core.NewNotFoundError(msg)
	}
	return errors.Wrap(err, wrapMsg)
}

func trapMissingRef(err error, msg, wrapMsg string) error {
	if errors.Cause(err) == core.ErrNotFound {
		return core.NewInvalid(msg)
	}
	return errors.Wrap(err, wrapMsg)
}

// resolve validates in and fills the denormalized names of ai.
func (svc *adminService) resolve(ctx context.Context, in *AdminInput, ai *AdminInterview) error {
	in.clean()
	if in.BranchID == "" || in.ClassID == "" || in.TeacherID == "" {
		return core.NewInvalid(errFieldsRequired)
	}
	if len(in.Questions) == 0 {
		return core.NewInvalid(errQuestionsRequired)
	}
	if in.AvailableFrom.IsZero() || in.AvailableUntil.IsZero() {
		return core.NewInvalid(errDatesRequired)
	}
	if in.AvailableUntil.Before(in.AvailableFrom) {
		return core.NewInvalid(errDatesOrder)
	}

	branch, err := svc.branchRepo.Get(ctx, in.BranchID)
	if err != nil {
		return trapMissingRef(err, errBranchNotFound, "getting branch")
	}
	class, err := svc.classRepo.Get(ctx, in.ClassID)
	if err != nil {
		return trapMissingRef(err, errClassNotFound, "getting class")
	}
	teacher, err := svc.teacherRepo.Get(ctx, in.TeacherID)
	if err != nil {
		return trapMissingRef(err, errTeacherNotFound, "getting teacher")
	}

	ai.BranchID, ai.BranchName = branch.ID, branch.Name
	ai.ClassID, ai.ClassName = class.ID, class.Name
	ai.TeacherID, ai.TeacherName = teacher.ID, teacher.FullName()
	ai.AcademicYear = in.AcademicYear
	ai.BookName = in.BookName
	ai.BookCoverImage = in.BookCoverImage
	ai.Questions = in.Questions
	ai.AvailableFrom = in.AvailableFrom
	ai.AvailableUntil = in.AvailableUntil
	return nil
}

func (svc *adminService) Create(ctx context.Context, in AdminInput, createdBy string) (AdminInterview, error) {
	ai := AdminInterview{ID: uuid.NewString(), CreatedBy: createdBy}
	if err := svc.resolve(ctx, &in, &ai); err != nil {
		return AdminInterview{}, err
	}
	ai.CreatedAt = core.NowFunc()
	if err := svc.repo.Create(ctx, ai); err != nil {
		return AdminInterview{}, errors.Wrap(err, "creating interview")
	}
	return ai, nil
}

func (svc *adminService) Get(ctx context.Context, id string) (AdminInterview, error) {
	ai, err := svc.repo.Get(ctx, id)
	if err != nil {
		return AdminInterview{}, trapNotFound(err, ErrNotFound, "getting interview")
	}
	return ai, nil
}

func (svc *adminService) List(ctx context.Context, filter AdminFilter) ([]AdminInterview, error) {
	return svc.repo.List(ctx, filter)
}

func (svc *adminService) Available(ctx context.Context) ([]AdminInterview, error) {
	return svc.repo.ListByAvailability(ctx)
}

func (svc *adminService) Update(ctx context.Context, id string, in AdminInput) (AdminInterview, error) {
	ai, err := svc.Get(ctx, id)
	if err != nil {
		return AdminInterview{}, err
	}
	if err = svc.resolve(ctx, &in, &ai); err != nil {
		return AdminInterview{}, err
	}
	if err = svc.repo.Update(ctx, ai); err != nil {
		return AdminInterview{}, trapNotFound(err, ErrNotFound, "updating interview")
	}
	return ai, nil
}

func (svc *adminService) Delete(ctx context.Context, id string) error {
	if err := svc.repo.Delete(ctx, id); err != nil {
		return trapNotFound(err, ErrNotFound, "deleting interview")
	}
	return nil
}

func (svc *adminService) TeachersByClass(ctx context.Context, classID, academicYear string) ([]TeacherOption, error) {
	classID, academicYear = core.CleanString(classID), core.CleanString(academicYear)
	teachers := make([]TeacherOption, 0)
	if classID == "" || academicYear == "" {
		return teachers, nil
	}

	assignments, err := svc.teacherAssignRepo.List(ctx, assignment.Filter{ClassID: classID, AcademicYear: academicYear})
	if err != nil {
		return nil, errors.Wrap(err, "listing teacher assignments")
	}
	seen := make(map[string]struct{}, len(assignments))
	for _, ta := range assignments {
		if _, ok := seen[ta.TeacherID]; ok {
			continue
		}
		seen[ta.TeacherID] = struct{}{}

		teacher, err := svc.teacherRepo.Get(ctx, ta.TeacherID)
		if err != nil {
			if errors.Cause(err) == core.ErrNotFound {
				continue
			}
			return nil, errors.Wrap(err, "getting teacher")
		}
		teachers = append(teachers, TeacherOption{ID: teacher.ID, Name: teacher.FullName()})
	}
	return teachers, nil
}

func (svc *adminService) AvailableForStudent(ctx context.Context, userID string) ([]AdminInterview, error) {
	assignments, err := svc.assignmentSvc.ForStudentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	interviews := make([]AdminInterview, 0)
	if len(assignments) == 0 {
		return interviews, nil
	}

	type placement struct{ classID, academicYear string }
	placements := make(map[placement]struct{}, len(assignments))
	for _, a := range assignments {
		placements[placement{a.ClassID, a.AcademicYear}] = struct{}{}
	}

	all, err := svc.repo.ListByAvailability(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing interviews")
	}
	for _, ai := range all {
		if _, ok := placements[placement{ai.ClassID, ai.AcademicYear}]; ok {
			interviews = append(interviews, ai)
		}
	}
	sort.SliceStable(interviews, func(i, j int) bool {
		return interviews[i].AvailableFrom.After(interviews[j].AvailableFrom)
	})
	return interviews, nil
}

func (svc *adminService) ForTeacher(ctx context.Context, userID string) ([]AdminInterview, error) {
	teacher, err := svc.teacherRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, trapNotFound(err, errTeacherNotFound, "getting teacher by user ID")
	}
	return svc.repo.List(ctx, AdminFilter{TeacherID: teacher.ID})
}

func (svc *adminService) CanStart(ctx context.Context, ai AdminInterview, userID string, now time.Time) error {
	if now.Before(ai.AvailableFrom) {
		return core.NewInvalid(ErrNotStarted)
	}
	if now.After(ai.AvailableUntil) {
		return core.NewInvalid(ErrExpired)
	}
	_, err := svc.feedbackRepo.FindByInterviewAndUser(ctx, ai.ID, userID)
	switch {
	case err == nil:
		return core.NewInvalid(ErrAlreadyAnswered)
	case errors.Cause(err) == core.ErrNotFound:
		return nil
	default:
		return errors.Wrap(err, "finding feedback")
	}
}

func (svc *adminService) StudentView(ctx context.Context, id, userID string) (StudentInterview, error) {
	ai, err := svc.Get(ctx, id)
	if err != nil {
		return StudentInterview{}, err
	}
	view := StudentInterview{Interview: ai.WithoutAnswers(), CanStart: true}
	if err = svc.CanStart(ctx, ai, userID, core.NowFunc()); err != nil {
		if !core.IsValidationError(err) {
			return StudentInterview{}, err
		}
		view.CanStart = false
		view.Reason = err.Error()
	}
	return view, nil
}

func (svc *adminService) ExpectedAnswers(ctx context.Context, interviewID, userID string) ([]string, bool, error) {
	ai, err := svc.repo.Get(ctx, interviewID)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "getting interview")
	}
	if err = svc.CanStart(ctx, ai, userID, core.NowFunc()); err != nil {
		return nil, true, err
	}
	return ai.Answers(), true, nil
}
