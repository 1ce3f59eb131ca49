package inmemdb

import (
	"context"
	"sort"

	"github.com/kitobai/kitob/core/feedback"
	"github.com/kitobai/kitob/core/interview"
	"github.com/kitobai/kitob/core/permission"
)

type adminInterviewRepository struct {
	db *table[interview.AdminInterview]
}

var _ interview.AdminRepository = (*adminInterviewRepository)(nil)

func NewAdminInterviewRepository(db *DB) interview.AdminRepository {
	return &adminInterviewRepository{db: db.adminInterviews}
}

func (repo *adminInterviewRepository) Create(_ context.Context, ai interview.AdminInterview) error {
	return repo.db.insert(ai)
}

func (repo *adminInterviewRepository) Get(_ context.Context, id string) (interview.AdminInterview, error) {
	return repo.db.get(id)
}

func (repo *adminInterviewRepository) List(_ context.Context, filter interview.AdminFilter) ([]interview.AdminInterview, error) {
	return repo.db.filter(func(ai interview.AdminInterview) bool {
		return matches(filter.BranchID, ai.BranchID) &&
			matches(filter.ClassID, ai.ClassID) &&
			matches(filter.TeacherID, ai.TeacherID)
	}), nil
}

func (repo *adminInterviewRepository) ListByAvailability(_ context.Context) ([]interview.AdminInterview, error) {
	interviews := repo.db.filter(nil)
	sort.SliceStable(interviews, func(i, j int) bool {
		return interviews[i].AvailableFrom.After(interviews[j].AvailableFrom)
	})
	return interviews, nil
}

func (repo *adminInterviewRepository) Update(_ context.Context, ai interview.AdminInterview) error {
	return repo.db.replace(ai)
}

func (repo *adminInterviewRepository) Delete(_ context.Context, id string) error {
	return repo.db.delete(id)
}

func (repo *adminInterviewRepository) Count(_ context.Context) (int, error) {
	return repo.db.count(nil), nil
}

type generatedInterviewRepository struct {
	db *table[interview.Generated]
}

var _ interview.GeneratedRepository = (*generatedInterviewRepository)(nil)

func NewGeneratedInterviewRepository(db *DB) interview.GeneratedRepository {
	return &generatedInterviewRepository{db: db.interviews}
}

func (repo *generatedInterviewRepository) Create(_ context.Context, g interview.Generated) error {
	return repo.db.insert(g)
}

func (repo *generatedInterviewRepository) Get(_ context.Context, id string) (interview.Generated, error) {
	return repo.db.get(id)
}

func (repo *generatedInterviewRepository) ListLatest(_ context.Context, userID string, limit int) ([]interview.Generated, error) {
	interviews := repo.db.filter(func(g interview.Generated) bool { return g.Finalized && g.UserID != userID })
	if limit > 0 && len(interviews) > limit {
		interviews = interviews[:limit]
	}
	return interviews, nil
}

func (repo *generatedInterviewRepository) ListByUser(_ context.Context, userID string) ([]interview.Generated, error) {
	return repo.db.filter(func(g interview.Generated) bool { return g.UserID == userID }), nil
}

func (repo *generatedInterviewRepository) Count(_ context.Context) (int, error) {
	return repo.db.count(nil), nil
}

type feedbackRepository struct {
	db *table[feedback.Feedback]
}

var _ feedback.Repository = (*feedbackRepository)(nil)

func NewFeedbackRepository(db *DB) feedback.Repository {
	return &feedbackRepository{db: db.feedback}
}

func (repo *feedbackRepository) Save(_ context.Context, f feedback.Feedback) error {
	repo.db.save(f)
	return nil
}

func (repo *feedbackRepository) Get(_ context.Context, id string) (feedback.Feedback, error) {
	return repo.db.get(id)
}

func (repo *feedbackRepository) FindByInterviewAndUser(_ context.Context, interviewID, userID string) (feedback.Feedback, error) {
	return repo.db.first(func(f feedback.Feedback) bool {
		return f.InterviewID == interviewID && f.UserID == userID
	})
}

func (repo *feedbackRepository) ListByUser(_ context.Context, userID string) ([]feedback.Feedback, error) {
	return repo.db.filter(func(f feedback.Feedback) bool { return f.UserID == userID }), nil
}

func (repo *feedbackRepository) ListByInterview(_ context.Context, interviewID string) ([]feedback.Feedback, error) {
	return repo.db.filter(func(f feedback.Feedback) bool { return f.InterviewID == interviewID }), nil
}

type permissionRepository struct {
	db *table[permission.Set]
}

var _ permission.Repository = (*permissionRepository)(nil)

func NewPermissionRepository(db *DB) permission.Repository {
	return &permissionRepository{db: db.permissions}
}

func (repo *permissionRepository) FindByRole(_ context.Context, roleID string, roleKind permission.RoleKind) (permission.Set, error) {
	return repo.db.first(func(s permission.Set) bool { return s.RoleID == roleID && s.RoleKind == roleKind })
}

func (repo *permissionRepository) Save(_ context.Context, s permission.Set) error {
	repo.db.save(s)
	return nil
}

func (repo *permissionRepository) List(_ context.Context) ([]permission.Set, error) {
	return repo.db.filter(nil), nil
}

func (repo *permissionRepository) Delete(_ context.Context, id string) error {
	return repo.db.delete(id)
}
