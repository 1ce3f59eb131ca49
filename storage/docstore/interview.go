package docstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kitobai/kitob/core/feedback"
	"github.com/kitobai/kitob/core/interview"
	"github.com/kitobai/kitob/core/permission"
)

type adminInterviewRepository struct {
	c collection[interview.AdminInterview]
}

var _ interview.AdminRepository = (*adminInterviewRepository)(nil)

func NewAdminInterviewRepository(db *mongo.Database) interview.AdminRepository {
	return &adminInterviewRepository{c: newCollection[interview.AdminInterview](db, adminInterviewsColl)}
}

func (repo *adminInterviewRepository) Create(ctx context.Context, ai interview.AdminInterview) error {
	return repo.c.insert(ctx, ai)
}

func (repo *adminInterviewRepository) Get(ctx context.Context, id string) (interview.AdminInterview, error) {
	return repo.c.get(ctx, id)
}

func (repo *adminInterviewRepository) List(ctx context.Context, f interview.AdminFilter) ([]interview.AdminInterview, error) {
	filter := eq("branchId", f.BranchID, "classId", f.ClassID, "teacherId", f.TeacherID)
	return repo.c.find(ctx, filter, newestFirst, 0)
}

func (repo *adminInterviewRepository) ListByAvailability(ctx context.Context) ([]interview.AdminInterview, error) {
	return repo.c.find(ctx, nil, bson.D{{Key: "availableFrom", Value: -1}}, 0)
}

func (repo *adminInterviewRepository) Update(ctx context.Context, ai interview.AdminInterview) error {
	return repo.c.replace(ctx, ai.ID, ai)
}

func (repo *adminInterviewRepository) Delete(ctx context.Context, id string) error {
	return repo.c.delete(ctx, id)
}

func (repo *adminInterviewRepository) Count(ctx context.Context) (int, error) {
	return repo.c.count(ctx, nil)
}

type generatedInterviewRepository struct {
	c collection[interview.Generated]
}

var _ interview.GeneratedRepository = (*generatedInterviewRepository)(nil)

func NewGeneratedInterviewRepository(db *mongo.Database) interview.GeneratedRepository {
	return &generatedInterviewRepository{c: newCollection[interview.Generated](db, interviewsColl)}
}

func (repo *generatedInterviewRepository) Create(ctx context.Context, g interview.Generated) error {
	return repo.c.insert(ctx, g)
}

func (repo *generatedInterviewRepository) Get(ctx context.Context, id string) (interview.Generated, error) {
	return repo.c.get(ctx, id)
}

func (repo *generatedInterviewRepository) ListLatest(ctx context.Context, userID string, limit int) ([]interview.Generated, error) {
	return repo.c.find(ctx, latestFilter(userID), newestFirst, int64(limit))
}

func (repo *generatedInterviewRepository) ListByUser(ctx context.Context, userID string) ([]interview.Generated, error) {
	return repo.c.find(ctx, bson.M{"userId": userID}, newestFirst, 0)
}

func (repo *generatedInterviewRepository) Count(ctx context.Context) (int, error) {
	return repo.c.count(ctx, nil)
}

type feedbackRepository struct {
	c collection[feedback.Feedback]
}

var _ feedback.Repository = (*feedbackRepository)(nil)

func NewFeedbackRepository(db *mongo.Database) feedback.Repository {
	return &feedbackRepository{c: newCollection[feedback.Feedback](db, feedbackColl)}
}

func (repo *feedbackRepository) Save(ctx context.Context, f feedback.Feedback) error {
	return repo.c.save(ctx, f.ID, f)
}

func (repo *feedbackRepository) Get(ctx context.Context, id string) (feedback.Feedback, error) {
	return repo.c.get(ctx, id)
}

func (repo *feedbackRepository) FindByInterviewAndUser(ctx context.Context, interviewID, userID string) (feedback.Feedback, error) {
	return repo.c.findOne(ctx, bson.M{"interviewId": interviewID, "userId": userID}, newestFirst)
}

func (repo *feedbackRepository) ListByUser(ctx context.Context, userID string) ([]feedback.Feedback, error) {
	return repo.c.find(ctx, bson.M{"userId": userID}, newestFirst, 0)
}

func (repo *feedbackRepository) ListByInterview(ctx context.Context, interviewID string) ([]feedback.Feedback, error) {
	return repo.c.find(ctx, bson.M{"interviewId": interviewID}, newestFirst, 0)
}

type permissionRepository struct {
	c collection[permission.Set]
}

var _ permission.Repository = (*permissionRepository)(nil)

func NewPermissionRepository(db *mongo.Database) permission.Repository {
	return &permissionRepository{c: newCollection[permission.Set](db, permissionsColl)}
}

func (repo *permissionRepository) FindByRole(ctx context.Context, roleID string, roleKind permission.RoleKind) (permission.Set, error) {
	return repo.c.findOne(ctx, bson.M{"roleId": roleID, "roleKind": roleKind}, nil)
}

func (repo *permissionRepository) Save(ctx context.Context, s permission.Set) error {
	return repo.c.save(ctx, s.ID, s)
}

func (repo *permissionRepository) List(ctx context.Context) ([]permission.Set, error) {
	return repo.c.find(ctx, nil, bson.D{{Key: "updatedAt", Value: -1}}, 0)
}

func (repo *permissionRepository) Delete(ctx context.Context, id string) error {
	return repo.c.delete(ctx, id)
}
