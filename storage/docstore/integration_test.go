//go:build integration

package docstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/feedback"
	"github.com/kitobai/kitob/core/interview"
	"github.com/kitobai/kitob/core/member"
	"github.com/kitobai/kitob/core/school"
)

// openTestDB connects to MONGO_URI and returns a throwaway database, dropped on cleanup.
func openTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	conf := core.NewTestConfig()
	conf.Mongo.URI = uri
	conf.Mongo.Database = fmt.Sprintf("kitob_test_%d", time.Now().UnixNano())
	conf.Mongo.Timeout = 5 * time.Second

	ctx := context.Background()
	client, db, err := Connect(ctx, conf)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	require.NoError(t, EnsureIndexes(ctx, db))
	return db
}

func TestAcademicYearDeactivateOthers(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewAcademicYearRepository(db)

	for _, id := range []string{"2023", "2024", "2025"} {
		require.NoError(t, repo.Create(ctx, school.AcademicYear{ID: id, Name: id, Status: core.StatusActive}))
	}
	require.NoError(t, repo.DeactivateOthers(ctx, "2025"))

	years, err := repo.List(ctx)
	require.NoError(t, err)
	statuses := make(map[string]core.Status, len(years))
	for _, ay := range years {
		statuses[ay.ID] = ay.Status
	}
	assert.Equal(t, map[string]core.Status{
		"2023": core.StatusInactive,
		"2024": core.StatusInactive,
		"2025": core.StatusActive,
	}, statuses)

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025", active.ID)
}

func TestGeneratedListLatest(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewGeneratedInterviewRepository(db)
	now := time.Now().UTC().Truncate(time.Millisecond)

	for i, g := range []interview.Generated{
		{ID: "mine", UserID: "u1", Finalized: true},
		{ID: "draft", UserID: "u2"},
		{ID: "old", UserID: "u2", Finalized: true},
		{ID: "new", UserID: "u3", Finalized: true},
	} {
		g.CreatedAt = now.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, g))
	}

	latest, err := repo.ListLatest(ctx, "u1", 10)
	require.NoError(t, err)
	ids := make([]string, 0, len(latest))
	for _, g := range latest {
		ids = append(ids, g.ID)
	}
	assert.Equal(t, []string{"new", "old"}, ids)

	latest, err = repo.ListLatest(ctx, "u1", 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "new", latest[0].ID)
}

func TestEmployeeRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewEmployeeRepository(db)

	emp := member.Employee{
		Person: member.Person{ID: "e1", UserID: "u1", FirstName: "Ali", LastName: "Valiyev", Status: core.StatusActive},
		TypeID: "t1", TypeName: "Kotiba",
	}
	require.NoError(t, repo.Create(ctx, emp))

	got, err := repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "e1", got.ID)
	assert.Equal(t, "Ali Valiyev", got.FullName())
	assert.Equal(t, "Kotiba", got.TypeName)

	_, err = repo.Get(ctx, "lol")
	assert.Equal(t, core.ErrNotFound, err)
}

func TestFeedbackSaveUpserts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewFeedbackRepository(db)

	fb := feedback.Feedback{ID: "f1", InterviewID: "i1", UserID: "u1", TotalScore: 40}
	require.NoError(t, repo.Save(ctx, fb))
	fb.TotalScore = 90
	require.NoError(t, repo.Save(ctx, fb))

	got, err := repo.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 90.0, got.TotalScore)

	all, err := repo.ListByInterview(ctx, "i1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
