package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/member"
)

func TestEq(t *testing.T) {
	tests := []struct {
		name  string
		pairs []string
		want  bson.M
	}{
		{name: "no pairs", want: bson.M{}},
		{name: "empty values skipped", pairs: []string{"branchId", "", "classId", "c1"}, want: bson.M{"classId": "c1"}},
		{name: "odd pair ignored", pairs: []string{"branchId", "b1", "classId"}, want: bson.M{"branchId": "b1"}},
		{
			name:  "every pair",
			pairs: []string{"branchId", "b1", "classId", "c1", "teacherId", "t1"},
			want:  bson.M{"branchId": "b1", "classId": "c1", "teacherId": "t1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eq(tt.pairs...))
		})
	}

	assert.Equal(t, bson.M{}, statusFilter(""))
	assert.Equal(t, bson.M{"status": "active"}, statusFilter(core.StatusActive))
}

func TestFilters(t *testing.T) {
	assert.Equal(t, bson.M{"finalized": true, "userId": bson.M{"$ne": "u1"}}, latestFilter("u1"))
	assert.Equal(t, bson.M{"_id": bson.M{"$ne": "ay1"}, "status": core.StatusActive}, otherActiveFilter("ay1"))
	assert.Equal(t, bson.M{"$set": bson.M{"status": core.StatusInactive}}, setStatus(core.StatusInactive))

	raw, err := bson.Marshal(otherActiveFilter("ay1"))
	require.NoError(t, err)
	assert.Equal(t, "active", bson.Raw(raw).Lookup("status").StringValue())
	assert.Equal(t, "ay1", bson.Raw(raw).Lookup("_id", "$ne").StringValue())
}

func TestEmployeeDocument(t *testing.T) {
	createdAt := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	emp := member.Employee{
		Person: member.Person{
			ID: "e1", UserID: "u1", FirstName: "Ali", LastName: "Valiyev", Email: "ali@kitob.uz",
			Gender: core.GenderMale, Status: core.StatusActive, Role: "Kotiba", CreatedAt: createdAt,
		},
		TypeID: "t1", TypeName: "Kotiba", BranchID: "b1", BranchName: "Chilonzor",
	}

	raw, err := bson.Marshal(emp)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.NotContains(t, doc, "person")
	assert.NotContains(t, doc, "id")
	assert.Equal(t, "e1", doc["_id"])
	assert.Equal(t, "u1", doc["userId"])
	assert.Equal(t, "Ali", doc["firstName"])
	assert.Equal(t, "t1", doc["typeId"])
	assert.Equal(t, "Chilonzor", doc["branchName"])

	var decoded member.Employee
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Equal(t, emp.Person.ID, decoded.ID)
	assert.Equal(t, emp.FullName(), decoded.FullName())
	assert.True(t, createdAt.Equal(decoded.CreatedAt))
	assert.Equal(t, emp.TypeName, decoded.TypeName)
	assert.Equal(t, emp.BranchID, decoded.BranchID)
}
