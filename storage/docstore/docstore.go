// Package docstore implements the school repositories on MongoDB.
package docstore

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kitobai/kitob/core"
)

// Collections
const (
	branchesColl           = "branches"
	subjectsColl           = "subjects"
	employeeTypesColl      = "employeeTypes"
	classesColl            = "classes"
	academicYearsColl      = "academicYears"
	studentsColl           = "students"
	teachersColl           = "teachers"
	employeesColl          = "employees"
	assignmentsColl        = "assignments"
	teacherAssignmentsColl = "teacherAssignments"
	permissionsColl        = "permissions"
	adminInterviewsColl    = "adminInterviews"
	interviewsColl         = "interviews"
	feedbackColl           = "feedback"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

// Connect opens the client of conf and checks the server is reachable.
func Connect(ctx context.Context, conf *core.Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, conf.Mongo.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Mongo.URI))
	if err != nil {
		return nil, nil, errors.Wrap(err, "connecting to mongo")
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, errors.Wrap(err, "pinging mongo")
	}
	return client, client.Database(conf.Mongo.Database), nil
}

// EnsureIndexes creates the indexes the repositories query on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	asc := func(keys ...string) mongo.IndexModel {
		d := make(bson.D, 0, len(keys))
		for _, k := range keys {
			d = append(d, bson.E{Key: k, Value: 1})
		}
		return mongo.IndexModel{Keys: d}
	}
	unique := func(keys ...string) mongo.IndexModel {
		idx := asc(keys...)
		idx.Options = options.Index().SetUnique(true)
		return idx
	}

	indexes := map[string][]mongo.IndexModel{
		classesColl:            {asc("branchId", "academicYear")},
		academicYearsColl:      {asc("status")},
		studentsColl:           {unique("userId")},
		teachersColl:           {unique("userId")},
		employeesColl:          {unique("userId")},
		assignmentsColl:        {asc("studentId"), asc("classId", "academicYear")},
		teacherAssignmentsColl: {asc("teacherId"), asc("classId", "academicYear")},
		permissionsColl:        {unique("roleId", "roleKind")},
		adminInterviewsColl:    {asc("branchId", "classId"), asc("teacherId"), asc("availableFrom")},
		interviewsColl:         {asc("userId"), asc("finalized", "createdAt")},
		feedbackColl:           {asc("interviewId", "userId"), asc("userId")},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}

// collection is a typed MongoDB collection whose documents are keyed by a string _id.
type collection[T any] struct {
	coll *mongo.Collection
}

func newCollection[T any](db *mongo.Database, name string) collection[T] {
	return collection[T]{coll: db.Collection(name)}
}

func (c collection[T]) insert(ctx context.Context, doc T) error {
	_, err := c.coll.InsertOne(ctx, doc)
	return errors.Wrapf(err, "inserting into %s", c.coll.Name())
}

func (c collection[T]) get(ctx context.Context, id string) (T, error) {
	return c.findOne(ctx, bson.M{"_id": id}, nil)
}

// findOne returns core.ErrNotFound when no document matches filter.
func (c collection[T]) findOne(ctx context.Context, filter bson.M, sort bson.D) (T, error) {
	var doc T
	opts := options.FindOne()
	if sort != nil {
		opts.SetSort(sort)
	}
	if err := c.coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return doc, core.ErrNotFound
		}
		return doc, errors.Wrapf(err, "finding in %s", c.coll.Name())
	}
	return doc, nil
}

// find returns the documents matching filter in sort order, never nil.
func (c collection[T]) find(ctx context.Context, filter bson.M, sort bson.D, limit int64) ([]T, error) {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if filter == nil {
		filter = bson.M{}
	}

	cur, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s", c.coll.Name())
	}
	docs := make([]T, 0)
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", c.coll.Name())
	}
	return docs, nil
}

// replace overwrites the document id, or returns core.ErrNotFound.
func (c collection[T]) replace(ctx context.Context, id string, doc T) error {
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return errors.Wrapf(err, "replacing in %s", c.coll.Name())
	}
	if res.MatchedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

// save inserts or replaces the document id.
func (c collection[T]) save(ctx context.Context, id string, doc T) error {
	_, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return errors.Wrapf(err, "saving into %s", c.coll.Name())
}

func (c collection[T]) delete(ctx context.Context, id string) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrapf(err, "deleting from %s", c.coll.Name())
	}
	if res.DeletedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (c collection[T]) count(ctx context.Context, filter bson.M) (int, error) {
	if filter == nil {
		filter = bson.M{}
	}
	n, err := c.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errors.Wrapf(err, "counting %s", c.coll.Name())
	}
	return int(n), nil
}

// eq builds an equality filter from key/value pairs, skipping empty values.
func eq(pairs ...string) bson.M {
	filter := bson.M{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			filter[pairs[i]] = pairs[i+1]
		}
	}
	return filter
}

func statusFilter(status core.Status) bson.M {
	return eq("status", string(status))
}

// latestFilter matches the finalized interviews generated by anyone but userID.
func latestFilter(userID string) bson.M {
	return bson.M{"finalized": true, "userId": bson.M{"$ne": userID}}
}

// otherActiveFilter matches the active documents but id.
func otherActiveFilter(id string) bson.M {
	return bson.M{"_id": bson.M{"$ne": id}, "status": core.StatusActive}
}

func setStatus(status core.Status) bson.M {
	return bson.M{"$set": bson.M{"status": status}}
}
