package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/steveyiyo/project-scheduling-backend/internal/core/project"
)

const collectionName = "projects"

type projectDocument struct {
	ID           string    `bson:"_id"`
	ProjectType  string    `bson:"project_type"`
	Objectives   string    `bson:"objectives"`
	Industry     string    `bson:"industry"`
	TeamMembers  []string  `bson:"team_members"`
	Requirements []string  `bson:"requirements"`
	Plan         string    `bson:"plan,omitempty"`
	Schedule     string    `bson:"schedule,omitempty"`
	Review       string    `bson:"review,omitempty"`
	HTMLOutput   string    `bson:"html_output,omitempty"`
	Status       string    `bson:"status"`
	Error        string    `bson:"error,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type ProjectRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect dials uri, pings it and ensures the created_at index on the projects collection.
func Connect(ctx context.Context, uri, database string) (*ProjectRepo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	r := &ProjectRepo{client: client, coll: client.Database(database).Collection(collectionName)}
	if _, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: 1}},
	}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo create index: %w", err)
	}
	return r, nil
}

func (r *ProjectRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *ProjectRepo) Name() string { return "mongodb" }

func (r *ProjectRepo) Save(ctx context.Context, p *project.Project) error {
	doc := toDocument(p)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *ProjectRepo) Update(ctx context.Context, p *project.Project) error {
	doc := toDocument(p)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return project.ErrNotFound
	}
	return nil
}

func (r *ProjectRepo) Get(ctx context.Context, id string) (*project.Project, error) {
	var doc projectDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, project.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromDocument(doc), nil
}

func (r *ProjectRepo) List(ctx context.Context) ([]*project.Project, error) {
	return r.find(ctx, bson.M{})
}

func (r *ProjectRepo) Search(ctx context.Context, query string) ([]*project.Project, error) {
	return r.find(ctx, searchFilter(query))
}

func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return project.ErrNotFound
	}
	return nil
}

func (r *ProjectRepo) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *ProjectRepo) find(ctx context.Context, filter bson.M) ([]*project.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []projectDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*project.Project, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDocument(d))
	}
	return out, nil
}

// searchFilter matches query as a literal, case-insensitive substring of
// objectives, project type or industry.
func searchFilter(query string) bson.M {
	re := bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
	return bson.M{"$or": bson.A{
		bson.M{"objectives": re},
		bson.M{"project_type": re},
		bson.M{"industry": re},
	}}
}

func toDocument(p *project.Project) projectDocument {
	return projectDocument{
		ID:           p.ID,
		ProjectType:  p.ProjectType,
		Objectives:   p.Objectives,
		Industry:     p.Industry,
		TeamMembers:  p.TeamMembers,
		Requirements: p.Requirements,
		Plan:         p.Plan,
		Schedule:     p.Schedule,
		Review:       p.Review,
		HTMLOutput:   p.HTMLOutput,
		Status:       p.Status,
		Error:        p.Error,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func fromDocument(d projectDocument) *project.Project {
	if d.TeamMembers == nil {
		d.TeamMembers = []string{}
	}
	if d.Requirements == nil {
		d.Requirements = []string{}
	}
	return &project.Project{
		ID:           d.ID,
		ProjectType:  d.ProjectType,
		Objectives:   d.Objectives,
		Industry:     d.Industry,
		TeamMembers:  d.TeamMembers,
		Requirements: d.Requirements,
		Plan:         d.Plan,
		Schedule:     d.Schedule,
		Review:       d.Review,
		HTMLOutput:   d.HTMLOutput,
		Status:       d.Status,
		Error:        d.Error,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}
