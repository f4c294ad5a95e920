package mongostore

import (
	"context"
	"time"

	"VidTube.com/pkg/docstore"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect 建立连接并 ping 一次
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetTimeout(timeout))
	if err != nil {
		return nil, errors.Wrapf(err, "connect mongo %s", uri)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "ping mongo")
	}
	return client, nil
}

// EnsureIndexes 按 docstore.Index 创建索引
func EnsureIndexes(ctx context.Context, coll *mongo.Collection, indexes ...docstore.Index) error {
	if len(indexes) == 0 {
		return nil
	}
	models := make([]mongo.IndexModel, 0, len(indexes))
	for _, idx := range indexes {
		keys := bson.D{}
		for _, f := range idx.Fields {
			keys = append(keys, bson.E{Key: f, Value: 1})
		}
		models = append(models, mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetName(idx.Name).SetUnique(idx.Unique),
		})
	}
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return errors.Wrapf(err, "create indexes on %s", coll.Name())
	}
	return nil
}

type collection[T any] struct {
	coll *mongo.Collection
}

// New 把 mongo 集合包装成 docstore.Collection
func New[T any](coll *mongo.Collection) docstore.Collection[T] {
	return &collection[T]{coll: coll}
}

func (c *collection[T]) Name() string { return c.coll.Name() }

func (c *collection[T]) Insert(ctx context.Context, doc *T) (string, error) {
	m, id, err := docstore.ToDocument(doc)
	if err != nil {
		return "", errors.Wrap(err, "encode document")
	}
	if _, err := c.coll.InsertOne(ctx, m); err != nil {
		return "", c.wrap(err, "insert")
	}
	if err := docstore.FromDocument(m, doc); err != nil {
		return "", errors.Wrap(err, "decode document")
	}
	return id, nil
}

func (c *collection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	return c.FindOne(ctx, docstore.ByID(id))
}

func (c *collection[T]) FindOne(ctx context.Context, filter docstore.Filter) (*T, error) {
	out := new(T)
	if err := c.coll.FindOne(ctx, filter).Decode(out); err != nil {
		return nil, c.wrap(err, "find one")
	}
	return out, nil
}

func (c *collection[T]) FindMany(ctx context.Context, filter docstore.Filter, opts docstore.FindOptions) ([]*T, error) {
	sortDoc := bson.D{}
	for _, s := range opts.Sort {
		dir := 1
		if s.Desc {
			dir = -1
		}
		sortDoc = append(sortDoc, bson.E{Key: s.Field, Value: dir})
	}
	sortDoc = append(sortDoc, bson.E{Key: "_id", Value: 1})

	findOpts := options.Find().SetSort(sortDoc)
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	cur, err := c.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, c.wrap(err, "find")
	}
	defer cur.Close(ctx)

	out := make([]*T, 0)
	for cur.Next(ctx) {
		v := new(T)
		if err := cur.Decode(v); err != nil {
			return nil, errors.Wrapf(err, "decode %s", c.coll.Name())
		}
		out = append(out, v)
	}
	if err := cur.Err(); err != nil {
		return nil, c.wrap(err, "iterate")
	}
	return out, nil
}

func (c *collection[T]) Count(ctx context.Context, filter docstore.Filter) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, c.wrap(err, "count")
	}
	return n, nil
}

func (c *collection[T]) UpdateByID(ctx context.Context, id string, update docstore.Update) (bool, error) {
	if update.IsZero() {
		n, err := c.Count(ctx, docstore.ByID(id))
		return n > 0, err
	}
	doc, err := update.Document()
	if err != nil {
		return false, err
	}
	res, err := c.coll.UpdateOne(ctx, docstore.ByID(id), doc)
	if err != nil {
		return false, c.wrap(err, "update one")
	}
	return res.MatchedCount > 0, nil
}

func (c *collection[T]) UpdateMany(ctx context.Context, filter docstore.Filter, update docstore.Update) (int64, error) {
	if update.IsZero() {
		return 0, nil
	}
	doc, err := update.Document()
	if err != nil {
		return 0, err
	}
	res, err := c.coll.UpdateMany(ctx, filter, doc)
	if err != nil {
		return 0, c.wrap(err, "update many")
	}
	return res.ModifiedCount, nil
}

func (c *collection[T]) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := c.coll.DeleteOne(ctx, docstore.ByID(id))
	if err != nil {
		return false, c.wrap(err, "delete one")
	}
	return res.DeletedCount > 0, nil
}

func (c *collection[T]) DeleteMany(ctx context.Context, filter docstore.Filter) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, c.wrap(err, "delete many")
	}
	return res.DeletedCount, nil
}

// wrap 把驱动错误映射为 docstore 的哨兵错误
func (c *collection[T]) wrap(err error, op string) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return docstore.ErrNoDocuments
	case mongo.IsDuplicateKeyError(err):
		return errors.Wrapf(docstore.ErrDuplicateKey, "%s %s: %v", c.coll.Name(), op, err)
	}
	return errors.Wrapf(err, "%s %s", c.coll.Name(), op)
}
