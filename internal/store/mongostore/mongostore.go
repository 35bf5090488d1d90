// Package mongostore implements the store interfaces on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookapi/internal/book"
	"bookapi/internal/store"
	"bookapi/internal/user"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	usersCollection      = "users"
	booksCollection      = "books"
	blacklistsCollection = "blacklists"
)

// Connect dials uri and pings the primary. The database name comes from the
// URI path, falling back to defaultDB.
func Connect(ctx context.Context, uri, defaultDB string) (*mongo.Database, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("parse mongo uri: %w", err)
	}
	name := cs.Database
	if name == "" {
		name = defaultDB
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client.Database(name), nil
}

// EnsureIndexes creates the unique and lookup indexes the stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := []struct {
		coll   string
		models []mongo.IndexModel
	}{
		{usersCollection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{booksCollection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "author", Value: 1}}},
			{Keys: bson.D{{Key: "publicationYear", Value: 1}}},
		}},
		{blacklistsCollection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
			// TTL: mongod removes entries once expiresAt has passed.
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		}},
	}
	for _, s := range specs {
		if _, err := db.Collection(s.coll).Indexes().CreateMany(ctx, s.models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", s.coll, err)
		}
	}
	return nil
}

// Open wraps db into store.Stores. Closing the bundle disconnects the client.
func Open(db *mongo.Database) *store.Stores {
	client := db.Client()
	return store.New(
		NewUsers(db),
		NewBooks(db),
		NewDenylist(db),
		func(ctx context.Context) error { return client.Ping(ctx, nil) },
		client.Disconnect,
	)
}

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d userDoc) toUser() *user.User {
	return &user.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
	}
}

type Users struct {
	coll *mongo.Collection
}

func NewUsers(db *mongo.Database) *Users {
	return &Users{coll: db.Collection(usersCollection)}
}

func (s *Users) CreateUser(ctx context.Context, u *user.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.PasswordHash,
		CreatedAt: u.CreatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return translate("create user", err)
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (s *Users) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	var doc userDoc
	if err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		return nil, translate("find user by email", err)
	}
	return doc.toUser(), nil
}

func (s *Users) FindUserByID(ctx context.Context, id string) (*user.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	var doc userDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate("find user by id", err)
	}
	return doc.toUser(), nil
}

type bookDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Title           string             `bson:"title"`
	Author          string             `bson:"author"`
	PublicationYear int                `bson:"publicationYear"`
}

func (d bookDoc) toBook() book.Book {
	return book.Book{
		ID:              d.ID.Hex(),
		Title:           d.Title,
		Author:          d.Author,
		PublicationYear: d.PublicationYear,
	}
}

type Books struct {
	coll *mongo.Collection
}

func NewBooks(db *mongo.Database) *Books {
	return &Books{coll: db.Collection(booksCollection)}
}

func (s *Books) ListBooks(ctx context.Context, f book.Filter) ([]book.Book, error) {
	filter := bson.M{}
	if f.Author != nil {
		filter["author"] = *f.Author
	}
	if f.PublicationYear != nil {
		filter["publicationYear"] = *f.PublicationYear
	}

	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, translate("list books", err)
	}
	defer cur.Close(ctx)

	var docs []bookDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate("decode books", err)
	}
	out := make([]book.Book, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toBook())
	}
	return out, nil
}

func (s *Books) FindBookByID(ctx context.Context, id string) (*book.Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	var doc bookDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate("find book", err)
	}
	b := doc.toBook()
	return &b, nil
}

func (s *Books) CreateBook(ctx context.Context, b *book.Book) error {
	doc := bookDoc{
		ID:              primitive.NewObjectID(),
		Title:           b.Title,
		Author:          b.Author,
		PublicationYear: b.PublicationYear,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return translate("create book", err)
	}
	b.ID = doc.ID.Hex()
	return nil
}

func (s *Books) UpdateBook(ctx context.Context, id string, p book.Patch) (*book.Book, error) {
	if p.Empty() {
		return s.FindBookByID(ctx, id)
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	set := bson.M{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Author != nil {
		set["author"] = *p.Author
	}
	if p.PublicationYear != nil {
		set["publicationYear"] = *p.PublicationYear
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bookDoc
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, translate("update book", err)
	}
	b := doc.toBook()
	return &b, nil
}

func (s *Books) DeleteBook(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return translate("delete book", err)
	}
	return nil
}

type blacklistDoc struct {
	Token     string    `bson:"token"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

type Denylist struct {
	coll *mongo.Collection
}

func NewDenylist(db *mongo.Database) *Denylist {
	return &Denylist{coll: db.Collection(blacklistsCollection)}
}

func (s *Denylist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	if _, err := s.coll.InsertOne(ctx, blacklistDoc{Token: token, ExpiresAt: expiresAt.UTC()}); err != nil {
		return translate("denylist add", err)
	}
	return nil
}

func (s *Denylist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"token": token}, options.Count().SetLimit(1))
	if err != nil {
		return false, translate("denylist lookup", err)
	}
	return n > 0, nil
}

func (s *Denylist) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": before.UTC()}})
	if err != nil {
		return 0, translate("denylist purge", err)
	}
	return res.DeletedCount, nil
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, store.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
