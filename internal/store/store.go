package store

import (
	"context"
	"errors"
	"time"

	"bookapi/internal/book"
	"bookapi/internal/user"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks bookapi/internal/store Users,Books,Denylist

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

type Users interface {
	CreateUser(ctx context.Context, u *user.User) error
	FindUserByEmail(ctx context.Context, email string) (*user.User, error)
	FindUserByID(ctx context.Context, id string) (*user.User, error)
}

type Books interface {
	ListBooks(ctx context.Context, f book.Filter) ([]book.Book, error)
	FindBookByID(ctx context.Context, id string) (*book.Book, error)
	CreateBook(ctx context.Context, b *book.Book) error
	// UpdateBook merges p into the stored record and returns the result.
	UpdateBook(ctx context.Context, id string, p book.Patch) (*book.Book, error)
	// DeleteBook succeeds whether or not the record existed.
	DeleteBook(ctx context.Context, id string) error
}

// Denylist records logged-out tokens until they would have expired anyway.
type Denylist interface {
	Add(ctx context.Context, token string, expiresAt time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// Stores bundles one backend's implementations.
type Stores struct {
	Users    Users
	Books    Books
	Denylist Denylist

	ping   func(context.Context) error
	closer []func(context.Context) error
}

func New(users Users, books Books, denylist Denylist, ping func(context.Context) error, closeFn func(context.Context) error) *Stores {
	s := &Stores{Users: users, Books: books, Denylist: denylist, ping: ping}
	if closeFn != nil {
		s.closer = append(s.closer, closeFn)
	}
	return s
}

// ReplaceDenylist swaps the deny-list backend and registers its cleanup.
func (s *Stores) ReplaceDenylist(d Denylist, closeFn func(context.Context) error) {
	s.Denylist = d
	if closeFn != nil {
		s.closer = append(s.closer, closeFn)
	}
}

func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Stores) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closer) - 1; i >= 0; i-- {
		if err := s.closer[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
