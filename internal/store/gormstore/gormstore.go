// Package gormstore implements the store interfaces on a relational
// database through GORM (Postgres in production, SQLite for tests).
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookapi/internal/book"
	"bookapi/internal/store"
	"bookapi/internal/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlacklistedToken is the deny-list row.
type BlacklistedToken struct {
	Token     string    `gorm:"primaryKey;type:varchar(2048)"`
	ExpiresAt time.Time `gorm:"index;not null"`
}

func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&user.User{}, &book.Book{}, &BlacklistedToken{})
}

// Open wraps an already-migrated *gorm.DB into store.Stores.
func Open(gdb *gorm.DB) (*store.Stores, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	return store.New(
		&Users{DB: gdb},
		&Books{DB: gdb},
		&Denylist{DB: gdb},
		sqlDB.PingContext,
		func(context.Context) error { return sqlDB.Close() },
	), nil
}

type Users struct {
	DB *gorm.DB
}

func (s *Users) CreateUser(ctx context.Context, u *user.User) error {
	if u.ID == "" {
		u.ID = newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return translate("create user", err)
	}
	return nil
}

func (s *Users) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate("find user by email", err)
	}
	return &u, nil
}

func (s *Users) FindUserByID(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate("find user by id", err)
	}
	return &u, nil
}

type Books struct {
	DB *gorm.DB
}

func (s *Books) ListBooks(ctx context.Context, f book.Filter) ([]book.Book, error) {
	q := s.DB.WithContext(ctx).Model(&book.Book{})
	if f.Author != nil {
		q = q.Where("author = ?", *f.Author)
	}
	if f.PublicationYear != nil {
		q = q.Where("publication_year = ?", *f.PublicationYear)
	}

	out := []book.Book{}
	if err := q.Order("id asc").Find(&out).Error; err != nil {
		return nil, translate("list books", err)
	}
	return out, nil
}

func (s *Books) FindBookByID(ctx context.Context, id string) (*book.Book, error) {
	var b book.Book
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, translate("find book", err)
	}
	return &b, nil
}

func (s *Books) CreateBook(ctx context.Context, b *book.Book) error {
	if b.ID == "" {
		b.ID = newID()
	}
	if err := s.DB.WithContext(ctx).Create(b).Error; err != nil {
		return translate("create book", err)
	}
	return nil
}

func (s *Books) UpdateBook(ctx context.Context, id string, p book.Patch) (*book.Book, error) {
	if p.Empty() {
		return s.FindBookByID(ctx, id)
	}

	fields := map[string]any{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Author != nil {
		fields["author"] = *p.Author
	}
	if p.PublicationYear != nil {
		fields["publication_year"] = *p.PublicationYear
	}

	res := s.DB.WithContext(ctx).Model(&book.Book{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate("update book", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return s.FindBookByID(ctx, id)
}

func (s *Books) DeleteBook(ctx context.Context, id string) error {
	if err := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&book.Book{}).Error; err != nil {
		return translate("delete book", err)
	}
	return nil
}

type Denylist struct {
	DB *gorm.DB
}

func (s *Denylist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	row := BlacklistedToken{Token: token, ExpiresAt: expiresAt.UTC()}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return translate("denylist add", err)
	}
	return nil
}

func (s *Denylist) Contains(ctx context.Context, token string) (bool, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&BlacklistedToken{}).Where("token = ?", token).Count(&n).Error; err != nil {
		return false, translate("denylist lookup", err)
	}
	return n > 0, nil
}

func (s *Denylist) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Where("expires_at < ?", before.UTC()).Delete(&BlacklistedToken{})
	if res.Error != nil {
		return 0, translate("denylist purge", res.Error)
	}
	return res.RowsAffected, nil
}

// newID returns a time-ordered UUID so "order by id" follows insertion.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case isDuplicate(err):
		return fmt.Errorf("%s: %w", op, store.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// isDuplicate also matches raw driver messages for dialects that do not
// translate errors.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
