package book

// Book is a catalogue record. Books have no owner.
type Book struct {
	ID              string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title           string `json:"title" gorm:"not null"`
	Author          string `json:"author" gorm:"index;not null"`
	PublicationYear int    `json:"publicationYear" gorm:"index;not null"`
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	Title           *string
	Author          *string
	PublicationYear *int
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Author == nil && p.PublicationYear == nil
}

// Apply merges the supplied fields into b.
func (p Patch) Apply(b *Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.PublicationYear != nil {
		b.PublicationYear = *p.PublicationYear
	}
}

// Filter selects books by exact match. Zero value selects all.
type Filter struct {
	Author          *string
	PublicationYear *int
}
