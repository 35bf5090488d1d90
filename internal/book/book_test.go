package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatchApplyOnlySuppliedFields(t *testing.T) {
	b := Book{ID: "1", Title: "Dune", Author: "Herbert", PublicationYear: 1965}
	title := "New"

	p := Patch{Title: &title}
	assert.False(t, p.Empty())
	p.Apply(&b)

	assert.Equal(t, Book{ID: "1", Title: "New", Author: "Herbert", PublicationYear: 1965}, b)
}

func TestPatchEmpty(t *testing.T) {
	b := Book{ID: "1", Title: "Dune", Author: "Herbert", PublicationYear: 1965}
	p := Patch{}
	assert.True(t, p.Empty())
	p.Apply(&b)
	assert.Equal(t, "Dune", b.Title)
}
