package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoresCloseRunsInReverseAndJoinsErrors(t *testing.T) {
	var order []string
	boom := errors.New("boom")

	s := New(nil, nil, nil, nil, func(context.Context) error {
		order = append(order, "primary")
		return nil
	})
	s.ReplaceDenylist(nil, func(context.Context) error {
		order = append(order, "denylist")
		return boom
	})

	err := s.Close(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"denylist", "primary"}, order)
}

func TestStoresPingWithoutProbe(t *testing.T) {
	s := New(nil, nil, nil, nil, nil)
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close(context.Background()))
}
