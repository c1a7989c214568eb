package store_test

import (
	"context"
	"errors"
	"testing"

	"scriptura/pkg/scripture"
	"scriptura/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStore() *store.Store {
	return store.New(store.NewMemoryDriver(store.SampleFixture()))
}

func TestResolveVerse(t *testing.T) {
	p, err := sampleStore().Resolve(context.Background(),
		scripture.Query{Book: "John", Chapter: 3, Verse: 16, Translation: "bsb"})
	require.NoError(t, err)

	assert.Equal(t, "BSB", p.Translation)
	require.Len(t, p.Lines, 1)
	assert.Equal(t, 16, p.Lines[0].Number)
}

func TestResolveChapterInOrder(t *testing.T) {
	p, err := sampleStore().Resolve(context.Background(),
		scripture.Query{Book: "Psalms", Chapter: 117, Translation: "KJV"})
	require.NoError(t, err)

	require.Len(t, p.Lines, 2)
	assert.Equal(t, 1, p.Lines[0].Number)
	assert.Equal(t, 2, p.Lines[1].Number)
}

func TestResolveNotFound(t *testing.T) {
	tests := []struct {
		name string
		q    scripture.Query
		want error
	}{
		{"translation", scripture.Query{Book: "John", Chapter: 3, Verse: 16, Translation: "XYZ"}, store.ErrTranslationNotFound},
		{"book", scripture.Query{Book: "Hezekiah", Chapter: 1, Verse: 1, Translation: "BSB"}, store.ErrBookNotFound},
		{"verse", scripture.Query{Book: "John", Chapter: 3, Verse: 99, Translation: "BSB"}, store.ErrVerseNotFound},
		{"chapter", scripture.Query{Book: "John", Chapter: 21, Translation: "BSB"}, store.ErrChapterNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sampleStore().Resolve(context.Background(), tt.q)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, store.IsNotFound(err))
		})
	}
}

func TestTranslationUnavailableNamesCodes(t *testing.T) {
	_, err := sampleStore().Resolve(context.Background(),
		scripture.Query{Book: "John", Chapter: 3, Verse: 16, Translation: "xyz"})

	var unavailable *store.TranslationUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "XYZ", unavailable.Requested)
	assert.Equal(t, []string{"BSB", "KJV"}, unavailable.Available)
	assert.Contains(t, err.Error(), "XYZ")
	assert.Contains(t, err.Error(), "available")
	assert.NotContains(t, err.Error(), "For God so loved")
}

func TestJoinCodes(t *testing.T) {
	assert.Equal(t, "(none found)", store.JoinCodes(nil))
	assert.Equal(t, "BSB, KJV", store.JoinCodes([]string{"BSB", "KJV"}))
}
