// Package storetest runs the same behavioural checks against every store.Driver.
package storetest

import (
	"context"
	"testing"

	"scriptura/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunReaderSuite exercises d, which must be loaded with store.SampleFixture().
func RunReaderSuite(t *testing.T, d store.Driver) {
	t.Helper()
	s := store.New(d)
	ctx := context.Background()

	t.Run("FindTranslationIgnoresCase", func(t *testing.T) {
		require.NoError(t, s.View(ctx, func(r store.Reader) error {
			tr, err := r.FindTranslation(ctx, "kjv")
			require.NoError(t, err)
			require.NotNil(t, tr)
			assert.Equal(t, "KJV", tr.Shortname)
			assert.Equal(t, 1611, tr.Year)

			missing, err := r.FindTranslation(ctx, "XYZ")
			assert.NoError(t, err)
			assert.Nil(t, missing)
			return nil
		}))
	})

	t.Run("ListTranslations", func(t *testing.T) {
		var first, second []string
		for _, out := range []*[]string{&first, &second} {
			require.NoError(t, s.View(ctx, func(r store.Reader) error {
				list, err := r.ListTranslations(ctx)
				*out = store.TranslationCodes(list)
				return err
			}))
		}
		assert.Equal(t, []string{"BSB", "KJV"}, first)
		assert.Equal(t, first, second)
	})

	t.Run("FindBookIsExact", func(t *testing.T) {
		require.NoError(t, s.View(ctx, func(r store.Reader) error {
			b, err := r.FindBook(ctx, "John")
			require.NoError(t, err)
			require.NotNil(t, b)
			assert.Equal(t, int64(43), b.ID)

			b, err = r.FindBook(ctx, "Jn")
			assert.NoError(t, err)
			assert.Nil(t, b)
			return nil
		}))
	})

	t.Run("FindVerse", func(t *testing.T) {
		require.NoError(t, s.View(ctx, func(r store.Reader) error {
			tr, _ := r.FindTranslation(ctx, "BSB")
			b, _ := r.FindBook(ctx, "John")

			v, err := r.FindVerse(ctx, tr, b, 3, 16)
			require.NoError(t, err)
			require.NotNil(t, v)
			assert.Contains(t, v.Text, "For God so loved the world")

			v, err = r.FindVerse(ctx, tr, b, 3, 99)
			assert.NoError(t, err)
			assert.Nil(t, v)
			return nil
		}))
	})

	t.Run("FindVersesAscending", func(t *testing.T) {
		require.NoError(t, s.View(ctx, func(r store.Reader) error {
			tr, _ := r.FindTranslation(ctx, "KJV")
			b, _ := r.FindBook(ctx, "Psalms")

			verses, err := r.FindVerses(ctx, tr, b, 117)
			require.NoError(t, err)
			require.Len(t, verses, 2)
			for i := 1; i < len(verses); i++ {
				assert.Less(t, verses[i-1].Number, verses[i].Number)
			}

			empty, err := r.FindVerses(ctx, tr, b, 150)
			assert.NoError(t, err)
			assert.Empty(t, empty)
			return nil
		}))
	})
}
