package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindManyQuery(t *testing.T) {
	t.Run("no filter", func(t *testing.T) {
		query, args := findManyQuery("product", nil)
		assert.Equal(t, "SELECT id, body FROM documents WHERE collection = $1 ORDER BY seq", query)
		assert.Equal(t, []any{"product"}, args)
	})

	t.Run("filters are ordered by key", func(t *testing.T) {
		query, args := findManyQuery("product", Filter{"title": "Tee", "category": "t-shirts"})
		assert.Equal(t,
			"SELECT id, body FROM documents WHERE collection = $1"+
				" AND body ->> $2::text = $3::text"+
				" AND body ->> $4::text = $5::text"+
				" ORDER BY seq",
			query)
		assert.Equal(t, []any{"product", "category", "t-shirts", "title", "Tee"}, args)
	})
}
