package sqlxrepos

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mafunzo/core"
)

func TestOrderByClause(t *testing.T) {
	allowed := map[string]bool{"id": true, "username": true}

	tests := []struct {
		name     string
		ordering []core.DBOrdering
		def      string
		want     string
	}{
		{name: "default", def: "id ASC", want: " ORDER BY id ASC"},
		{name: "no default", want: ""},
		{
			name:     "allowed fields",
			ordering: []core.DBOrdering{{Field: "username", Ascending: true}, {Field: "id"}},
			def:      "id ASC",
			want:     " ORDER BY username ASC, id DESC",
		},
		{
			name:     "unknown fields dropped",
			ordering: []core.DBOrdering{{Field: "password_hash"}},
			def:      "id ASC",
			want:     " ORDER BY id ASC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orderByClause(tt.ordering, allowed, tt.def))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}
