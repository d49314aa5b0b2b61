package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddSearchPathToConnString(t *testing.T) {
	tests := []struct {
		name    string
		connStr string
		want    string
	}{
		{
			name:    "no query string",
			connStr: "postgres://u:p@localhost:5432/test",
			want:    "postgres://u:p@localhost:5432/test?search_path=s1",
		},
		{
			name:    "existing query string",
			connStr: "postgres://u:p@localhost:5432/test?sslmode=disable",
			want:    "postgres://u:p@localhost:5432/test?sslmode=disable&search_path=s1",
		},
		{
			name:    "keyword value dsn",
			connStr: "host=localhost port=5432 dbname=test",
			want:    "host=localhost port=5432 dbname=test search_path=s1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddSearchPathToConnString(tt.connStr, "s1"))
		})
	}
}

func TestGenerateSchemaName(t *testing.T) {
	name := GenerateSchemaName(t)

	assert.True(t, strings.HasPrefix(name, "test_testgenerateschemaname_"))
	assert.LessOrEqual(t, len(name), 63)
	assert.NotEqual(t, name, GenerateSchemaName(t))
	for _, r := range name {
		assert.True(t, (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_', "unexpected rune %q", r)
	}
}
