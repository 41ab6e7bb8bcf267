package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"app:pw@tcp(db:3306)/tutoplus?charset=utf8mb4&parseTime=true&loc=UTC",
		DSN("app", "pw", "db", "3306", "tutoplus"))
	assert.Equal(t,
		"app@tcp(db:3306)/tutoplus?charset=utf8mb4&parseTime=true&loc=UTC",
		DSN("app", "", "db", "3306", "tutoplus"))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	assert.NoError(t, err)
	assert.NotEmpty(t, entries)
}
