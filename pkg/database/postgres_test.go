package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/tutor-schedule-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "tutor", Password: "secret", Name: "tutor_center", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=tutor password=secret dbname=tutor_center sslmode=disable connect_timeout=5", dsn)
}
