package testutil

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"haulage/internal/config"
	"haulage/internal/domain"
	"haulage/internal/infrastructure/database"
)

// SetupTestDB opens a private in-memory SQLite database with the schema
// applied. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()
	db, err := database.NewConnection(config.DatabaseConfig{
		Driver:       database.DriverSQLite,
		Path:         "file:" + name + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// InsertBranch stores a branch directly, bypassing the service layer.
func InsertBranch(t *testing.T, db *sql.DB, id, name string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO Branches (id, name, location, createdAt) VALUES (?, ?, ?, ?)`,
		id, name, name+" depot", time.Now().UTC())
	if err != nil {
		t.Fatalf("insert branch: %v", err)
	}
}

// GenerateJWT signs a token the way the API does, for handler tests.
func GenerateJWT(t *testing.T, secret string, user domain.User, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"exp":  time.Now().Add(ttl).Unix(),
	}
	if user.BranchID != "" {
		claims["branchId"] = user.BranchID
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}
