package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/siegrin/basecamp-backend/pkg/migrate"
)

func TestInitMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE availability AS ENUM",
		"CREATE TYPE rental_status AS ENUM",
		"CREATE TYPE user_role AS ENUM",
		"CREATE TABLE users",
		"CREATE TABLE categories",
		"CREATE TABLE subcategories",
		"CREATE TABLE products",
		"CREATE TABLE rentals",
		"CREATE TABLE settings",
		"CREATE TABLE activity_log_entries",
		"CREATE TABLE analytics_snapshots",
		"CHECK (stock >= 0)",
		"INSERT INTO analytics_snapshots (id) VALUES (1)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
