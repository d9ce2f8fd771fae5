package repo

import (
	"path/filepath"
	"testing"

	"github.com/talentwire/go-messaging-core/internal/domain"
)

func TestOpenSQLite_AndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "open_test.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	// The migrated schema must accept a minimal conversation row.
	if err := db.Create(&domain.Conversation{ID: "c1"}).Error; err != nil {
		t.Fatalf("insert after migrate: %v", err)
	}
	var got domain.Conversation
	if err := db.First(&got, "id = ?", "c1").Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != domain.ConversationActive {
		t.Fatalf("default status not applied: %q", got.Status)
	}
}

func TestOpenSQLite_BadPath(t *testing.T) {
	if _, err := OpenSQLite(filepath.Join(t.TempDir(), "missing-dir", "x", "y.db")); err == nil {
		t.Fatal("expected error for unwritable path")
	}
}
