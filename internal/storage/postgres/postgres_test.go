package postgres

import (
	"context"
	"os"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Trangar/zettelkasten/internal/storage"
	"github.com/Trangar/zettelkasten/internal/storage/storagetest"
)

// The suite needs a disposable database; every table is dropped before each
// case.
func TestStore(t *testing.T) {
	dsn := os.Getenv("ZETTELKASTEN_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("ZETTELKASTEN_TEST_POSTGRES not set")
	}
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		s, err := Open(context.Background(), dsn, WithBcryptCost(bcrypt.MinCost))
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if err := s.db.Migrator().DropTable(&userRow{}, &zettelRow{}, &configRow{}); err != nil {
			t.Fatalf("drop tables: %v", err)
		}
		s.Close()

		s, err = Open(context.Background(), dsn, WithBcryptCost(bcrypt.MinCost))
		if err != nil {
			t.Fatalf("reopen: %v", err)
		}
		return s
	})
}

func TestUserRowConversion(t *testing.T) {
	last := int64(7)
	u := userRow{ID: 3, Username: "alice", Password: "hash", LastVisitedZettel: &last}.toUser()
	if u.ID != 3 || u.Name != "alice" || u.LastVisitedZettel != 7 {
		t.Fatalf("unexpected user %+v", u)
	}
	if got := (userRow{ID: 1}).toUser().LastVisitedZettel; got != 0 {
		t.Fatalf("expected no last visited zettel, got %d", got)
	}
}
