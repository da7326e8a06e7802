package memory

import (
	"testing"

	"github.com/Trangar/zettelkasten/internal/storage"
	"github.com/Trangar/zettelkasten/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage { return New() })
}
