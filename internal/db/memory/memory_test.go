package memory

import (
	"testing"

	"github.com/quizforge/packadmin/internal/db"
	"github.com/quizforge/packadmin/internal/db/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) db.Store { return New() })
}
