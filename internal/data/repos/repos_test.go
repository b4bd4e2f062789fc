package repos

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/medsupply-backend/internal/platform/errs"
)

func TestMapError(t *testing.T) {
	other := errors.New("boom")
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), errs.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errs.ErrConflict},
		{"fk violation", &pgconn.PgError{Code: "23503"}, errs.ErrInvalidArgument},
		{"duplicated key", gorm.ErrDuplicatedKey, errs.ErrConflict},
		{"passthrough", other, other},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError(tc.in)
			if !errors.Is(got, tc.want) {
				t.Fatalf("MapError(%v)=%v, want errors.Is %v", tc.in, got, tc.want)
			}
		})
	}
	if MapError(nil) != nil {
		t.Fatalf("nil should map to nil")
	}
}
