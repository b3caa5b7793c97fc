package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	other := errors.New("connection reset")

	cases := []struct {
		name string
		in   error
		want string
		is   error
	}{
		{name: "nil", in: nil},
		{name: "not found", in: gorm.ErrRecordNotFound, want: "not found", is: ErrNotFound},
		{
			name: "unique constraint",
			in:   fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}),
			want: "email already exists",
			is:   ErrDuplicate,
		},
		{
			name: "unique column",
			in:   &pgconn.PgError{Code: "23505", ColumnName: "name"},
			want: "name already exists",
			is:   ErrDuplicate,
		},
		{name: "gorm duplicate", in: gorm.ErrDuplicatedKey, want: "unique field already exists", is: ErrDuplicate},
		{name: "passthrough", in: other, want: "connection reset", is: other},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translate(tc.in)
			if tc.in == nil {
				require.NoError(t, got)
				return
			}
			require.ErrorIs(t, got, tc.is)
			assert.Equal(t, tc.want, got.Error())
		})
	}
}

func TestUserPublicID(t *testing.T) {
	u := User{ID: 42}
	assert.Equal(t, "42", u.PublicID())
}
