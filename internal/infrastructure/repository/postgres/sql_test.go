package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
)

func TestIsRetryableStatementError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bind mismatch", errors.New(`pq: bind message supplies 2 parameters, but prepared statement "" requires 1 (08P01)`), true},
		{"unnamed statement gone", errors.New("pq: unnamed prepared statement does not exist (26000)"), true},
		{"statement code only", errors.New("pq: prepared statement missing (26000)"), true},
		{"missing relation", errors.New("pq: relation warehouse_rows does not exist"), false},
		{"wrapped", fmt.Errorf("get table header: %w", errors.New("pq: unnamed prepared statement does not exist")), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isRetryableStatementError(tc.err); got != tc.want {
				t.Fatalf("isRetryableStatementError(%v) = %t, want %t", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	if !isNotFound(fmt.Errorf("header: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(errors.New("connection refused")) {
		t.Fatalf("expected unrelated error to be found")
	}
}
