package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestNewPostgresRepository_RejectsBadURL(t *testing.T) {
	_, err := NewPostgresRepository(context.Background(), "mysql://root@localhost/flousi")
	if err == nil {
		t.Fatal("NewPostgresRepository() accepted a non-postgres url")
	}
	if errors.Is(err, ErrUnavailable) {
		t.Errorf("bad url reported as unavailable: %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{"connection failure", &pq.Error{Code: "08006", Message: "connection failure"}, true},
		{"too many connections", &pq.Error{Code: "53300", Message: "too many connections"}, true},
		{"admin shutdown", &pq.Error{Code: "57P01", Message: "terminating connection"}, true},
		{"unique violation", &pq.Error{Code: "23505", Message: "duplicate key"}, false},
		{"wrapped deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), true},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(classify(tt.err), ErrUnavailable); got != tt.unavailable {
				t.Errorf("classify(%v) unavailable = %v, want %v", tt.err, got, tt.unavailable)
			}
		})
	}
}
