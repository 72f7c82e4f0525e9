package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind StatusKind
		wantMsg  string
	}{
		{
			name:     "Success",
			err:      nil,
			wantKind: StatusOK,
			wantMsg:  "Image added to database",
		},
		{
			name:     "Schema already exists is informational",
			err:      ErrSchemaAlreadyExists,
			wantKind: StatusInfo,
			wantMsg:  "table 'images' already exists",
		},
		{
			name:     "Empty path prompt",
			err:      validationError(promptPath),
			wantKind: StatusRejected,
			wantMsg:  "rejected: please type in the image path to add it to the database",
		},
		{
			name:     "Not connected",
			err:      ErrNotConnected,
			wantKind: StatusRejected,
			wantMsg:  "rejected: must connect to the database first",
		},
		{
			name:     "Connection failure",
			err:      fmt.Errorf("%w: %w", ErrConnection, errors.New("dial tcp: connection refused")),
			wantKind: StatusError,
			wantMsg:  "failed to connect: dial tcp: connection refused",
		},
		{
			name:     "Schema failure",
			err:      fmt.Errorf("%w: %w", ErrSchema, errors.New("permission denied")),
			wantKind: StatusError,
			wantMsg:  "failed to create table: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StatusFromError(tt.err, "Image added to database")
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got.Kind, tt.wantKind)
			}
			if got.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMsg)
			}
		})
	}
}
