package intake

import (
	"errors"
	"testing"
)

func TestValidateRequiresEmail(t *testing.T) {
	tests := []struct {
		name    string
		req     SubmitRequest
		wantErr error
	}{
		{
			name:    "empty request",
			req:     SubmitRequest{},
			wantErr: ErrMissingEmail,
		},
		{
			name:    "whitespace email",
			req:     SubmitRequest{Email: "   "},
			wantErr: ErrMissingEmail,
		},
		{
			name: "email only is enough",
			req:  SubmitRequest{Email: "jane@example.com"},
		},
		{
			name: "full submission",
			req: SubmitRequest{
				Name:        "Jane Doe",
				Email:       "jane@example.com",
				Business:    "Doe Landscaping",
				PrimaryGoal: "more leads",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTrimsFields(t *testing.T) {
	req := SubmitRequest{
		Name:  "  Jane Doe  ",
		Email: " jane@example.com ",
		Phone: "\t555-0100\n",
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if req.Name != "Jane Doe" {
		t.Errorf("Name = %q", req.Name)
	}
	if req.Email != "jane@example.com" {
		t.Errorf("Email = %q", req.Email)
	}
	if req.Phone != "555-0100" {
		t.Errorf("Phone = %q", req.Phone)
	}
}

func TestNewRecordAssignsIDAndTimestamp(t *testing.T) {
	req := SubmitRequest{Email: "jane@example.com", Name: "Jane Doe"}
	rec := NewRecord(&req)

	if rec.ID == "" {
		t.Fatal("expected non-empty id")
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
	if rec.Email != "jane@example.com" || rec.Name != "Jane Doe" {
		t.Fatalf("record fields not copied: %+v", rec)
	}
}

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewID()
		if id == "" {
			t.Fatal("empty id")
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q after %d draws", id, i)
		}
		seen[id] = struct{}{}
	}
}
