package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewOwnerError(t *testing.T) {
	cause := errors.New("underlying error")
	fixes := []FixAction{{Type: RunCommand, Command: "git status"}}

	err := NewOwnerError(NotARepository, "This file is not in a git repository", cause, fixes)

	if err.Code != NotARepository {
		t.Errorf("Code = %v, want %v", err.Code, NotARepository)
	}
	if err.Message != "This file is not in a git repository" {
		t.Errorf("Message = %q", err.Message)
	}
	if len(err.SuggestedFixes) != 1 {
		t.Errorf("len(SuggestedFixes) = %d, want 1", len(err.SuggestedFixes))
	}
}

func TestOwnerError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      VcsCommandFailed,
			message:   "Git command failed",
			cause:     errors.New("fatal: bad revision"),
			wantParts: []string{"VCS_COMMAND_FAILED", "Git command failed", "fatal: bad revision"},
		},
		{
			name:      "without cause",
			code:      Timeout,
			message:   "Git command timed out",
			wantParts: []string{"TIMEOUT", "Git command timed out"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewOwnerError(tt.code, tt.message, tt.cause, nil).Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestOwnerError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewOwnerError(InternalError, "something went wrong", cause, nil)

	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}
	if got := NewOwnerError(Timeout, "timed out", nil, nil).Unwrap(); got != nil {
		t.Errorf("Unwrap() without cause = %v, want nil", got)
	}
}

func TestOwnerError_WithDetails(t *testing.T) {
	err := NewOwnerError(VcsCommandFailed, "Git command failed", nil, nil).
		WithDetails(map[string]interface{}{"stderr": "boom"})

	details, ok := err.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("Details has type %T, want map", err.Details)
	}
	if details["stderr"] != "boom" {
		t.Errorf("Details[stderr] = %v, want boom", details["stderr"])
	}
}

func TestCodeOf(t *testing.T) {
	base := NewOwnerError(NotARepository, "not a repo", nil, nil)
	wrapped := fmt.Errorf("history lookup: %w", base)

	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"direct", base, NotARepository},
		{"wrapped", wrapped, NotARepository},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}

	if !IsCode(wrapped, NotARepository) {
		t.Error("IsCode(wrapped, NotARepository) = false, want true")
	}
	if IsCode(wrapped, VcsCommandFailed) {
		t.Error("IsCode(wrapped, VcsCommandFailed) = true, want false")
	}
	if IsCode(nil, NotARepository) {
		t.Error("IsCode(nil) = true, want false")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "not a repository is verbatim",
			err:  NewOwnerError(NotARepository, "This file is not in a git repository", errors.New("exit status 128"), nil),
			want: "This file is not in a git repository",
		},
		{
			name: "vcs failure carries diagnostic",
			err:  NewOwnerError(VcsCommandFailed, "Git command failed", errors.New("fatal: no such path"), nil),
			want: "Git error: fatal: no such path",
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetSuggestedFixes(t *testing.T) {
	fixes := GetSuggestedFixes(NotARepository)
	if len(fixes) == 0 {
		t.Fatal("GetSuggestedFixes(NotARepository) returned no fixes")
	}
	if fixes[0].Command != "git status" || !fixes[0].Safe {
		t.Errorf("fixes[0] = %+v, want safe 'git status'", fixes[0])
	}

	if got := GetSuggestedFixes(ContentUnavailable); got != nil {
		t.Errorf("GetSuggestedFixes(ContentUnavailable) = %+v, want nil", got)
	}
}
