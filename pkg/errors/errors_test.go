package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeDomain, "bad domain: %s", "[0, 1]")

	if err.Code != ErrCodeDomain {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeDomain)
	}

	if err.Message != "bad domain: [0, 1]" {
		t.Errorf("Message = %v, want %v", err.Message, "bad domain: [0, 1]")
	}

	expected := "DOMAIN_ERROR: bad domain: [0, 1]"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, cause, "failed to render")

	if err.Code != ErrCodeInternal {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInternal)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeDuplicateKey, "test"),
			code:     ErrCodeDuplicateKey,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeDuplicateKey, "test"),
			code:     ErrCodeDomain,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeDomain, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeDomain,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeMissingField, "test"), ErrCodeMissingField},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidConfig, "friendly message")); got != "friendly message" {
		t.Errorf("UserMessage() = %v, want %v", got, "friendly message")
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage() = %v, want %v", got, "plain error")
	}
}

func TestMissingField(t *testing.T) {
	err := MissingField(3, "value")
	if !Is(err, ErrCodeMissingField) {
		t.Fatalf("Is(MissingField) = false, want true")
	}

	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatal("errors.As(FieldError) = false, want true")
	}
	if fe.Index != 3 || fe.Field != "value" {
		t.Errorf("FieldError = %+v, want index 3 field value", fe)
	}
	if fe.Code() != ErrCodeMissingField {
		t.Errorf("Code() = %v, want %v", fe.Code(), ErrCodeMissingField)
	}
	if fe.Error() != `point 3: missing field "value"` {
		t.Errorf("Error() = %v", fe.Error())
	}
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{ErrCodeMissingField, true},
		{ErrCodeSurfaceUnavailable, true},
		{ErrCodeDomain, false},
		{ErrCodeDuplicateKey, false},
	}
	for _, tt := range tests {
		if got := IsRecoverable(New(tt.code, "x")); got != tt.want {
			t.Errorf("IsRecoverable(%s) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
