package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := WithMetadata(CodeGateUnknown, "unknown gate", map[string]string{"gate_id": "g1"})

	if !stderrors.Is(err, New(CodeGateUnknown, "")) {
		t.Errorf("errors.Is should match by code")
	}
	if stderrors.Is(err, New(CodeVersionUnknown, "")) {
		t.Errorf("errors.Is should not match a different code")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("read failed")
	err := Wrap(CodeDocumentUnreadable, "load document", cause)

	if !stderrors.Is(err, cause) {
		t.Errorf("wrapped cause should be reachable via errors.Is")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"domain error", New(CodeOverlayInvalid, "bad overlay"), CodeOverlayInvalid},
		{"wrapped domain error", fmt.Errorf("outer: %w", New(CodeVersionUnknown, "no such version")), CodeVersionUnknown},
		{"plain error", fmt.Errorf("plain"), CodeUnknown},
		{"nil", nil, CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFatalTiers(t *testing.T) {
	fatal := []Code{
		CodeSelectionNoActive,
		CodeValidationDuplicateGateID,
		CodeCompilationUnknownToken,
	}
	for _, code := range fatal {
		if !code.Fatal() {
			t.Errorf("%s should be startup-fatal", code)
		}
	}

	requestScoped := []Code{CodeGateUnknown, CodeVersionUnknown, CodeOverlayInvalid}
	for _, code := range requestScoped {
		if code.Fatal() {
			t.Errorf("%s should be request-scoped", code)
		}
	}
}
