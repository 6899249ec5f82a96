package apperrors

import (
	"fmt"
	"strings"
	"testing"
)

func TestErrorCreation(t *testing.T) {
	err := E(Op("ingest.upsert"), KindValidation, "bad paper")

	if err.Op != "ingest.upsert" {
		t.Errorf("expected Op 'ingest.upsert', got %q", err.Op)
	}
	if err.Kind != KindValidation {
		t.Errorf("expected KindValidation, got %v", err.Kind)
	}
	if err.Msg != "bad paper" {
		t.Errorf("expected Msg 'bad paper', got %q", err.Msg)
	}
}

func TestErrorWithWrappedError(t *testing.T) {
	underlying := fmt.Errorf("connection refused")
	err := E(Op("repository.upsertPaper"), KindTransientExternal, underlying, "failed to connect")

	if err.Err != underlying {
		t.Error("expected underlying error to be set")
	}

	errStr := err.Error()
	for _, want := range []string{"repository.upsertPaper", "failed to connect", "connection refused"} {
		if !strings.Contains(errStr, want) {
			t.Errorf("error string %q should contain %q", errStr, want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	underlying := fmt.Errorf("root cause")
	err := E(Op("test"), underlying)

	if unwrapped := err.Unwrap(); unwrapped != underlying {
		t.Error("Unwrap should return the underlying error")
	}
}

func TestErrorStringFormats(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{"op only", &Error{Op: "test"}, "test: "},
		{"msg only", &Error{Msg: "failed"}, "failed"},
		{"err only", &Error{Err: fmt.Errorf("root")}, "root"},
		{"op and msg", &Error{Op: "test", Msg: "failed"}, "test: failed"},
		{"all fields", &Error{Op: "test", Msg: "failed", Err: fmt.Errorf("root")}, "test: failed: root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindUnknown, "unknown"},
		{KindValidation, "validation"},
		{KindNotFound, "not_found"},
		{KindTransientExternal, "transient_external"},
		{KindPersistenceConflict, "persistence_conflict"},
		{KindParse, "parse"},
		{KindPolicy, "policy"},
		{KindCancelled, "cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if wrapped := Wrap("test", nil); wrapped != nil {
		t.Error("Wrap(nil) should return nil")
	}

	underlying := fmt.Errorf("test error")
	wrapped := Wrap("repository.query", underlying)
	appErr, ok := wrapped.(*Error)
	if !ok {
		t.Fatal("Wrap should return *Error")
	}
	if appErr.Op != "repository.query" {
		t.Errorf("expected Op 'repository.query', got %q", appErr.Op)
	}
}

func TestWrapMsg(t *testing.T) {
	if wrapped := WrapMsg("test", "msg", nil); wrapped != nil {
		t.Error("WrapMsg(nil) should return nil")
	}

	wrapped := WrapMsg("repository.query", "query failed", fmt.Errorf("test error"))
	if !strings.Contains(wrapped.Error(), "query failed") {
		t.Errorf("error should contain message, got %q", wrapped.Error())
	}
}

func TestIs(t *testing.T) {
	err := E(KindNotFound, "missing")
	if !Is(err, KindNotFound) {
		t.Error("expected Is to return true for matching kind")
	}
	if Is(err, KindValidation) {
		t.Error("expected Is to return false for non-matching kind")
	}
	if Is(fmt.Errorf("plain"), KindNotFound) {
		t.Error("expected Is to return false for a non-*Error")
	}
}

func TestKindOfUnwrapsWrapped(t *testing.T) {
	base := E(Op("inner"), KindPolicy, "blocked")
	wrapped := fmt.Errorf("outer context: %w", base)
	if KindOf(wrapped) != KindPolicy {
		t.Errorf("expected KindPolicy through fmt.Errorf wrapping, got %v", KindOf(wrapped))
	}
}

func TestSkipCounter(t *testing.T) {
	sc := NewSkipCounter()

	if sc.Total() != 0 {
		t.Errorf("expected initial total 0, got %d", sc.Total())
	}

	sc.Record(Op("sources.pubmed.search"))
	sc.Record(Op("sources.pubmed.search"))
	sc.Record(Op("sources.biorxiv.search"))

	snap := sc.Snapshot()
	if snap["sources.pubmed.search"] != 2 {
		t.Errorf("expected 2 pubmed skips, got %d", snap["sources.pubmed.search"])
	}
	if sc.Total() != 3 {
		t.Errorf("expected total 3, got %d", sc.Total())
	}
}

func TestStrings(t *testing.T) {
	errs := []error{fmt.Errorf("a"), nil, fmt.Errorf("b")}
	got := Strings(errs)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("unexpected Strings() output: %v", got)
	}
}
