package errors_test

import (
	"errors"
	"net/http"
	"testing"

	perr "tradepost/internal/platform/errors"
)

func TestWrap_PreservesRootAndCode(t *testing.T) {
	root := errors.New("boom")
	err := perr.Wrap(root, perr.ErrorCodeDB, "query failed")

	if !errors.Is(err, root) {
		t.Fatal("expected wrapped error to match root via errors.Is")
	}
	if got := perr.CodeOf(err); got != perr.ErrorCodeDB {
		t.Fatalf("expected DB code, got %v", got)
	}
	if perr.Root(err) != root {
		t.Fatalf("expected Root to unwrap to the original error")
	}
}

func TestCodeOf_DefaultsToUnknown(t *testing.T) {
	if got := perr.CodeOf(errors.New("plain")); got != perr.ErrorCodeUnknown {
		t.Fatalf("expected unknown, got %v", got)
	}
	if got := perr.CodeOf(nil); got != perr.ErrorCodeUnknown {
		t.Fatalf("expected unknown for nil, got %v", got)
	}
}

func TestHTTPStatus_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{perr.Validationf("bad"), http.StatusBadRequest},
		{perr.NotFoundf("missing"), http.StatusNotFound},
		{perr.Unauthorizedf("who"), http.StatusUnauthorized},
		{perr.Unavailablef("down"), http.StatusServiceUnavailable},
		{perr.DBf("db"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := perr.HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestWithField_SurvivesWrapping(t *testing.T) {
	err := perr.WithField(perr.Validationf("amount out of range"), "amount")

	var pe *perr.Error
	if !errors.As(err, &pe) {
		t.Fatal("expected *perr.Error")
	}
	if pe.Field() != "amount" {
		t.Fatalf("expected field amount, got %q", pe.Field())
	}
}

func TestIsCode(t *testing.T) {
	err := perr.NotFoundf("nope")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatal("expected IsCode to match")
	}
	if perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatal("expected IsCode mismatch")
	}
}
