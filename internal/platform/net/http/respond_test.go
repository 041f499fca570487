package http_test

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	perr "tradepost/internal/platform/errors"
	phttp "tradepost/internal/platform/net/http"
)

func serve(t *testing.T, resp phttp.Response) (*httptest.ResponseRecorder, phttp.Envelope) {
	t.Helper()
	h := phttp.Handle(func(*stdhttp.Request) phttp.Response { return resp })
	req := httptest.NewRequest(stdhttp.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var env phttp.Envelope
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("bad envelope: %v body %s", err, rr.Body.String())
		}
	}
	return rr, env
}

func TestHandle_OKEnvelope(t *testing.T) {
	rr, env := serve(t, phttp.OK(map[string]string{"hello": "world"}))
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if env.StatusCode != 200 || env.Status != "OK" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Ephemeral {
		t.Fatal("did not expect ephemeral")
	}
}

func TestHandle_ErrorBodyDerivesStatus(t *testing.T) {
	rr, env := serve(t, phttp.Error(perr.NotFoundf("Item not found.")))
	if rr.Code != stdhttp.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if env.Error != "Item not found." {
		t.Fatalf("unexpected error message %q", env.Error)
	}
	if env.Code != perr.ErrorCodeNotFound {
		t.Fatalf("unexpected code %v", env.Code)
	}
}

func TestHandle_EphemeralFlagSerialized(t *testing.T) {
	_, env := serve(t, phttp.Ephemeral(phttp.OK("shh")))
	if !env.Ephemeral {
		t.Fatal("expected ephemeral envelope")
	}
}

func TestHandle_NoContentHasEmptyBody(t *testing.T) {
	rr, _ := serve(t, phttp.NoContent())
	if rr.Code != stdhttp.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %s", rr.Body.String())
	}
}
