package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/bdzone/staffboard/core/apitoken"
)

func Test_tokenApi(t *testing.T) {
	app := setup(t)
	token := adminToken(t)

	var created apitoken.Token
	t.Run("create shows the secret once", func(t *testing.T) {
		body := []byte(`{"name": "Discord Bot", "source": "Discord"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/tokens", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v, want 201; body %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("unmarshalling Token: %v", err)
		}
		if !strings.HasPrefix(created.Secret, "bdz_") || strings.Contains(created.Secret, "*") {
			t.Errorf("secret = %q, want the full form", created.Secret)
		}
		if created.Source != "discord" {
			t.Errorf("source = %q, want normalized discord", created.Source)
		}
		if !created.IsActive {
			t.Error("new token is not active")
		}
	})

	t.Run("source is required", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"source": "this field is required"}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/tokens", token, []byte(`{"name": "x"}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("query masks secrets", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/tokens", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v, want 200", rec.Code)
		}
		var tokens []apitoken.Token
		if err := json.Unmarshal(rec.Body.Bytes(), &tokens); err != nil {
			t.Fatalf("unmarshalling tokens: %v", err)
		}
		if len(tokens) != 1 {
			t.Fatalf("len(tokens) = %d, want 1", len(tokens))
		}
		if tokens[0].Secret == created.Secret {
			t.Error("query leaked a full secret")
		}
	})

	t.Run("deactivate", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/tokens/"+created.ID+"/active", token, []byte(`{"is_active": false}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v, want 200; body %s", rec.Code, rec.Body.String())
		}
		var tok apitoken.Token
		if err := json.Unmarshal(rec.Body.Bytes(), &tok); err != nil {
			t.Fatalf("unmarshalling Token: %v", err)
		}
		if tok.IsActive {
			t.Error("token still active")
		}

		// is_active must be explicit
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"is_active": "this field is required"}),
		}
		req, rec = newAuthRequest(http.MethodPut, "/v1/tokens/"+created.ID+"/active", token, []byte(`{}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("deactivate unknown", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "api token not found"}),
		}
		req, rec := newAuthRequest(http.MethodPut, "/v1/tokens/nope/active", token, []byte(`{"is_active": true}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/tokens/"+created.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v, want 204", rec.Code)
		}
		req, rec = newAuthRequest(http.MethodDelete, "/v1/tokens/"+created.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v, want 404", rec.Code)
		}
	})
}
