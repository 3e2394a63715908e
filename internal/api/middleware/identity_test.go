package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity_CopiesHeadersIntoContext(t *testing.T) {
	var gotID, gotEmail string
	handler := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = UserID(r.Context())
		gotEmail = UserEmail(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set(HeaderUserID, "user-1")
	req.Header.Set(HeaderUserEmail, "user1@example.com")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "user-1", gotID)
	assert.Equal(t, "user1@example.com", gotEmail)
}

func TestIdentity_MissingHeaders(t *testing.T) {
	var gotID, gotEmail string
	handler := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = UserID(r.Context())
		gotEmail = UserEmail(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders", nil))

	assert.Empty(t, gotID)
	assert.Empty(t, gotEmail)
}
