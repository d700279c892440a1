package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, 42)
	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	uid, ok := ParseSession(r)
	if !ok || uid != 42 {
		t.Fatalf("expected uid 42, got %d ok=%v", uid, ok)
	}
}

func TestSessionTamperedSignature(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, 42)
	c := w.Result().Cookies()[0]
	// Change the uid while keeping the signature
	c.Value = "43." + c.Value[len("42."):]
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)
	if _, ok := ParseSession(r); ok {
		t.Fatal("tampered cookie must not parse")
	}
}

func TestSessionMalformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "garbage"})
	if _, ok := ParseSession(r); ok {
		t.Fatal("malformed cookie must not parse")
	}
}

func TestMiddlewareRejectedUserClearsCookie(t *testing.T) {
	SetUserVerifier(func(ctx context.Context, uid uint) (bool, error) { return false, nil })
	defer SetUserVerifier(nil)

	w := httptest.NewRecorder()
	CreateSession(w, 7)
	cookie := w.Result().Cookies()[0]

	var sawUID bool
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawUID = UserIDFromContext(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookie)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, r)

	if sawUID {
		t.Fatal("rejected session must stay anonymous")
	}
	cleared := false
	for _, c := range resp.Result().Cookies() {
		if c.Name == "session" && c.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expected session cookie to be cleared")
	}
}

func TestMiddlewareVerifierErrorKeepsCookie(t *testing.T) {
	SetUserVerifier(func(ctx context.Context, uid uint) (bool, error) {
		return false, errors.New("store unreachable")
	})
	defer SetUserVerifier(nil)

	w := httptest.NewRecorder()
	CreateSession(w, 7)
	cookie := w.Result().Cookies()[0]

	var sawUID bool
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawUID = UserIDFromContext(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookie)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, r)

	if sawUID {
		t.Fatal("request must proceed anonymous while the store is unreachable")
	}
	for _, c := range resp.Result().Cookies() {
		if c.Name == "session" && c.Value == "" {
			t.Fatal("a verifier error must not clear the session cookie")
		}
	}
}

func TestMiddlewareValidUser(t *testing.T) {
	SetUserVerifier(func(ctx context.Context, uid uint) (bool, error) { return true, nil })
	defer SetUserVerifier(nil)

	w := httptest.NewRecorder()
	CreateSession(w, 7)
	cookie := w.Result().Cookies()[0]

	var got uint
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserIDFromContext(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookie)
	h.ServeHTTP(httptest.NewRecorder(), r)

	if got != 7 {
		t.Fatalf("expected uid 7 in context, got %d", got)
	}
}
