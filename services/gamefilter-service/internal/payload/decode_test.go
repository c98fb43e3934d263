package payload

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenAndEmail struct {
	TokenRequest
	Email StringList `json:"email"`
}

func TestDecodeJSONRestoresBody(t *testing.T) {
	body := `{"accessToken":"abc","email":"ada@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	var dst tokenAndEmail
	require.NoError(t, Decode(req, &dst))
	assert.Equal(t, "abc", dst.AccessToken)
	assert.Equal(t, StringList{"ada@example.com"}, dst.Email)

	rest, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(rest))
}

func TestDecodeJSONArrays(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":["a@x.io","b@x.io"]}`))

	var dst tokenAndEmail
	require.NoError(t, Decode(req, &dst))
	assert.Equal(t, StringList{"a@x.io", "b@x.io"}, dst.Email)

	bad := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":42}`))
	assert.Error(t, Decode(bad, &dst))
}

func TestDecodeEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)

	var dst TokenRequest
	assert.ErrorIs(t, Decode(req, &dst), ErrEmptyBody)
}

func TestDecodeURLEncodedForm(t *testing.T) {
	form := url.Values{"accessToken": {"abc"}, "email": {"a@x.io", "b@x.io"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var dst tokenAndEmail
	require.NoError(t, Decode(req, &dst))
	assert.Equal(t, "abc", dst.AccessToken)
	assert.Equal(t, StringList{"a@x.io", "b@x.io"}, dst.Email)

	var again TokenRequest
	require.NoError(t, Decode(req, &again), "parsed forms can be decoded twice")
	assert.Equal(t, "abc", again.AccessToken)
}

func TestDecodeMultipartForm(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("accessToken", "abc"))
	require.NoError(t, mw.WriteField("method", "PUSH"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var dst DebugRequest
	require.NoError(t, Decode(req, &dst))
	assert.Equal(t, "PUSH", dst.Method)

	var token TokenRequest
	require.NoError(t, Decode(req, &token))
	assert.Equal(t, "abc", token.AccessToken)
}

func TestDecodeFormNestedGameFields(t *testing.T) {
	form := url.Values{
		"accessToken":       {"abc"},
		"gameId":            {"42"},
		"title":             {"Factorio"},
		"platforms":         {"pc", "mac"},
		"reviews[0].user":   {"ada@example.com"},
		"reviews[0].rating": {"4.5"},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var dst UpsertGameRequest
	require.NoError(t, Decode(req, &dst))
	assert.Equal(t, "abc", dst.AccessToken)
	assert.Equal(t, "42", dst.GameID)
	assert.Equal(t, "Factorio", dst.Title)
	assert.Equal(t, []string{"pc", "mac"}, dst.Platforms)
	require.Len(t, dst.Reviews, 1)
	assert.Equal(t, "ada@example.com", dst.Reviews[0].User)
	assert.InDelta(t, 4.5, dst.Reviews[0].Rating, 0.001)
}

func TestDecodeFormRejectsBadNumbers(t *testing.T) {
	form := url.Values{"reviews[0].rating": {"great"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var dst UpsertGameRequest
	assert.Error(t, Decode(req, &dst))
}
