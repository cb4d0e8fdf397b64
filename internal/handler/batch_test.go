package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamkrish/shop-management/internal/auth"
)

func doFetch(t *testing.T, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/fetch_responses/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, NewBatchHandler().Fetch(e.NewContext(req, rec)))
	return rec
}

func TestFetchRejectsEmptyBatch(t *testing.T) {
	rec := doFetch(t, `{"requests":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No requests provided")
}

func TestFetchRejectsIncompleteRequest(t *testing.T) {
	rec := doFetch(t, `{"requests":[{"url":"http://example.com"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must have 'method' and 'url'")
}

func TestFetchCollectsResponsesAndForwardsCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			session := ""
			if ck, err := r.Cookie(auth.CookieCustomer); err == nil {
				session = ck.Value
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"session":"` + session + `","q":"` + r.URL.Query().Get("q") + `"}`))
		case "/text":
			_, _ = w.Write([]byte("plain reply"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	body := `{"requests":[` +
		`{"method":"get","url":"` + srv.URL + `/json","params":{"q":"42"}},` +
		`{"method":"GET","url":"` + srv.URL + `/text"},` +
		`{"method":"PATCH","url":"` + srv.URL + `/other"}]}`

	rec := doFetch(t, body, &http.Cookie{Name: auth.CookieCustomer, Value: "tok-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	jsonRes, ok := out[srv.URL+"/json"].(map[string]any)
	require.True(t, ok, "JSON downstream reply decoded into a map")
	assert.Equal(t, "tok-1", jsonRes["session"])
	assert.Equal(t, "42", jsonRes["q"])

	assert.Equal(t, "plain reply", out[srv.URL+"/text"])
	assert.Equal(t, "Method PATCH not supported", out[srv.URL+"/other"])
}
