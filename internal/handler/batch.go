package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iamkrish/shop-management/internal/auth"
)

// BatchHandler fans a list of API calls out concurrently and collects the
// responses into a single reply, forwarding the caller's session cookie so
// the downstream endpoints see the same identity.
type BatchHandler struct {
	Client *http.Client
}

func NewBatchHandler() *BatchHandler {
	return &BatchHandler{Client: &http.Client{Timeout: 10 * time.Second}}
}

type batchRequest struct {
	Method string            `json:"method"`
	URL    string            `json:"url"`
	Body   json.RawMessage   `json:"body"`
	Params map[string]string `json:"params"`
}

type batchReq struct {
	Requests []batchRequest `json:"requests"`
}

// Fetch executes every request in the body concurrently. The response maps
// each URL to its decoded JSON body, or to the raw text when the downstream
// reply is not JSON.
func (h *BatchHandler) Fetch(c echo.Context) error {
	var req batchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON"})
	}
	if len(req.Requests) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No requests provided"})
	}
	for _, r := range req.Requests {
		if r.Method == "" || r.URL == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Each request must have 'method' and 'url'"})
		}
	}

	// Forward the caller's session: shopkeeper cookie wins, matching the
	// resolution precedence of the session middleware.
	var forward *http.Cookie
	if ck, err := c.Cookie(auth.CookieShopkeeper); err == nil && ck.Value != "" {
		forward = &http.Cookie{Name: auth.CookieShopkeeper, Value: ck.Value}
	} else if ck, err := c.Cookie(auth.CookieCustomer); err == nil && ck.Value != "" {
		forward = &http.Cookie{Name: auth.CookieCustomer, Value: ck.Value}
	}

	results := make([]any, len(req.Requests))
	var wg sync.WaitGroup
	for i, r := range req.Requests {
		wg.Add(1)
		go func(i int, r batchRequest) {
			defer wg.Done()
			results[i] = h.fetchOne(r, forward)
		}(i, r)
	}
	wg.Wait()

	out := make(map[string]any, len(req.Requests))
	for i, r := range req.Requests {
		out[r.URL] = results[i]
	}
	return c.JSON(http.StatusOK, out)
}

// fetchOne performs a single downstream call. Errors are reported in-band
// as strings so one failure does not sink the whole batch.
func (h *BatchHandler) fetchOne(r batchRequest, forward *http.Cookie) any {
	method := strings.ToUpper(r.Method)
	switch method {
	case http.MethodGet:
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		if len(r.Body) == 0 && len(r.Params) > 0 {
			return method + " requests require a body"
		}
	default:
		return "Method " + method + " not supported"
	}

	target := r.URL
	if method == http.MethodGet && len(r.Params) > 0 {
		q := url.Values{}
		for k, v := range r.Params {
			q.Set(k, v)
		}
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + q.Encode()
	}

	var body io.Reader
	if method != http.MethodGet && len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}
	httpReq, err := http.NewRequest(method, target, body)
	if err != nil {
		return err.Error()
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if forward != nil {
		httpReq.AddCookie(forward)
	}

	resp, err := h.Client.Do(httpReq)
	if err != nil {
		return err.Error()
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err.Error()
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return string(raw)
	}
	return decoded
}
