package source_test

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

type rtFunc func(*http.Request) *http.Response

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r), nil }

func httpClient(resBody string, code int) *http.Client {
	return &http.Client{
		Timeout: 2 * time.Second,
		Transport: rtFunc(func(r *http.Request) *http.Response {
			return &http.Response{
				StatusCode: code,
				Body:       io.NopCloser(strings.NewReader(resBody)),
				Header:     make(http.Header),
				Request:    r,
			}
		}),
	}
}

// routedClient serves a canned body per URL substring and records every
// request URL, for the per-symbol sources that issue one call per instrument.
func routedClient(routes map[string]string, code int) (*http.Client, func() []string) {
	var mu sync.Mutex
	var urls []string
	client := &http.Client{
		Timeout: 2 * time.Second,
		Transport: rtFunc(func(r *http.Request) *http.Response {
			mu.Lock()
			urls = append(urls, r.URL.String())
			mu.Unlock()
			body := "{}"
			for key, b := range routes {
				if strings.Contains(r.URL.String(), key) {
					body = b
					break
				}
			}
			return &http.Response{
				StatusCode: code,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     make(http.Header),
				Request:    r,
			}
		}),
	}
	return client, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), urls...)
	}
}
