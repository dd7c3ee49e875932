package nextcloud_test

import (
	"bytes"
	"io"
	"net/http"
)

func newResponse(status int, body string, headers map[string]string, req *http.Request) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
		Request:    req,
	}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

func clientForResponse(status int, body string, headers map[string]string) *http.Client {
	return &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return newResponse(status, body, headers, r), nil
	})}
}
