package netx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMultipartUpload(t *testing.T) {
	var (
		gotName string
		gotBody string
		gotCT   string
	)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		f, h, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotName = h.Filename
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	req, err := NewMultipartUpload(context.Background(), ts.URL+"/upload", "file", "hello.txt", strings.NewReader("hello, cdn"))
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, req.Method)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(gotCT, "multipart/form-data; boundary="))
	assert.Equal(t, "hello.txt", gotName)
	assert.Equal(t, "hello, cdn", gotBody)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestNewMultipartUpload_ReaderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	req, err := NewMultipartUpload(context.Background(), ts.URL, "file", "x.bin", failingReader{})
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	if resp != nil {
		resp.Body.Close()
	}
	require.Error(t, err)
}

func TestNewMultipartUpload_BadURL(t *testing.T) {
	_, err := NewMultipartUpload(context.Background(), "://bad", "file", "x", strings.NewReader(""))
	require.Error(t, err)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "json error", status: http.StatusBadRequest, body: `{"error":"invalid name"}`, want: "invalid name"},
		{name: "plain body", status: http.StatusBadGateway, body: "upstream died", want: "502 Bad Gateway"},
		{name: "empty json", status: http.StatusNotFound, body: `{}`, want: "404 Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rec.WriteHeader(tt.status)
			_, _ = rec.WriteString(tt.body)

			assert.Equal(t, tt.want, ErrorMessage(rec.Result()))
		})
	}
}
