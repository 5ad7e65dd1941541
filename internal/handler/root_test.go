package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aumanu2/chatdrop/internal/testutil"
)

func TestStatusEndpoints(t *testing.T) {
	tests := []struct {
		Name        string
		path        string
		wantMessage string
	}{
		{"root", "/", "Chat backend is running"},
		{"hello", "/api/hello", "Hello from the backend API!"},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			srv, _ := newTestServer(t, testutil.NewFakeStore())

			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))

			var body statusMessage
			decodeJSON(t, resp, &body)
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}

func TestUnknownPathIs404JSON(t *testing.T) {
	srv, _ := newTestServer(t, testutil.NewFakeStore())

	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body errorBody
	decodeJSON(t, resp, &body)
	assert.Equal(t, "Not Found", body.Detail)
}

func TestWrongMethodIs405JSON(t *testing.T) {
	srv, _ := newTestServer(t, testutil.NewFakeStore())

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/messages", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	var body errorBody
	decodeJSON(t, resp, &body)
	assert.Equal(t, "Method Not Allowed", body.Detail)
}
