package msdrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedRange_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want ExpectedRange
	}{
		{`"0-"`, ExpectedRange{Start: 0, End: -1}},
		{`"128-255"`, ExpectedRange{Start: 128, End: 256}},
		{`"5242880-"`, ExpectedRange{Start: 5242880, End: -1}},
	}

	for _, tt := range tests {
		var r ExpectedRange
		require.NoError(t, json.Unmarshal([]byte(tt.in), &r), tt.in)
		assert.Equal(t, tt.want, r, tt.in)
	}

	var r ExpectedRange
	assert.Error(t, json.Unmarshal([]byte(`"128"`), &r))
	assert.Error(t, json.Unmarshal([]byte(`"x-y"`), &r))
}

func TestExpectedRange_String(t *testing.T) {
	assert.Equal(t, "0-", ExpectedRange{Start: 0, End: -1}.String())
	assert.Equal(t, "128-255", ExpectedRange{Start: 128, End: 256}.String())
}

func TestCreateUploadSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/me/drive/root:%2Fbig.bin:/createUploadSession", r.URL.EscapedPath())
		assert.Equal(t, "etag-1", r.Header.Get("If-Match"))

		var payload map[string]map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "replace", payload["item"]["@microsoft.graph.conflictBehavior"])

		_, _ = w.Write([]byte(`{
			"uploadUrl": "https://upload.example.com/session/abc",
			"expirationDateTime": "2026-09-01T00:00:00Z",
			"nextExpectedRanges": ["0-"]
		}`))
	}))
	defer srv.Close()

	od := newTestDrive(t, srv.URL)
	loc, err := ItemPath("/big.bin")
	require.NoError(t, err)

	opt := NewPutOption().IfMatch("etag-1").ConflictBehavior(ConflictReplace)
	sess, err := od.CreateUploadSession(context.Background(), loc, opt)
	require.NoError(t, err)
	assert.Equal(t, "https://upload.example.com/session/abc", sess.UploadURL)
	require.Len(t, sess.NextExpectedRanges, 1)
	assert.Equal(t, ExpectedRange{Start: 0, End: -1}, sess.NextExpectedRanges[0])
	assert.False(t, sess.ExpirationDateTime.IsZero())
}

func TestGetUploadSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Session URLs are self-authorizing; no bearer token goes along.
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"nextExpectedRanges":["327680-"]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, http.DefaultClient, nil)
	sess, err := client.GetUploadSession(context.Background(), srv.URL+"/session/abc")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/session/abc", sess.UploadURL)
	require.Len(t, sess.NextExpectedRanges, 1)
	assert.Equal(t, int64(327680), sess.NextExpectedRanges[0].Start)
}

func TestUploadToSession_Chunks(t *testing.T) {
	var gotRanges []string
	var gotBodies [][]byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		gotRanges = append(gotRanges, r.Header.Get("Content-Range"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBodies = append(gotBodies, body)

		if len(gotRanges) == 1 {
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"nextExpectedRanges":["4-"]}`))
			return
		}

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"i-1","size":8}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, http.DefaultClient, nil)
	sess := &UploadSession{UploadURL: srv.URL + "/session/abc"}

	item, err := client.UploadToSession(context.Background(), sess, []byte("abcd"), 0, 4, 8)
	require.NoError(t, err)
	assert.Nil(t, item) // intermediate chunk accepted

	item, err = client.UploadToSession(context.Background(), sess, []byte("efgh"), 4, 8, 8)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, int64(8), item.Size)

	assert.Equal(t, []string{"bytes 0-3/8", "bytes 4-7/8"}, gotRanges)
	assert.Equal(t, [][]byte{[]byte("abcd"), []byte("efgh")}, gotBodies)
}

func TestUploadToSession_BadRangesPanic(t *testing.T) {
	client := NewClient("", nil, nil)
	sess := &UploadSession{UploadURL: "http://example.invalid/session"}
	ctx := context.Background()

	assert.Panics(t, func() { // empty chunk
		_, _ = client.UploadToSession(ctx, sess, nil, 0, 0, 8)
	})
	assert.Panics(t, func() { // end beyond total
		_, _ = client.UploadToSession(ctx, sess, []byte("abcd"), 4, 8, 6)
	})
	assert.Panics(t, func() { // start after end
		_, _ = client.UploadToSession(ctx, sess, []byte("abcd"), 8, 4, 16)
	})
	assert.Panics(t, func() { // length disagrees with range
		_, _ = client.UploadToSession(ctx, sess, []byte("abc"), 0, 4, 8)
	})
}

func TestDeleteUploadSession(t *testing.T) {
	var deleted bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, http.DefaultClient, nil)
	require.NoError(t, client.DeleteUploadSession(context.Background(), srv.URL+"/session/abc"))
	assert.True(t, deleted)
}

func TestDeleteUploadSession_AlreadyGone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"itemNotFound","message":"gone"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, http.DefaultClient, nil)
	assert.NoError(t, client.DeleteUploadSession(context.Background(), srv.URL+"/session/abc"))
}

func TestUploadFile(t *testing.T) {
	const chunkSize = 320 * 1024
	content := bytes.Repeat([]byte("x"), chunkSize+100)

	var uploads int

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = fmt.Fprintf(w, `{"uploadUrl":"%s/session/abc"}`, srv.URL)
			return
		}

		uploads++
		if uploads == 1 {
			assert.Equal(t, fmt.Sprintf("bytes 0-%d/%d", chunkSize-1, len(content)), r.Header.Get("Content-Range"))
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"nextExpectedRanges":["327680-"]}`))
			return
		}

		w.WriteHeader(http.StatusCreated)
		_, _ = fmt.Fprintf(w, `{"id":"i-1","size":%d}`, len(content))
	}))
	defer srv.Close()

	od := newTestDrive(t, srv.URL)
	loc, err := ItemPath("/big.bin")
	require.NoError(t, err)

	item, err := od.UploadFile(context.Background(), loc, content, chunkSize, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), item.Size)
	assert.Equal(t, 2, uploads)
}

func TestUploadFile_Panics(t *testing.T) {
	od := newTestDrive(t, "http://example.invalid")
	ctx := context.Background()

	assert.Panics(t, func() { // empty content
		_, _ = od.UploadFile(ctx, Root(), nil, 0, nil)
	})
	assert.Panics(t, func() { // misaligned chunk size
		_, _ = od.UploadFile(ctx, Root(), []byte("x"), 1000, nil)
	})
}

func TestUploadFile_FinalChunkWithoutItem(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = fmt.Fprintf(w, `{"uploadUrl":"%s/session/abc"}`, srv.URL)
			return
		}

		// The final chunk must complete the item; 202 here is a protocol
		// violation.
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"nextExpectedRanges":["4-"]}`))
	}))
	defer srv.Close()

	od := newTestDrive(t, srv.URL)
	_, err := od.UploadFile(context.Background(), Root(), []byte("data"), 0, nil)

	var unexpected *UnexpectedResponseError
	require.ErrorAs(t, err, &unexpected)
}
