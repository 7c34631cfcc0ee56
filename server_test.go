package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/kmeaw/huffkit/huffman"
)

func newTestServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	server := NewServer(testConfig(t), NewCodec(store, NewBroadcaster()))
	r, err := server.Engine()
	require.NoError(t, err)

	return server, r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var data []byte
	switch b := body.(type) {
	case string:
		data = []byte(b)
	default:
		var err error
		data, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var e struct {
		Error       string `json:"error"`
		Description string `json:"description"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	assert.NotEmpty(t, e.Description)
	return e.Error
}

func TestServerEncodeDecode(t *testing.T) {
	_, r := newTestServer(t)

	w := doJSON(t, r, "POST", "/api/encode", EncodeRequest{Text: "aabbbc"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var enc EncodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &enc))
	assert.Equal(t, "111100010", enc.Bits)
	assert.Equal(t, []byte{7, 0xf1, 0x00}, enc.Packed)
	assert.Equal(t, []huffman.Pair{{Prefix: "0", Symbol: "b"}, {Prefix: "10", Symbol: "c"}, {Prefix: "11", Symbol: "a"}}, enc.Table.Pairs())

	w = doJSON(t, r, "POST", "/api/decode", DecodeRequest{Bits: enc.Bits, Table: enc.Table})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var dec DecodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dec))
	assert.Equal(t, "aabbbc", dec.Text)

	w = doJSON(t, r, "POST", "/api/decode", DecodeRequest{Packed: enc.Packed, Table: enc.Table})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dec))
	assert.Equal(t, "aabbbc", dec.Text)
}

func TestServerCodecErrors(t *testing.T) {
	_, r := newTestServer(t)

	table := json.RawMessage(`[{"prefix":"0","symbol":"b"},{"prefix":"10","symbol":"c"},{"prefix":"11","symbol":"a"}]`)

	tests := []struct {
		name string
		path string
		body interface{}
		code int
		kind string
	}{
		{"empty text", "/api/encode", EncodeRequest{Text: ""}, http.StatusUnprocessableEntity, "empty_input"},
		{"invalid bit", "/api/decode", map[string]interface{}{"bits": "012", "table": table}, http.StatusUnprocessableEntity, "invalid_bit"},
		{"trailing bits", "/api/decode", map[string]interface{}{"bits": "1", "table": table}, http.StatusUnprocessableEntity, "incomplete_code"},
		{"unknown symbol", "/api/encode", map[string]interface{}{"text": "abz", "table": table}, http.StatusUnprocessableEntity, "unknown_symbol"},
		{"unknown stored table for encode", "/api/encode", EncodeRequest{Text: "a", TableName: "nope"}, http.StatusNotFound, "no_table"},
		{"no table", "/api/decode", map[string]interface{}{"bits": "0"}, http.StatusUnprocessableEntity, "invalid_table"},
		{"unknown stored table", "/api/decode", map[string]interface{}{"bits": "0", "table_name": "nope"}, http.StatusNotFound, "no_table"},
		{"malformed body", "/api/encode", "{not json", http.StatusBadRequest, "bad_request"},
		{"bad table", "/api/decode", `{"bits":"0","table":[{"prefix":"0","symbol":"a"},{"prefix":"01","symbol":"b"}]}`, http.StatusBadRequest, "bad_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, "POST", tt.path, tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.Equal(t, tt.kind, decodeError(t, w))
		})
	}
}

func TestServerAnalyze(t *testing.T) {
	_, r := newTestServer(t)

	w := doJSON(t, r, "POST", "/api/analyze", AnalyzeRequest{Text: "aabbbc", Compare: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 9, report.Bits)
	assert.Equal(t, []huffman.Count{{Symbol: "a", Freq: 2}, {Symbol: "b", Freq: 3}, {Symbol: "c", Freq: 1}}, report.Frequencies)
	assert.Equal(t, "11", report.Table.Codes()["a"])
	assert.Contains(t, report.Tree, "(c)")
	assert.Greater(t, report.ZstdBytes, 0)
}

func TestServerTables(t *testing.T) {
	_, r := newTestServer(t)

	w := doJSON(t, r, "PUT", "/api/tables/abc", TableRequest{Text: "aabbbc"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, "GET", "/api/tables/abc", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	table := &huffman.Table{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), table))
	assert.Equal(t, "10", table.Codes()["c"])

	w = doJSON(t, r, "POST", "/api/decode", DecodeRequest{Bits: "111100010", TableName: "abc"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"text":"aabbbc"}`, w.Body.String())

	w = doJSON(t, r, "POST", "/api/encode", EncodeRequest{Text: "cab", TableName: "abc"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var enc EncodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &enc))
	assert.Equal(t, "10110", enc.Bits)

	w = doJSON(t, r, "POST", "/api/encode", EncodeRequest{Text: "abz", TableName: "abc"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "unknown_symbol", decodeError(t, w))
	assert.Contains(t, w.Body.String(), `\"z\"`)

	w = doJSON(t, r, "GET", "/api/tables/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, "PUT", "/api/tables/bad.name", TableRequest{Text: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_table_name", decodeError(t, w))
}

func TestServerIndex(t *testing.T) {
	_, r := newTestServer(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/?text=aabbbc", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "<code>11</code>")
	assert.Contains(t, body, "(b)")
	assert.Contains(t, body, `value="aabbbc"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CITRONTRESCONTENT")
}

func TestServerStream(t *testing.T) {
	_, r := newTestServer(t)
	ts := httptest.NewServer(r)
	defer ts.Close()

	client, err := DialStream(ts.URL)
	require.NoError(t, err)
	defer client.Close()

	for _, text := range []string{"aabbbc", "hello world", "z"} {
		enc, err := client.Encode(text)
		require.NoError(t, err)

		dec, err := client.Decode(enc.Bits, nil)
		require.NoError(t, err)
		assert.Equal(t, text, dec.Text)
	}

	resp, err := client.Decode("2", nil)
	assert.Error(t, err)
	assert.Equal(t, "invalid_bit", resp.Error)

	resp, err = client.roundTrip(StreamRequest{Op: "shuffle"})
	assert.Error(t, err)
	assert.Equal(t, "bad_op", resp.Error)
}

func TestServerEvents(t *testing.T) {
	_, r := newTestServer(t)
	ts := httptest.NewServer(r)
	defer ts.Close()

	ws, err := websocket.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/events?source=http", "", ts.URL)
	require.NoError(t, err)
	defer ws.Close()

	// the subscription starts asynchronously, so keep producing events
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		client := NewAPIClient(ts.URL)
		for ctx.Err() == nil {
			client.Encode(ctx, EncodeRequest{Text: "hello"})
			time.Sleep(50 * time.Millisecond)
		}
	}()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))

	var event CodecEvent
	require.NoError(t, websocket.JSON.Receive(ws, &event))
	assert.Equal(t, "http", event.Source)
	assert.Equal(t, "encode", event.Op)
	assert.Equal(t, 5, event.Symbols)
}

func TestAPIClient(t *testing.T) {
	_, r := newTestServer(t)
	ts := httptest.NewServer(r)
	defer ts.Close()

	ctx := context.Background()
	client := NewAPIClient(ts.URL + "/")

	enc, err := client.Encode(ctx, EncodeRequest{Text: "abracadabra"})
	require.NoError(t, err)

	require.NoError(t, client.SaveTable(ctx, "abra", enc.Table))

	table, err := client.LoadTable(ctx, "abra")
	require.NoError(t, err)
	assert.Equal(t, enc.Table.Pairs(), table.Pairs())

	text, err := client.Decode(ctx, DecodeRequest{Bits: enc.Bits, TableName: "abra"})
	require.NoError(t, err)
	assert.Equal(t, "abracadabra", text)

	report, err := client.Analyze(ctx, "abracadabra", false)
	require.NoError(t, err)
	assert.Equal(t, len(enc.Bits), report.Bits)

	_, err = client.Decode(ctx, DecodeRequest{Bits: "x", Table: enc.Table})
	var apiErr APIError
	require.True(t, errors.As(err, &apiErr), "%v", err)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode())
	assert.Equal(t, "invalid_bit", apiErr.Kind)
	assert.Contains(t, apiErr.Error(), "invalid_bit")
}
