package http1

import (
	"strings"
	"testing"

	"github.com/ember-web/ember/config"
	"github.com/ember-web/ember/http"
	"github.com/ember-web/ember/http/status"
	"github.com/ember-web/ember/kv"
	"github.com/ember-web/ember/router"
	"github.com/ember-web/ember/router/simple"
	"github.com/ember-web/ember/transport/dummy"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testRouter() router.Router {
	return simple.New(func(request *http.Request) *http.Response {
		path, _, _ := strings.Cut(string(request.URI), "?")

		switch path {
		case "/":
			return request.Respond().String("hello world.\n")
		case "/echo":
			return request.Respond().Reader(request.Body)
		case "/panic":
			panic("boom")
		default:
			return request.Respond().Code(status.NotFound)
		}
	})
}

// serve feeds the scripted pieces through a fresh connection and returns
// everything the server wrote back.
func serve(t *testing.T, r router.Router, pieces ...[]byte) string {
	t.Helper()

	client := dummy.NewClient(pieces...)
	request := http.NewRequest(client, kv.New())
	New(config.Default(), r, client, request, zerolog.Nop()).Serve()

	return string(client.Written)
}

func responses(wire string) []string {
	var out []string

	for len(wire) > 0 {
		next := strings.Index(wire[1:], "HTTP/1.1 ")
		if next == -1 {
			out = append(out, wire)
			break
		}

		out = append(out, wire[:next+1])
		wire = wire[next+1:]
	}

	return out
}

func TestSuit(t *testing.T) {
	t.Run("get root", func(t *testing.T) {
		wire := serve(t, testRouter(), []byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))

		require.True(t, strings.HasPrefix(wire, "HTTP/1.1 200 OK\r\n"), wire)
		require.Contains(t, wire, "Content-Length: 13\r\n")
		require.True(t, strings.HasSuffix(wire, "\r\n\r\nhello world.\n"), wire)
	})

	t.Run("echo sized body", func(t *testing.T) {
		wire := serve(t, testRouter(),
			[]byte("POST /echo HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\n\r\nhello"),
		)

		require.True(t, strings.HasPrefix(wire, "HTTP/1.1 200 OK\r\n"), wire)
		require.Contains(t, wire, "Content-Length: 5\r\n")
		require.True(t, strings.HasSuffix(wire, "\r\n\r\nhello"), wire)
	})

	t.Run("echo chunked body", func(t *testing.T) {
		wire := serve(t, testRouter(), []byte(
			"POST /echo HTTP/1.1\r\nHost: x\r\nTransfer-Encoding: chunked\r\n\r\n"+
				"5\r\nHello\r\n6\r\nWorld!\r\n0\r\n\r\n",
		))

		require.True(t, strings.HasPrefix(wire, "HTTP/1.1 200 OK\r\n"), wire)
		require.Contains(t, wire, "Transfer-Encoding: chunked\r\n")
		_, body, found := strings.Cut(wire, "\r\n\r\n")
		require.True(t, found)
		require.Equal(t, "5\r\nHello\r\n6\r\nWorld!\r\n0\r\n\r\n", body)
	})

	t.Run("request split across reads", func(t *testing.T) {
		wire := serve(t, testRouter(),
			[]byte("GET / HT"), []byte("TP/1.1\r\nHo"), []byte("st: x\r\n\r\n"),
		)

		require.True(t, strings.HasPrefix(wire, "HTTP/1.1 200 OK\r\n"), wire)
	})

	t.Run("pipelined keep-alive", func(t *testing.T) {
		wire := serve(t, testRouter(), []byte(
			"GET / HTTP/1.1\r\nHost: x\r\n\r\nGET / HTTP/1.1\r\nHost: x\r\n\r\n",
		))

		resps := responses(wire)
		require.Len(t, resps, 2)
		for _, resp := range resps {
			require.True(t, strings.HasPrefix(resp, "HTTP/1.1 200 OK\r\n"), resp)
			require.True(t, strings.HasSuffix(resp, "hello world.\n"), resp)
		}
	})

	t.Run("unconsumed body is drained", func(t *testing.T) {
		// the root handler ignores the body, yet the next pipelined request
		// must still be found right after it
		wire := serve(t, testRouter(), []byte(
			"POST / HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\n\r\nhelloGET / HTTP/1.1\r\nHost: x\r\n\r\n",
		))

		require.Len(t, responses(wire), 2)
	})

	t.Run("pipelined after chunked body", func(t *testing.T) {
		wire := serve(t, testRouter(), []byte(
			"POST /echo HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n"+
				"5\r\nHello\r\n0\r\n\r\n"+
				"GET / HTTP/1.1\r\nHost: x\r\n\r\n",
		))

		resps := responses(wire)
		require.Len(t, resps, 2)
		require.True(t, strings.HasSuffix(resps[1], "hello world.\n"), resps[1])
	})

	t.Run("http 1.0 closes after one exchange", func(t *testing.T) {
		wire := serve(t, testRouter(), []byte(
			"GET / HTTP/1.0\r\nHost: x\r\n\r\nGET / HTTP/1.0\r\nHost: x\r\n\r\n",
		))

		require.Len(t, responses(wire), 1)
	})

	t.Run("connection close", func(t *testing.T) {
		wire := serve(t, testRouter(), []byte(
			"GET / HTTP/1.1\r\nConnection: close\r\n\r\nGET / HTTP/1.1\r\n\r\n",
		))

		require.Len(t, responses(wire), 1)
	})

	t.Run("head has headers but no body", func(t *testing.T) {
		wire := serve(t, testRouter(), []byte("HEAD / HTTP/1.1\r\nHost: x\r\n\r\n"))

		require.Contains(t, wire, "Content-Length: 13\r\n")
		require.True(t, strings.HasSuffix(wire, "\r\n\r\n"), wire)
	})

	t.Run("oversized header block", func(t *testing.T) {
		wire := serve(t, testRouter(),
			[]byte("GET / HTTP/1.1\r\n"+strings.Repeat("a", 9000)),
		)

		require.True(t, strings.HasPrefix(wire, "HTTP/1.1 413 "), wire)
		require.True(t, strings.HasSuffix(wire, "header is too large"), wire)
	})

	t.Run("body not allowed on get", func(t *testing.T) {
		wire := serve(t, testRouter(), []byte(
			"GET / HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\n\r\nhello",
		))

		require.True(t, strings.HasPrefix(wire, "HTTP/1.1 400 Bad Request\r\n"), wire)
		require.True(t, strings.HasSuffix(wire, "HTTP body not allowed"), wire)
	})

	t.Run("eof mid header block", func(t *testing.T) {
		wire := serve(t, testRouter(), []byte("GET / HTTP/1.1\r\nHos"))

		require.True(t, strings.HasPrefix(wire, "HTTP/1.1 400 Bad Request\r\n"), wire)
		require.True(t, strings.HasSuffix(wire, "Unexpected EOF"), wire)
	})

	t.Run("clean disconnect writes nothing", func(t *testing.T) {
		wire := serve(t, testRouter())

		require.Empty(t, wire)
	})

	t.Run("panicking handler", func(t *testing.T) {
		wire := serve(t, testRouter(), []byte("GET /panic HTTP/1.1\r\n\r\n"))

		require.True(t, strings.HasPrefix(wire, "HTTP/1.1 500 Internal Server Error\r\n"), wire)
	})
}
