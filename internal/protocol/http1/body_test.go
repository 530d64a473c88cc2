package http1

import (
	"testing"

	"github.com/ember-web/ember/config"
	"github.com/ember-web/ember/http"
	"github.com/ember-web/ember/http/status"
	"github.com/ember-web/ember/kv"
	"github.com/ember-web/ember/transport/dummy"
	"github.com/indigo-web/chunkedbody"
	"github.com/stretchr/testify/require"
)

func newBodyReader(
	t *testing.T, method string, headers *kv.Storage, pieces ...[]byte,
) (http.BodyReader, *dummy.Client) {
	t.Helper()

	client := dummy.NewClient(pieces...)
	request := http.NewRequest(client, headers)
	request.Method = method

	reader, err := NewBodyReader(
		client, chunkedbody.NewParser(chunkedbody.DefaultSettings()), config.Default().Body, request,
	)
	require.NoError(t, err)

	return reader, client
}

func TestBodyReader(t *testing.T) {
	t.Run("content-length single piece", func(t *testing.T) {
		reader, _ := newBodyReader(
			t, "POST", kv.New().Add("Content-Length", "5"), []byte("hello"),
		)
		require.Equal(t, 5, reader.Length())

		body, err := http.Collect(reader)
		require.NoError(t, err)
		require.Equal(t, "hello", string(body))
	})

	t.Run("content-length across pieces", func(t *testing.T) {
		reader, _ := newBodyReader(
			t, "POST", kv.New().Add("Content-Length", "10"),
			[]byte("hel"), []byte("lo wo"), []byte("rld"),
		)

		body, err := http.Collect(reader)
		require.NoError(t, err)
		require.Equal(t, "hello worl", string(body))
	})

	t.Run("excess bytes are pushed back", func(t *testing.T) {
		reader, client := newBodyReader(
			t, "POST", kv.New().Add("Content-Length", "5"), []byte("helloEXTRA"),
		)

		body, err := http.Collect(reader)
		require.NoError(t, err)
		require.Equal(t, "hello", string(body))

		extra, err := client.Read()
		require.NoError(t, err)
		require.Equal(t, "EXTRA", string(extra))
	})

	t.Run("eof mid body", func(t *testing.T) {
		reader, _ := newBodyReader(
			t, "POST", kv.New().Add("Content-Length", "10"), []byte("hello"),
		)

		_, err := http.Collect(reader)
		require.ErrorIs(t, err, status.ErrUnexpectedEOF)
	})

	t.Run("chunked", func(t *testing.T) {
		reader, _ := newBodyReader(
			t, "POST", kv.New().Add("Transfer-Encoding", "chunked"),
			[]byte("5\r\nHello\r\n6\r\nWorld!\r\n0\r\n\r\n"),
		)
		require.Equal(t, http.UnknownLength, reader.Length())

		body, err := http.Collect(reader)
		require.NoError(t, err)
		require.Equal(t, "HelloWorld!", string(body))
	})

	t.Run("chunked split mid chunk", func(t *testing.T) {
		reader, _ := newBodyReader(
			t, "POST", kv.New().Add("Transfer-Encoding", "chunked"),
			[]byte("5\r\nHel"), []byte("lo\r\n0"), []byte("\r\n\r\n"),
		)

		body, err := http.Collect(reader)
		require.NoError(t, err)
		require.Equal(t, "Hello", string(body))
	})

	t.Run("chunked ignores later encoding tokens", func(t *testing.T) {
		reader, _ := newBodyReader(
			t, "POST", kv.New().Add("Transfer-Encoding", "chunked, gzip"),
			[]byte("1\r\na\r\n0\r\n\r\n"),
		)

		body, err := http.Collect(reader)
		require.NoError(t, err)
		require.Equal(t, "a", string(body))
	})

	t.Run("until close", func(t *testing.T) {
		reader, _ := newBodyReader(
			t, "POST", kv.New(), []byte("free"), []byte("form"),
		)
		require.Equal(t, http.UnknownLength, reader.Length())

		body, err := http.Collect(reader)
		require.NoError(t, err)
		require.Equal(t, "freeform", string(body))
	})

	t.Run("get has no body", func(t *testing.T) {
		reader, _ := newBodyReader(t, http.MethodGet, kv.New())
		require.Zero(t, reader.Length())

		body, err := http.Collect(reader)
		require.NoError(t, err)
		require.Empty(t, body)
	})
}

func TestBodyReaderDispatch(t *testing.T) {
	dispatch := func(method string, headers *kv.Storage) error {
		client := dummy.NewClient()
		request := http.NewRequest(client, headers)
		request.Method = method

		_, err := NewBodyReader(
			client, chunkedbody.NewParser(chunkedbody.DefaultSettings()), config.Default().Body, request,
		)

		return err
	}

	t.Run("body forbidden on get and head", func(t *testing.T) {
		require.ErrorIs(t,
			dispatch(http.MethodGet, kv.New().Add("Content-Length", "5")),
			status.ErrBodyNotAllowed,
		)
		require.ErrorIs(t,
			dispatch(http.MethodHead, kv.New().Add("Transfer-Encoding", "chunked")),
			status.ErrBodyNotAllowed,
		)
	})

	t.Run("zero content-length on get is fine", func(t *testing.T) {
		require.NoError(t, dispatch(http.MethodGet, kv.New().Add("Content-Length", "0")))
	})

	t.Run("bad content-length", func(t *testing.T) {
		for _, value := range []string{"12f", "-5", "4.2", ""} {
			require.ErrorIs(t,
				dispatch("POST", kv.New().Add("Content-Length", value)),
				status.ErrBadContentLength, value,
			)
		}
	})
}
