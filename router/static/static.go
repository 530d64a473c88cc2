package static

import (
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/ember-web/ember/http"
	"github.com/ember-web/ember/http/status"
	"github.com/indigo-web/utils/uf"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	fileBuffSize = 16 * 1024
	notFoundBody = "404 Not Found\n"
)

// FS serves files from a root directory under a URI prefix, answering byte-range
// requests with partial content. Filesystem failures are mapped to 404 and never
// exposed to the peer.
type FS struct {
	prefix, root string
	log          zerolog.Logger
}

func New(prefix, root string) *FS {
	return &FS{
		prefix: prefix,
		root:   root,
		log:    zerolog.Nop(),
	}
}

// Logger sets the logger filesystem failures are reported to.
func (f *FS) Logger(log zerolog.Logger) *FS {
	f.log = log
	return f
}

// Handle resolves the request's path against the root and streams the file back,
// whole or in part.
func (f *FS) Handle(request *http.Request) *http.Response {
	target, ok := f.resolve(request)
	if !ok {
		return f.notFound(request, errors.New("path escapes the root"))
	}

	fd, err := os.Open(target)
	if err != nil {
		return f.notFound(request, err)
	}

	stat, err := fd.Stat()
	if err != nil {
		_ = fd.Close()
		return f.notFound(request, err)
	}

	if !stat.Mode().IsRegular() {
		_ = fd.Close()
		return f.notFound(request, errors.Errorf("%s: not a regular file", target))
	}

	size := stat.Size()

	rangeValue, hasRange := request.Headers.Get("Range")
	if !hasRange {
		return request.Respond().
			Reader(http.NewFileReader(fd, int(size), make([]byte, fileBuffSize)))
	}

	start, end, ok := parseRange(rangeValue, size)
	if !ok || start >= size {
		_ = fd.Close()
		return request.Respond().
			Code(status.RequestedRangeNotSatisfiable).
			Header("Content-Range", "bytes */"+strconv.FormatInt(size, 10))
	}

	return request.Respond().
		Code(status.PartialContent).
		Header("Content-Range", contentRange(start, end, size)).
		Reader(http.NewFileRangeReader(fd, start, end, make([]byte, fileBuffSize)))
}

func (f *FS) resolve(request *http.Request) (target string, ok bool) {
	uri := uf.B2S(request.URI)
	if query := strings.IndexByte(uri, '?'); query != -1 {
		uri = uri[:query]
	}

	rel, found := strings.CutPrefix(uri, f.prefix)
	if !found {
		return "", false
	}

	for _, segment := range strings.Split(rel, "/") {
		if segment == ".." {
			return "", false
		}
	}

	return path.Join(f.root, rel), true
}

func (f *FS) notFound(request *http.Request, err error) *http.Response {
	f.log.Debug().Err(err).Bytes("uri", request.URI).Msg("static: serving 404")

	return request.Respond().
		Code(status.NotFound).
		String(notFoundBody)
}

// parseRange parses `bytes=<start>-<end>` with both bounds optional. The end
// bound is exclusive; an omitted start means 0 and an omitted end means the
// file size. The end is clamped to the file size.
func parseRange(value string, size int64) (start, end int64, ok bool) {
	ranges, found := strings.CutPrefix(value, "bytes=")
	if !found {
		return 0, 0, false
	}

	rawStart, rawEnd, found := strings.Cut(ranges, "-")
	if !found {
		return 0, 0, false
	}

	start, ok = parseBound(rawStart, 0)
	if !ok {
		return 0, 0, false
	}

	end, ok = parseBound(rawEnd, size)
	if !ok {
		return 0, 0, false
	}

	if end > size {
		end = size
	}
	if end < start {
		return 0, 0, false
	}

	return start, end, true
}

func parseBound(raw string, otherwise int64) (int64, bool) {
	if len(raw) == 0 {
		return otherwise, true
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}

	return n, true
}

func contentRange(start, end, size int64) string {
	return "bytes " + strconv.FormatInt(start, 10) + "-" + strconv.FormatInt(end, 10) +
		"/" + strconv.FormatInt(size, 10)
}
