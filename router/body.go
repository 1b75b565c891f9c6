package router

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// maxCapturedBody bounds the part of a request body kept for logging.
const maxCapturedBody = 4 << 10

type capturedBodyKey struct{}

// cappedBuffer keeps the first max bytes written to it and discards the rest.
type cappedBuffer struct {
	bytes.Buffer
	max int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.Len(); room > 0 {
		b.Buffer.Write(p[:min(len(p), room)])
	}
	return len(p), nil
}

type teeReadCloser struct {
	io.Reader
	io.Closer
}

// captureBodies copies the body of POST requests into the request context as
// the handler reads it. See [CapturedBody].
func captureBodies(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Body == nil {
			next.ServeHTTP(w, r)
			return
		}
		buf := &cappedBuffer{max: maxCapturedBody}
		r.Body = teeReadCloser{io.TeeReader(r.Body, buf), r.Body}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), capturedBodyKey{}, buf)))
	})
}

// CapturedBody returns the part of the request body read so far.
// It reports false for requests whose body is not captured.
func CapturedBody(ctx context.Context) ([]byte, bool) {
	buf, ok := ctx.Value(capturedBodyKey{}).(*cappedBuffer)
	if !ok {
		return nil, false
	}
	return buf.Bytes(), true
}
