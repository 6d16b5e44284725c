package metarouter

import "net/http"

// maxBodyBytes bounds the size of POST request bodies accepted for
// meta-routed invocations.
const maxBodyBytes int64 = 1 << 20

// limitBody rejects requests whose declared Content-Length already exceeds
// maxBodyBytes and wraps the rest with http.MaxBytesReader as a backstop
// against chunked or unannounced oversized payloads.
func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if r.ContentLength > maxBodyBytes {
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}
