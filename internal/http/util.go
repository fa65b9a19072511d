package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

const (
	clientCookieName = "painel_client_id"
	userHeader       = "X-User-ID"
	maxBodyBytes     = 1 << 16
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// requestHost returns the hostname the client used. Router rewrites r.Host
// from X-Forwarded-Host beforehand when the edge proxy is trusted.
func requestHost(r *http.Request) string {
	return r.Host
}

// forwardedHost returns the first X-Forwarded-Host entry, or "".
func forwardedHost(r *http.Request) string {
	fwd := r.Header.Get("X-Forwarded-Host")
	if i := strings.IndexByte(fwd, ','); i >= 0 {
		fwd = fwd[:i]
	}
	return strings.TrimSpace(fwd)
}

// requestUser returns the authenticated user id forwarded by the auth layer.
func requestUser(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(userHeader))
}
