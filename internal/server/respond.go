package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mudkipdev/rephoton/internal/errors"
)

const maxBody = 1 << 20

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusOf maps an error kind to its HTTP status and Lemmy error code.
func statusOf(err error) (int, string) {
	switch errors.KindOf(err) {
	case errors.KindUnauthenticated:
		return http.StatusUnauthorized, "not_logged_in"
	case errors.KindNotFound:
		return http.StatusNotFound, "not_found"
	case errors.KindUnsupported:
		return http.StatusNotImplemented, "unsupported"
	case errors.KindInvalid:
		return http.StatusBadRequest, "invalid"
	default:
		return http.StatusBadGateway, "remote_failure"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		s.logger.Warn("request failed",
			"request_id", requestIDFrom(r.Context()),
			"path", r.URL.Path,
			"kind", errors.KindOf(err).String(),
			"error", err)
	}
	writeJSON(w, status, errorBody{Error: code, Message: err.Error()})
}

// bearerToken returns the Lemmy jwt from the Authorization header, the
// auth query parameter or the jwt cookie, in that order.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
	}
	if tok := r.URL.Query().Get("auth"); tok != "" {
		return tok
	}
	if c, err := r.Cookie("jwt"); err == nil {
		return c.Value
	}
	return ""
}

func decode(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errors.Wrap(errors.KindInvalid, errors.ErrInvalidArgument, "http", "decode", err.Error())
	}
	return nil
}

func queryInt(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Invalid("http", "query", name+" must be an integer")
	}
	return n, nil
}

func queryID(q url.Values, name string) (*int32, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return nil, errors.Invalid("http", "query", name+" must be a 32-bit integer")
	}
	id := int32(n)
	return &id, nil
}

func queryBool(q url.Values, name string) bool {
	b, _ := strconv.ParseBool(q.Get(name))
	return b
}

func errInvalid(msg string) error {
	return errors.Invalid("http", "request", msg)
}
