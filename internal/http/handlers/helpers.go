package handlers

import (
	"net/http"
	"strconv"

	"github.com/fixline/homemart/internal/http/middleware"
	"github.com/fixline/homemart/pkg/auth"
	"github.com/go-chi/chi/v5"
)

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

func queryInt64(r *http.Request, name string) int64 {
	n, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return n
}

func caller(r *http.Request) *auth.Claims {
	return middleware.Claims(r)
}
