package handlers

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	apiContext "devtogether/internal/api/context"
)

func param(r *http.Request, name string) string {
	params, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return params.ByName(name)
}

// maxPage bounds ?page= so the offset cannot overflow.
const maxPage = 100000

// page reads ?page=&limit= with limit capped at 100.
func page(r *http.Request, defaultLimit int) (limit, offset int) {
	p, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if p < 1 {
		p = 1
	}
	if p > maxPage {
		p = maxPage
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return limit, (p - 1) * limit
}
