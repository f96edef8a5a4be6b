package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type Exclusion struct {
	Method   string
	Template string
}

// ExclusionTable answers whether a method and path may skip authentication.
// Templates use router syntax, e.g. /posts/{post_id}.
type ExclusionTable struct {
	routers map[string]*mux.Router
}

// NewExclusionTable compiles the templates per method. It panics on a
// malformed template so a bad table never reaches production traffic.
func NewExclusionTable(exclusions ...Exclusion) *ExclusionTable {
	t := &ExclusionTable{routers: make(map[string]*mux.Router)}
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	for _, e := range exclusions {
		method := strings.ToUpper(e.Method)
		router, ok := t.routers[method]
		if !ok {
			router = mux.NewRouter()
			t.routers[method] = router
		}

		route := router.Path(e.Template).Handler(noop)
		if err := route.GetError(); err != nil {
			panic(fmt.Sprintf("middleware: invalid exclusion %s %q: %v", method, e.Template, err))
		}
	}
	return t
}

func (t *ExclusionTable) Match(r *http.Request) bool {
	router, ok := t.routers[r.Method]
	if !ok {
		return false
	}
	var match mux.RouteMatch
	return router.Match(r, &match)
}
