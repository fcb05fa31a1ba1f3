package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/opencatalog"
)

const notFoundXML = `<?xml version="1.0" encoding="UTF-8"?>
<ICECAT-interface>
  <Product Code="-1" ErrorMessage="%s"/>
</ICECAT-interface>
`

// stubServer answers OpenCatalog style requests from XML files in dir:
// gtin-<ean>.xml, id-<product id>.xml and sku-<vendor>-<prod id>.xml.
type stubServer struct {
	dir   string
	auth  string
	token string
}

func newRouter(s *stubServer) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.health).Methods("GET")
	router.PathPrefix("/").HandlerFunc(s.product).Methods("GET")
	return router
}

func (s *stubServer) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"healthy","service":"catalog-stub"}`)
}

func (s *stubServer) product(w http.ResponseWriter, r *http.Request) {
	if s.auth != "" {
		user, pass, ok := r.BasicAuth()
		if !ok || user+":"+pass != s.auth {
			w.Header().Set("WWW-Authenticate", `Basic realm="opencatalog"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}
	if s.token != "" && r.Header.Get(opencatalog.AccessTokenHeader) != s.token {
		writeXML(w, http.StatusOK, fmt.Sprintf(notFoundXML, "access token rejected"))
		return
	}

	params := queryClauses(r.URL.RawQuery)
	name, err := fixtureName(params)
	if err != nil {
		writeXML(w, http.StatusOK, fmt.Sprintf(notFoundXML, err.Error()))
		return
	}

	body, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("fixture", name).Msg("no fixture")
		writeXML(w, http.StatusOK, fmt.Sprintf(notFoundXML, "The requested XML data-sheet is not present in the repository."))
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	log.Info().Str("fixture", name).Str("lang", params["lang"]).Msg("serving product")
	writeXML(w, http.StatusOK, string(body))
}

// queryClauses splits a query whose clauses are joined by ';' or '&'.
func queryClauses(rawQuery string) map[string]string {
	params := make(map[string]string)
	for _, clause := range strings.FieldsFunc(rawQuery, func(r rune) bool { return r == ';' || r == '&' }) {
		key, value, _ := strings.Cut(clause, "=")
		if v, err := url.QueryUnescape(value); err == nil {
			value = v
		}
		params[key] = value
	}
	return params
}

func fixtureName(params map[string]string) (string, error) {
	var parts []string
	switch {
	case params["ean_upc"] != "":
		parts = []string{"gtin", params["ean_upc"]}
	case params["product_id"] != "":
		parts = []string{"id", params["product_id"]}
	case params["prod_id"] != "" && params["vendor"] != "":
		parts = []string{"sku", params["vendor"], params["prod_id"]}
	default:
		return "", errors.New("no product identifier in request")
	}
	for i, p := range parts {
		parts[i] = sanitize(p)
	}
	return strings.Join(parts, "-") + ".xml", nil
}

func sanitize(v string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, v)
}

func writeXML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}
