package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// requestParams junta query params y body JSON (si lo hay) en un solo mapa
// de strings; el query pisa al body. Los endpoints de login/oauth aceptan
// las dos formas porque los consumen tanto frontends como SDKs de servidor.
func requestParams(r *http.Request) map[string]string {
	out := make(map[string]string)

	if r.Body != nil && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		body := make(map[string]any)
		limited := io.LimitReader(r.Body, 1<<20)
		if err := json.NewDecoder(limited).Decode(&body); err == nil {
			for k, v := range body {
				switch t := v.(type) {
				case string:
					out[k] = t
				case float64, bool:
					out[k] = fmt.Sprint(t)
				}
			}
		}
		r.Body.Close()
	}

	for k, vs := range r.URL.Query() {
		if len(vs) > 0 && vs[0] != "" {
			out[k] = vs[0]
		}
	}
	return out
}
