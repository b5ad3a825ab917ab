// Command chi serves the widgets contract from testdata with a chi router.
//
// Run:
//
//	cd _example/chi && go run .
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/Gobd/apicontract"
	"github.com/go-chi/chi/v5"
)

func main() {
	reg, err := apicontract.Build(context.Background(), apicontract.FromFile("../../testdata/widgets.yaml"))
	if err != nil {
		log.Fatal(err)
	}

	create := apicontract.Key("/widgets", http.MethodPost)
	get := apicontract.Key("/widgets/{id}", http.MethodGet)

	r := chi.NewRouter()
	r.With(reg.BodyMiddlewareMust(create)).Post("/widgets", func(w http.ResponseWriter, r *http.Request) {
		var widget map[string]any
		if err := json.NewDecoder(r.Body).Decode(&widget); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		widget["id"] = 1
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(widget)
	})
	r.With(reg.ParamsMiddlewareMust(get, apicontract.ChiPathParams)).Get("/widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"id": %s}`, chi.URLParam(r, "id"))
	})

	fmt.Println("Listening on http://localhost:8080")
	log.Fatal(http.ListenAndServe(":8080", r))
}
