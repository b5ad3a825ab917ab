// Command example serves a small order API whose requests are checked
// against a contract built in Go.
//
// Run:
//
//	go run ./_example
//
// Then try:
//
//	curl -i -X POST localhost:8080/orders -d '{"customer_name": "a", "item_count": 9223372036854775808}'
package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/Gobd/apicontract"
	"github.com/Gobd/apicontract/openapi"
	"github.com/getkin/kin-openapi/openapi3"
)

// Order is a sample request/response type.
type Order struct {
	CustomerName string  `json:"customer_name" docs:"required"`
	ItemCount    int64   `json:"item_count" docs:"required"`
	Total        float32 `json:"total"`
}

func main() {
	doc := openapi.DocBase("Example API", "Demonstrates apicontract", "0.1.0")

	openapi.Post(doc, "/orders", "createOrder", openapi.Endpoint{
		Summary:  "Create an order",
		Request:  Order{},
		Response: Order{},
	})
	openapi.Get(doc, "/orders/{id}", "getOrder", openapi.Endpoint{
		Summary:    "Fetch an order",
		Parameters: openapi3.Parameters{openapi.PathParam("id", openapi.Integer("int32"))},
		Response:   Order{},
	})

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reg, err := apicontract.Build(context.Background(), apicontract.FromDocument("example", doc),
		apicontract.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}

	create := reg.BodyMiddlewareMust(apicontract.Key("/orders", http.MethodPost))
	get := reg.ParamsMiddlewareMust(apicontract.Key("/orders/{id}", http.MethodGet),
		apicontract.ServeMuxPathParams("id"))

	mux := http.NewServeMux()
	mux.Handle("POST /orders", create(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var order Order
		if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(order)
	})))
	mux.Handle("GET /orders/{id}", get(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Order{CustomerName: "example", ItemCount: 1})
	})))

	logger.Info("listening", slog.String("addr", "http://localhost:8080"))
	log.Fatal(http.ListenAndServe(":8080", mux))
}
