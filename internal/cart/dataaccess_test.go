package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/appetiteclub/portal/internal/apiclient"
	"github.com/appetiteclub/portal/internal/models"
)

func TestDataAccessGetCart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cart" {
			t.Errorf("path = %q, want /cart", r.URL.Path)
		}
		w.Write([]byte(`{"data":{"items":[{"dish":{"_id":"d-1","name":"Soup","price":4.5},"quantity":2},{"dish":null,"dishId":"d-2","quantity":1,"price":3}],"totalPrice":12}}`))
	}))
	defer server.Close()

	got, err := NewDataAccess(apiclient.New(server.URL)).Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(got.Items))
	}
	if !got.Items[0].Resolvable() || got.Items[0].DishID != "d-1" {
		t.Errorf("first item = %+v, want resolved d-1", got.Items[0])
	}
	if got.Items[1].Resolvable() || got.Items[1].LineTotal != 3 {
		t.Errorf("second item = %+v, want unresolved line of 3", got.Items[1])
	}
}

func TestDataAccessItemRoutes(t *testing.T) {
	type seen struct {
		method string
		path   string
	}
	var got []seen
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, seen{r.Method, r.URL.Path})
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	da := NewDataAccess(apiclient.New(server.URL))
	ctx := context.Background()
	if err := da.AddItem(ctx, models.AddItemRequest{DishID: "d-1", Quantity: 1}); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if err := da.UpdateQuantity(ctx, "d-1", 3); err != nil {
		t.Fatalf("UpdateQuantity() error = %v", err)
	}
	if err := da.RemoveItem(ctx, "d-1"); err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}

	want := []seen{
		{http.MethodPost, "/cart/items"},
		{http.MethodPut, "/cart/items/d-1"},
		{http.MethodDelete, "/cart/items/d-1"},
	}
	if len(got) != len(want) {
		t.Fatalf("requests = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("request %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDataAccessPlaceOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.PlaceOrderRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.DeliveryAddress != "1 Main St" || req.Payment.Method != "Online Banking" {
			t.Errorf("request = %+v", req)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"order":{"_id":"o-1","status":"Pending","totalPrice":10}}`))
	}))
	defer server.Close()

	req := models.PlaceOrderRequest{
		DeliveryAddress: "1 Main St",
		Payment:         models.PaymentUpdate{Amount: 10, Method: "Online Banking", Status: "Paid"},
	}
	got, err := NewDataAccess(apiclient.New(server.URL)).PlaceOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	if got.ID != "o-1" || got.Status != "Pending" {
		t.Errorf("PlaceOrder() = %+v, want o-1 Pending", got)
	}
}
