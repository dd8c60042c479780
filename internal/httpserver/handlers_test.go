package httpserver

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"storefront/internal/state/auth"
	"storefront/internal/state/loading"
)

type cartBody struct {
	Items []struct {
		ID        string `json:"id"`
		ProductID string `json:"productId"`
		Variant   string `json:"variant"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
	TotalItems int        `json:"totalItems"`
	TotalPrice priceValue `json:"totalPrice"`
}

func TestProducts_ListFilterAndGet(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/products?category=footwear&sort=-price", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var page productPageView
	decode(t, rec, &page)
	if page.Total != 2 || page.Results[0].ID != "prod-leather-boots" {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Results[0].Price.CentAmount != 18500 || page.Results[0].Slug != "leather-boots" {
		t.Fatalf("unexpected product view %+v", page.Results[0])
	}

	if rec := env.do(t, http.MethodGet, "/api/products?sort=rating", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad sort, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/products?minPrice=cheap", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad price, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/products/prod-canvas-tote", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/products/nope", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/categories", "", ""); !strings.Contains(rec.Body.String(), `"key":"footwear"`) {
		t.Fatalf("unexpected categories %s", rec.Body.String())
	}
}

func TestCart_AddMergeUpdateRemove(t *testing.T) {
	env := newTestEnv(t)
	const sid = "cart-flow"

	rec := env.do(t, http.MethodPost, "/api/cart/items", sid, `{"productId":"prod-runner","variant":"42"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPost, "/api/cart/items", sid, `{"productId":"prod-runner","variant":"42","quantity":2}`)
	var cart cartBody
	decode(t, rec, &cart)
	if len(cart.Items) != 1 || cart.TotalItems != 3 || cart.TotalPrice.CentAmount != 36000 {
		t.Fatalf("unexpected cart %+v", cart)
	}
	id := cart.Items[0].ID

	rec = env.do(t, http.MethodPatch, "/api/cart/items/"+id, sid, `{"quantity":1}`)
	decode(t, rec, &cart)
	if cart.TotalItems != 1 {
		t.Fatalf("expected 1 item, got %+v", cart)
	}

	rec = env.do(t, http.MethodPatch, "/api/cart/items/missing", sid, `{"quantity":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected no-op 200, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/cart/items/"+id, sid, "")
	decode(t, rec, &cart)
	if len(cart.Items) != 0 || cart.TotalPrice.CentAmount != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
}

func TestCart_VariantChangeMergesAndKeepsQuantityOnSurvivor(t *testing.T) {
	env := newTestEnv(t)
	const sid = "variant-flow"

	env.do(t, http.MethodPost, "/api/cart/items", sid, `{"productId":"prod-wool-beanie","variant":"red"}`)
	time.Sleep(2 * time.Millisecond)
	rec := env.do(t, http.MethodPost, "/api/cart/items", sid, `{"productId":"prod-wool-beanie","variant":"grey","quantity":2}`)
	var cart cartBody
	decode(t, rec, &cart)
	if len(cart.Items) != 2 {
		t.Fatalf("expected 2 lines, got %+v", cart)
	}
	older, newer := cart.Items[0].ID, cart.Items[1].ID

	rec = env.do(t, http.MethodPatch, "/api/cart/items/"+newer, sid, `{"variant":"red","quantity":7}`)
	decode(t, rec, &cart)
	if len(cart.Items) != 1 || cart.Items[0].ID != older || cart.Items[0].Quantity != 7 {
		t.Fatalf("unexpected merged cart %+v", cart)
	}
}

func TestCart_Validation(t *testing.T) {
	env := newTestEnv(t)
	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/api/cart/items", `{"productId":"prod-runner","quantity":0}`, http.StatusBadRequest},
		{http.MethodPost, "/api/cart/items", `{"quantity":1}`, http.StatusBadRequest},
		{http.MethodPost, "/api/cart/items", `{"productId":"nope"}`, http.StatusNotFound},
		{http.MethodPatch, "/api/cart/items/x", `{}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if rec := env.do(t, tc.method, tc.path, "validation", tc.body); rec.Code != tc.want {
			t.Fatalf("%s %s %s: expected %d, got %d", tc.method, tc.path, tc.body, tc.want, rec.Code)
		}
	}
}

func TestCart_ClearAndSessionIsolation(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/cart/items", "a", `{"productId":"prod-classic-tee","quantity":4}`)

	var cart cartBody
	decode(t, env.do(t, http.MethodGet, "/api/cart", "b", ""), &cart)
	if cart.TotalItems != 0 {
		t.Fatalf("session b sees foreign items: %+v", cart)
	}
	decode(t, env.do(t, http.MethodDelete, "/api/cart", "a", ""), &cart)
	if cart.TotalItems != 0 {
		t.Fatalf("expected cleared cart, got %+v", cart)
	}
}

func TestAuth_LoginFailureThenSuccessThenLogout(t *testing.T) {
	env := newTestEnv(t)
	const sid = "auth-flow"

	rec := env.do(t, http.MethodPost, "/api/auth/login", sid, `{"email":"bad@x.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var failed struct {
		Error string     `json:"error"`
		State auth.State `json:"state"`
	}
	decode(t, rec, &failed)
	if failed.Error != "Invalid credentials" || failed.State.IsAuthenticated || !failed.State.IsInitialized {
		t.Fatalf("unexpected failure body %+v", failed)
	}

	rec = env.do(t, http.MethodDelete, "/api/auth/error", sid, "")
	var state auth.State
	decode(t, rec, &state)
	if state.Error != "" {
		t.Fatalf("expected error cleared, got %q", state.Error)
	}

	if rec := env.do(t, http.MethodPatch, "/api/auth/me", sid, `{"name":"X"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous update, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", sid, `{"email":"demo@storefront.test","password":"Password1"}`)
	decode(t, rec, &state)
	if rec.Code != http.StatusOK || !state.IsAuthenticated || state.User == nil {
		t.Fatalf("expected login, got %d %+v", rec.Code, state)
	}

	rec = env.do(t, http.MethodPatch, "/api/auth/me", sid, `{"name":"Renamed"}`)
	decode(t, rec, &state)
	if state.User.Name != "Renamed" || state.User.Email != "demo@storefront.test" {
		t.Fatalf("unexpected patched user %+v", state.User)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/logout", sid, "")
	decode(t, rec, &state)
	if state.IsAuthenticated || state.User != nil {
		t.Fatalf("expected logged out, got %+v", state)
	}
}

func TestAuth_Register(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/auth/register", "reg", `{"email":"new@x.com","password":"pw","name":"New"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPost, "/api/auth/register", "reg2", `{"email":"new@x.com","password":"pw"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate, got %d", rec.Code)
	}
}

func TestUI_LoadingAndNavigationReset(t *testing.T) {
	env := newTestEnv(t)
	const sid = "ui"

	rec := env.do(t, http.MethodPost, "/api/ui/loading", sid, `{"loading":true}`)
	var state loading.State
	decode(t, rec, &state)
	if !state.IsLoading || state.Message != loading.DefaultMessage {
		t.Fatalf("unexpected loading state %+v", state)
	}

	if rec := env.do(t, http.MethodPost, "/api/ui/navigation", sid, `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without path, got %d", rec.Code)
	}
	env.do(t, http.MethodPost, "/api/ui/navigation", sid, `{"path":"/products"}`)
	env.clock.Advance(loading.DefaultReset)

	decode(t, env.do(t, http.MethodGet, "/api/ui/loading", sid, ""), &state)
	if state.IsLoading || state.Route != "/products" {
		t.Fatalf("expected reset after navigation, got %+v", state)
	}
}

func TestUI_NavbarEvents(t *testing.T) {
	env := newTestEnv(t)
	const sid = "navbar"

	var view navbarView
	decode(t, env.do(t, http.MethodPost, "/api/ui/navbar/events", sid, `{"type":"scroll","y":400}`), &view)
	if view.State.Visible {
		t.Fatalf("expected hidden after scrolling down, got %+v", view.State)
	}
	decode(t, env.do(t, http.MethodPost, "/api/ui/navbar/events", sid, `{"type":"scroll","y":300}`), &view)
	if !view.State.Visible || !view.State.PendingHide {
		t.Fatalf("expected visible with pending hide, got %+v", view.State)
	}
	env.clock.Advance(view.Config.HideDelay)

	decode(t, env.do(t, http.MethodGet, "/api/ui/navbar", sid, ""), &view)
	if view.State.Visible {
		t.Fatalf("expected hidden after delay, got %+v", view.State)
	}
	if rec := env.do(t, http.MethodPost, "/api/ui/navbar/events", sid, `{"type":"wiggle"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
