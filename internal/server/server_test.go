package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"giftregistry/internal/app"
	"giftregistry/pkg/store"
)

type testEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	a, err := app.New(app.Config{
		JWTSecret:     "test-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		Store:         store.NewMemoryStore(),
		RefreshTokens: store.NewMemoryRefreshTokenStore(),
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	ts := httptest.NewServer(New(Config{App: a}).Router())
	t.Cleanup(ts.Close)
	return ts
}

func doRequest(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, testEnvelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	var env testEnvelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope for %s %s: %v", method, path, err)
	}
	return res.StatusCode, env
}

func registerUser(t *testing.T, ts *httptest.Server, name, email string) (string, string) {
	t.Helper()
	status, env := doRequest(t, ts, http.MethodPost, "/auth/register", "", map[string]any{
		"nome":  name,
		"email": email,
		"senha": "secret123",
	})
	if status != http.StatusCreated {
		t.Fatalf("register: status %d (%s)", status, env.Message)
	}
	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode register data: %v", err)
	}
	return data.AccessToken, data.RefreshToken
}

func createList(t *testing.T, ts *httptest.Server, token, name string) (id, slug string) {
	t.Helper()
	status, env := doRequest(t, ts, http.MethodPost, "/lists", token, map[string]any{"nome": name})
	if status != http.StatusCreated {
		t.Fatalf("create list: status %d (%s)", status, env.Message)
	}
	var data struct {
		List struct {
			ID   string `json:"id"`
			Slug string `json:"slug"`
		} `json:"list"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode list data: %v", err)
	}
	return data.List.ID, data.List.Slug
}

func createGift(t *testing.T, ts *httptest.Server, token, listID string, body map[string]any) string {
	t.Helper()
	status, env := doRequest(t, ts, http.MethodPost, "/lists/"+listID+"/gifts", token, body)
	if status != http.StatusCreated {
		t.Fatalf("create gift: status %d (%s)", status, env.Message)
	}
	var data struct {
		Gift struct {
			ID string `json:"id"`
		} `json:"gift"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode gift data: %v", err)
	}
	return data.Gift.ID
}

func listGiftNames(t *testing.T, ts *httptest.Server, token, listID, sort string) []string {
	t.Helper()
	path := "/lists/" + listID
	if sort != "" {
		path += "?sort=" + sort
	}
	status, env := doRequest(t, ts, http.MethodGet, path, token, nil)
	if status != http.StatusOK {
		t.Fatalf("get list: status %d (%s)", status, env.Message)
	}
	var data struct {
		Gifts []struct {
			Name string `json:"nome"`
		} `json:"gifts"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode gifts: %v", err)
	}
	names := make([]string, 0, len(data.Gifts))
	for _, g := range data.Gifts {
		names = append(names, g.Name)
	}
	return names
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	res, err := ts.Client().Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("healthz status %d", res.StatusCode)
	}
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	access, refresh := registerUser(t, ts, "Ana", "ana@example.com")

	status, env := doRequest(t, ts, http.MethodGet, "/auth/me", access, nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("me: status %d", status)
	}

	status, env = doRequest(t, ts, http.MethodPost, "/auth/refresh", "", map[string]any{"refreshToken": refresh})
	if status != http.StatusOK {
		t.Fatalf("refresh: status %d (%s)", status, env.Message)
	}

	// The consumed refresh token is rejected.
	status, env = doRequest(t, ts, http.MethodPost, "/auth/refresh", "", map[string]any{"refreshToken": refresh})
	if status != http.StatusUnauthorized || env.Success {
		t.Fatalf("reused refresh token: status %d", status)
	}

	status, env = doRequest(t, ts, http.MethodPost, "/auth/register", "", map[string]any{
		"nome": "Outra Ana", "email": "ana@example.com", "senha": "secret123",
	})
	if status != http.StatusConflict {
		t.Fatalf("duplicate email: status %d (%s)", status, env.Message)
	}

	status, _ = doRequest(t, ts, http.MethodGet, "/auth/me", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("me without token: status %d", status)
	}
}

func TestListAndGiftFlow(t *testing.T) {
	ts := newTestServer(t)
	access, _ := registerUser(t, ts, "Ana", "ana@example.com")
	listID, _ := createList(t, ts, access, "Casamento")

	blender := createGift(t, ts, access, listID, map[string]any{"nome": "Liquidificador", "preco": 150})
	towels := createGift(t, ts, access, listID, map[string]any{"nome": "Toalhas"})

	if names := listGiftNames(t, ts, access, listID, "prioridade"); fmt.Sprint(names) != "[Liquidificador Toalhas]" {
		t.Fatalf("prioridade order: %v", names)
	}
	// Unpriced last on both price directions.
	if names := listGiftNames(t, ts, access, listID, "preco-asc"); fmt.Sprint(names) != "[Liquidificador Toalhas]" {
		t.Fatalf("preco-asc order: %v", names)
	}
	if names := listGiftNames(t, ts, access, listID, "preco-desc"); fmt.Sprint(names) != "[Liquidificador Toalhas]" {
		t.Fatalf("preco-desc order: %v", names)
	}

	status, env := doRequest(t, ts, http.MethodPatch, "/lists/"+listID+"/gifts/reorder", access, map[string]any{
		"giftIds": []string{towels, blender},
	})
	if status != http.StatusOK {
		t.Fatalf("reorder: status %d (%s)", status, env.Message)
	}
	if names := listGiftNames(t, ts, access, listID, "prioridade"); fmt.Sprint(names) != "[Toalhas Liquidificador]" {
		t.Fatalf("order after reorder: %v", names)
	}

	status, env = doRequest(t, ts, http.MethodPatch, "/lists/"+listID+"/gifts/reorder", access, map[string]any{
		"giftIds": []string{},
	})
	if status != http.StatusBadRequest {
		t.Fatalf("empty reorder: status %d (%s)", status, env.Message)
	}

	status, env = doRequest(t, ts, http.MethodGet, "/lists/global?sort=prioridade", access, nil)
	if status != http.StatusOK {
		t.Fatalf("global: status %d (%s)", status, env.Message)
	}
	var global struct {
		GlobalHashID string `json:"globalHashId"`
		Gifts        []struct {
			Name string `json:"nome"`
		} `json:"gifts"`
	}
	if err := json.Unmarshal(env.Data, &global); err != nil {
		t.Fatalf("decode global: %v", err)
	}
	if global.GlobalHashID == "" || len(global.Gifts) != 2 {
		t.Fatalf("unexpected global view: %+v", global)
	}
}

func TestOwnershipStatusCodes(t *testing.T) {
	ts := newTestServer(t)
	anaToken, _ := registerUser(t, ts, "Ana", "ana@example.com")
	brunoToken, _ := registerUser(t, ts, "Bruno", "bruno@example.com")
	listID, _ := createList(t, ts, anaToken, "Casamento")

	status, env := doRequest(t, ts, http.MethodGet, "/lists/"+listID, brunoToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("foreign list: status %d (%s)", status, env.Message)
	}
	status, _ = doRequest(t, ts, http.MethodGet, "/lists/11111111-1111-4111-8111-111111111111", brunoToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("absent list: status %d", status)
	}
	status, _ = doRequest(t, ts, http.MethodGet, "/lists/not-a-uuid", brunoToken, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("malformed id: status %d", status)
	}
}

func TestPublicClaimFlow(t *testing.T) {
	ts := newTestServer(t)
	access, _ := registerUser(t, ts, "Ana", "ana@example.com")
	listID, slug := createList(t, ts, access, "Casamento")
	giftID := createGift(t, ts, access, listID, map[string]any{"nome": "Liquidificador", "preco": 150})

	status, env := doRequest(t, ts, http.MethodGet, "/public/lists/"+slug, "", nil)
	if status != http.StatusOK {
		t.Fatalf("public list: status %d (%s)", status, env.Message)
	}
	var view struct {
		ListName  string `json:"listaNome"`
		OwnerName string `json:"donoNome"`
		Gifts     []struct {
			ID     string   `json:"id"`
			Name   string   `json:"nome"`
			Price  *float64 `json:"preco"`
			Status string   `json:"status"`
		} `json:"gifts"`
	}
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode public view: %v", err)
	}
	if view.ListName != "Casamento" || view.OwnerName != "Ana" || len(view.Gifts) != 1 {
		t.Fatalf("unexpected public view: %+v", view)
	}
	if view.Gifts[0].Status != "" {
		t.Fatalf("public projection must not expose status")
	}

	status, env = doRequest(t, ts, http.MethodPost, "/public/gifts/"+giftID+"/mark-bought", "", nil)
	if status != http.StatusOK {
		t.Fatalf("claim: status %d (%s)", status, env.Message)
	}
	status, env = doRequest(t, ts, http.MethodPost, "/public/gifts/"+giftID+"/mark-bought", "", nil)
	if status != http.StatusConflict {
		t.Fatalf("second claim: status %d (%s)", status, env.Message)
	}
	if env.Message != "Este presente já foi comprado" {
		t.Fatalf("unexpected conflict message: %q", env.Message)
	}

	// The claimed gift no longer shows up anywhere.
	if names := listGiftNames(t, ts, access, listID, ""); len(names) != 0 {
		t.Fatalf("owner still sees claimed gift: %v", names)
	}
	status, env = doRequest(t, ts, http.MethodGet, "/public/lists/"+slug, "", nil)
	if status != http.StatusOK {
		t.Fatalf("public list: status %d", status)
	}
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode public view: %v", err)
	}
	if len(view.Gifts) != 0 {
		t.Fatalf("public view still shows claimed gift")
	}
}

func TestPublicGlobalView(t *testing.T) {
	ts := newTestServer(t)
	access, _ := registerUser(t, ts, "Ana", "ana@example.com")
	listID, _ := createList(t, ts, access, "Casamento")
	createGift(t, ts, access, listID, map[string]any{"nome": "Liquidificador"})

	status, env := doRequest(t, ts, http.MethodGet, "/lists/global", access, nil)
	if status != http.StatusOK {
		t.Fatalf("global: status %d", status)
	}
	var owned struct {
		GlobalHashID string `json:"globalHashId"`
	}
	if err := json.Unmarshal(env.Data, &owned); err != nil {
		t.Fatalf("decode global: %v", err)
	}

	status, env = doRequest(t, ts, http.MethodGet, "/public/global/"+owned.GlobalHashID, "", nil)
	if status != http.StatusOK {
		t.Fatalf("public global: status %d (%s)", status, env.Message)
	}
	var view struct {
		OwnerName string `json:"donoNome"`
		Gifts     []struct {
			ListName string `json:"listaNome"`
		} `json:"gifts"`
		Lists []struct {
			Name string `json:"nome"`
		} `json:"listas"`
	}
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode public global: %v", err)
	}
	if view.OwnerName != "Ana" || len(view.Gifts) != 1 || len(view.Lists) != 1 {
		t.Fatalf("unexpected public global view: %+v", view)
	}
	if view.Gifts[0].ListName != "Casamento" {
		t.Fatalf("gift should carry its list name, got %q", view.Gifts[0].ListName)
	}

	status, _ = doRequest(t, ts, http.MethodGet, "/public/global/unknown", "", nil)
	if status != http.StatusNotFound {
		t.Fatalf("unknown hash: status %d", status)
	}
}

func TestUpdateGiftPriceNullClears(t *testing.T) {
	ts := newTestServer(t)
	access, _ := registerUser(t, ts, "Ana", "ana@example.com")
	listID, _ := createList(t, ts, access, "Casamento")
	giftID := createGift(t, ts, access, listID, map[string]any{"nome": "Liquidificador", "preco": 150})

	status, env := doRequest(t, ts, http.MethodPut, "/gifts/"+giftID, access, map[string]any{"preco": nil})
	if status != http.StatusOK {
		t.Fatalf("update gift: status %d (%s)", status, env.Message)
	}
	var data struct {
		Gift struct {
			Price *float64 `json:"preco"`
		} `json:"gift"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode gift: %v", err)
	}
	if data.Gift.Price != nil {
		t.Fatalf("explicit null must clear the price")
	}
}
