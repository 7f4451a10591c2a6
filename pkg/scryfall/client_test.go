package scryfall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCard(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "56ebc372-aabd-4174-a943-c7bf59e5028d",
			"name": "Lightning Bolt",
			"set_name": "Masters 25",
			"tcgplayer_id": 161480
		}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	card, err := c.Card(context.Background(), "56ebc372-aabd-4174-a943-c7bf59e5028d")
	require.NoError(t, err)

	assert.Equal(t, "/cards/56ebc372-aabd-4174-a943-c7bf59e5028d", gotPath)
	assert.Equal(t, "Lightning Bolt", card.Name)
	assert.Equal(t, int64(161480), card.TCGPlayerID)
}

func TestCardNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"object":"error","code":"not_found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Card(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCardServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Card(context.Background(), "x")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestCardMissingStoreID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id": "abc", "name": "Digital Only Card"}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	card, err := c.Card(context.Background(), "abc")
	require.NoError(t, err)
	assert.Zero(t, card.TCGPlayerID)
}
