package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYGOProDeckSource_Lookup_NormalizesPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v7/cardinfo.php", r.URL.Path)
		assert.Equal(t, "Blue-Eyes White Dragon", r.URL.Query().Get("fname"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{
			"name":"Blue-Eyes White Dragon",
			"card_sets":[{"set_name":"Legend of Blue Eyes","set_rarity":"Ultra Rare"}],
			"card_prices":[{"tcgplayer_price":"45.20","ebay_price":"52.00","amazon_price":"0.00","coolstuffinc_price":null}]
		}]}`))
	}))
	defer server.Close()

	source := NewYGOProDeckSource(server.URL, nil, testLogger())

	signal, err := source.Lookup(context.Background(), "Blue-Eyes White Dragon", "ignored")
	require.NoError(t, err)
	require.NotNil(t, signal)

	assert.Equal(t, "ygoprodeck", signal.Source)
	assert.Equal(t, "Legend of Blue Eyes", signal.SetName)
	assert.Equal(t, "Ultra Rare", signal.Rarity)
	require.NotNil(t, signal.Prices["tcgplayer"])
	assert.Equal(t, "45.20", *signal.Prices["tcgplayer"])
	assert.Nil(t, signal.Prices["coolstuffinc"])
	assert.Contains(t, signal.Prices, "amazon")
}

func TestYGOProDeckSource_Lookup_ZeroPricesDoNotCountAsPriced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// First card only has placeholder zeros; second one has a real price.
		_, _ = w.Write([]byte(`{"data":[
			{"name":"Token","card_prices":[{"tcgplayer_price":"0.00","ebay_price":"0"}]},
			{"name":"Dark Magician","card_prices":[{"tcgplayer_price":"8.10"}]}
		]}`))
	}))
	defer server.Close()

	source := NewYGOProDeckSource(server.URL, nil, testLogger())

	signal, err := source.Lookup(context.Background(), "Magician", "")
	require.NoError(t, err)
	require.NotNil(t, signal)
	require.NotNil(t, signal.Prices["tcgplayer"])
	assert.Equal(t, "8.10", *signal.Prices["tcgplayer"])
}

func TestYGOProDeckSource_Lookup_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"No card matching your query was found"}`))
	}))
	defer server.Close()

	source := NewYGOProDeckSource(server.URL, nil, testLogger())

	signal, err := source.Lookup(context.Background(), "Not A Card", "")
	require.NoError(t, err)
	assert.Nil(t, signal)
}
