package temple

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-progress-api/internal/catalog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	cat, err := catalog.Load("")
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(cat, srv.URL)
}

func TestPlayerCollectionLog(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collection-log/player_collection_log.php", r.URL.Path)
		assert.Equal(t, "Zezima", r.URL.Query().Get("player"))
		assert.Contains(t, r.URL.Query().Get("categories"), "all_pets")
		w.Write([]byte(`{"data": {
			"player": "Zezima",
			"player_name_with_capitalization": "Zezima",
			"items": {
				"all_pets": [
					{"id": 13247, "count": 1},
					{"id": 20851, "count": 2},
					{"id": 12646, "count": 0}
				],
				"chambers_of_xeric": [{"id": 22386, "count": 1}],
				"tombs_of_amascut": [{"id": 27377, "count": 1}]
			}
		}}`))
	})

	progress, transmogs, err := c.PlayerCollectionLog(context.Background(), "Zezima")
	require.NoError(t, err)

	assert.Equal(t, "Zezima", string(progress.Player))
	assert.Equal(t, 1, progress.Pets["Hellpuppy"])
	assert.Equal(t, 1, progress.Pets["Olmlet"])
	assert.Equal(t, 0, progress.Pets["Baby mole"]) // count 0 is not obtained
	assert.Equal(t, 0, progress.Pets["Beaver"])    // absent defaults to 0
	assert.Equal(t, 2, progress.PetCount)

	assert.Equal(t, 1, transmogs["Metamorphic Dust"])
	assert.Equal(t, 1, transmogs["Akkha"])
	assert.Equal(t, 0, transmogs["Sanguine Dust"])
	assert.Equal(t, 0, transmogs["Baba"])
}

func TestPlayerCollectionLogNumericName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"player": 12345, "items": {"all_pets": []}}}`))
	})

	progress, _, err := c.PlayerCollectionLog(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, "12345", string(progress.Player))
}

func TestPlayerCollectionLogNoData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {}}`))
	})

	_, _, err := c.PlayerCollectionLog(context.Background(), "nobody")
	assert.Error(t, err)
}

func TestPlayerCollectionLogUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, _, err := c.PlayerCollectionLog(context.Background(), "Zezima")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code")
}

func TestGroupPetCounts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pets/pet_count.php", r.URL.Path)
		assert.Equal(t, "1519", r.URL.Query().Get("group"))
		assert.Equal(t, "200", r.URL.Query().Get("count"))
		w.Write([]byte(`{"data": {
			"1": {"player": "Zezima", "pet_count": 12, "pet_hours": 850.5, "rank": 1},
			"2": {"player": 54321, "pet_count": 3, "pet_hours": 120, "rank": 2}
		}}`))
	})

	members, err := c.GroupPetCounts(context.Background(), "1519", 0)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, 12, members["1"].PetCount)
	assert.Equal(t, "54321", string(members["2"].Player))
	assert.InDelta(t, 850.5, members["1"].PetHours, 1e-9)
}
