package hiscores

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-progress-api/internal/catalog"
)

const hiscoresPage = `<html><body><table>
<tr><td><a href="overall.ws?table=0">Overall</a></td><td>2277</td><td>1,234</td><td>299,791,913</td></tr>
<tr><td><a href="#">Cerberus</a></td><td>12,345</td><td>2,850</td></tr>
<tr><td><a href="#">Theatre of Blood</a></td><td>987</td><td>412</td></tr>
<tr><td><a href="#">Theatre of Blood: Hard Mode</a></td><td>50</td><td>31</td></tr>
<tr><td><a href="#">Zulrah</a></td><td>55,000</td><td>0</td></tr>
<tr><td><a href="#">Wintertodt</a></td><td>-1</td><td>-1</td></tr>
</table></body></html>`

func newTestScraper(t *testing.T, page string, status int) *Scraper {
	t.Helper()
	cat, err := catalog.Load("")
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/m=hiscore_oldschool/hiscorepersonal", r.URL.Path)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return New(cat, srv.URL)
}

func TestSeedKC(t *testing.T) {
	s := newTestScraper(t, hiscoresPage, http.StatusOK)

	in, err := s.SeedKC(context.Background(), "Zezima")
	require.NoError(t, err)

	// Boss names map onto catalogue channels, last cell is the score.
	assert.Equal(t, "2850", in.Get("Hellpuppy", ""))
	assert.Equal(t, "412", in.Get("Lil' zik", "normal"))
	assert.Equal(t, "31", in.Get("Lil' zik", "hardMode"))

	// Zero and negative scores are skipped.
	assert.Equal(t, "", in.Get("Pet snakeling", ""))
	assert.Equal(t, "", in.Get("Phoenix", ""))

	// Activities with no catalogue channel never appear.
	assert.Equal(t, "", in.Get("Beaver", ""))
}

func TestSeedKCHTTPError(t *testing.T) {
	s := newTestScraper(t, "", http.StatusNotFound)

	_, err := s.SeedKC(context.Background(), "nobody")
	assert.Error(t, err)
}

func TestSeedKCEmptyPage(t *testing.T) {
	s := newTestScraper(t, "<html><body>no tables here</body></html>", http.StatusOK)

	in, err := s.SeedKC(context.Background(), "Zezima")
	require.NoError(t, err)
	assert.Empty(t, in)
}
