// Package temple is a client for the TempleOSRS statistics API, the upstream
// source of collection-log ownership data.
package temple

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"pet-progress-api/internal/catalog"
	"pet-progress-api/internal/models"
)

const (
	defaultBaseURL = "https://templeosrs.com/api"
	requestTimeout = 15 * time.Second
	// Temple asks API consumers to stay well under a handful of requests
	// per second.
	rateLimitDelay = 250 * time.Millisecond
)

const logCategories = "all_pets,chambers_of_xeric,theatre_of_blood,tombs_of_amascut"

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	cat        *catalog.Catalog
}

func New(cat *catalog.Catalog, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		userAgent:  "pet-progress-api/1.0",
		cat:        cat,
	}
}

type logItem struct {
	ID    int `json:"id"`
	Count int `json:"count"`
}

type collectionLogResponse struct {
	Data struct {
		Player     models.FlexString    `json:"player"`
		PlayerName string               `json:"player_name_with_capitalization"`
		Items      map[string][]logItem `json:"items"`
	} `json:"data"`
}

type groupResponse struct {
	Data map[string]models.PlayerProgress `json:"data"`
}

// PlayerCollectionLog fetches one player's collection log and maps it onto
// the catalogue: an ownership flag per pet plus the transmog flags parsed
// out of their raid categories.
func (c *Client) PlayerCollectionLog(ctx context.Context, player string) (*models.PlayerProgress, map[string]int, error) {
	u := fmt.Sprintf("%s/collection-log/player_collection_log.php?player=%s&categories=%s",
		c.baseURL, url.QueryEscape(player), logCategories)

	var resp collectionLogResponse
	if err := c.doRequest(ctx, u, &resp); err != nil {
		return nil, nil, fmt.Errorf("fetching collection log for %s: %w", player, err)
	}
	if resp.Data.Items == nil {
		return nil, nil, fmt.Errorf("no collection log data for %s", player)
	}

	pets := make(map[string]int)
	for _, name := range c.cat.PetNames() {
		pets[name] = 0
	}
	for _, item := range resp.Data.Items["all_pets"] {
		name, ok := c.cat.PetByItemID(item.ID)
		if !ok || item.Count < 1 {
			continue
		}
		pets[name] = 1
	}

	count := 0
	for _, v := range pets {
		if v > 0 {
			count++
		}
	}

	transmogs := make(map[string]int)
	for _, bonus := range c.cat.BonusPets() {
		transmogs[bonus.Name] = 0
		for _, item := range resp.Data.Items[bonus.Log] {
			if item.ID == bonus.ItemID && item.Count >= 1 {
				transmogs[bonus.Name] = 1
			}
		}
	}

	name := resp.Data.PlayerName
	if name == "" {
		name = string(resp.Data.Player)
	}
	if name == "" {
		name = player
	}

	return &models.PlayerProgress{
		Player:   models.FlexString(name),
		Pets:     pets,
		PetCount: count,
	}, transmogs, nil
}

// GroupPetCounts fetches the leaderboard-style per-member pet summaries for
// a Temple group id.
func (c *Client) GroupPetCounts(ctx context.Context, group string, count int) (map[string]models.PlayerProgress, error) {
	if count <= 0 {
		count = 200
	}
	u := fmt.Sprintf("%s/pets/pet_count.php?group=%s&count=%d", c.baseURL, url.QueryEscape(group), count)

	var resp groupResponse
	if err := c.doRequest(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("fetching group %s: %w", group, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no pet data for group %s", group)
	}
	return resp.Data, nil
}

func (c *Client) doRequest(ctx context.Context, url string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
