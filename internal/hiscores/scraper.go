// Package hiscores scrapes boss kill counts from the official hiscores page
// to pre-fill likelihood inputs, so a player does not have to type every
// kill count by hand.
package hiscores

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"pet-progress-api/internal/catalog"
	"pet-progress-api/internal/likelihood"
)

const defaultBaseURL = "https://secure.runescape.com"

var (
	nonDigitRE = regexp.MustCompile(`[^0-9]`)
	// Fallback for when the markup resists goquery: activity rows carry the
	// name in a link and the score in the trailing cell.
	activityRowRE = regexp.MustCompile(`(?is)<tr[^>]*>\s*<td[^>]*>.*?>([^<]+)</a>.*?<td[^>]*>\s*([\d,]+)\s*</td>\s*</tr>`)
)

type Scraper struct {
	baseURL    string
	httpClient *http.Client
	cat        *catalog.Catalog
}

func New(cat *catalog.Catalog, baseURL string) *Scraper {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Scraper{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cat:        cat,
	}
}

// SeedKC fetches a player's hiscores page and returns likelihood inputs for
// every catalogue channel whose boss appears with a positive kill count.
// Rows that fail to parse are skipped, not surfaced as errors.
func (s *Scraper) SeedKC(ctx context.Context, player string) (likelihood.Inputs, error) {
	u := fmt.Sprintf("%s/m=hiscore_oldschool/hiscorepersonal?user1=%s", s.baseURL, url.QueryEscape(player))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "pet-progress-api/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("hiscores: fetch failed for %s: %v", u, err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		log.Printf("hiscores: HTTP %d for %s", resp.StatusCode, u)
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	kcByBoss := s.parseScores(doc)
	return s.inputs(kcByBoss), nil
}

func (s *Scraper) parseScores(doc *goquery.Document) map[string]int {
	out := make(map[string]int)

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		name := strings.TrimSpace(row.Find("a").First().Text())
		if name == "" {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		raw := strings.TrimSpace(cells.Last().Text())
		if strings.HasPrefix(raw, "-") {
			// Unranked activities score as -1.
			return
		}
		score := nonDigitRE.ReplaceAllString(raw, "")
		if score == "" {
			return
		}
		if v, err := strconv.Atoi(score); err == nil {
			out[strings.ToLower(name)] = v
		}
	})

	if len(out) > 0 {
		return out
	}

	// Regex fallback against the raw markup.
	html, err := doc.Html()
	if err != nil {
		return out
	}
	for _, match := range activityRowRE.FindAllStringSubmatch(html, -1) {
		if len(match) < 3 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(match[1]))
		score := nonDigitRE.ReplaceAllString(match[2], "")
		if v, err := strconv.Atoi(score); err == nil {
			out[name] = v
		}
	}
	return out
}

func (s *Scraper) inputs(kcByBoss map[string]int) likelihood.Inputs {
	in := make(likelihood.Inputs)
	for _, pet := range s.cat.PetNames() {
		for _, ch := range s.cat.Channels(pet) {
			if ch.Boss == "" {
				continue
			}
			kc, ok := kcByBoss[strings.ToLower(ch.Boss)]
			if !ok || kc <= 0 {
				continue
			}
			in.Set(pet, ch.Name, strconv.Itoa(kc))
		}
	}
	return in
}
