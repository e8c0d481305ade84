package cards

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"arena-service/pkg/arena"
)

var httpClient = &http.Client{Timeout: 20 * time.Second}

// ImportHTML extracts cards from a page. Two shapes are understood:
// elements carrying a data-card JSON attribute (the draggable cards of the
// game page), and rows of a table.cards whose header names the columns.
func ImportHTML(r io.Reader) (*Catalog, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse cards page: %w", err)
	}

	var (
		specs   []arena.CharacterSpec
		scanErr error
	)

	doc.Find("[data-card]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		raw, _ := s.Attr("data-card")
		var spec arena.CharacterSpec
		if err := json.Unmarshal([]byte(raw), &spec); err != nil {
			scanErr = fmt.Errorf("%w: data-card %d: %v", ErrInvalidCard, i, err)
			return false
		}
		specs = append(specs, spec)
		return true
	})
	if scanErr != nil {
		return nil, scanErr
	}

	doc.Find("table.cards").Each(func(_ int, table *goquery.Selection) {
		if scanErr != nil {
			return
		}
		cols := map[string]int{}
		table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
			cols[strings.ToLower(strings.TrimSpace(th.Text()))] = i
		})

		table.Find("tr").Each(func(row int, tr *goquery.Selection) {
			if scanErr != nil {
				return
			}
			cells := tr.Find("td")
			if cells.Length() == 0 {
				return
			}
			cell := func(name string) string {
				i, ok := cols[name]
				if !ok {
					return ""
				}
				return strings.TrimSpace(cells.Eq(i).Text())
			}
			spec, err := rowSpec(cell)
			if err != nil {
				scanErr = fmt.Errorf("row %d: %w", row, err)
				return
			}
			specs = append(specs, spec)
		})
	})
	if scanErr != nil {
		return nil, scanErr
	}

	return New(specs...)
}

func rowSpec(cell func(string) string) (arena.CharacterSpec, error) {
	spec := arena.CharacterSpec{ID: cell("id"), Name: cell("name")}
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"hp", &spec.HP},
		{"atk", &spec.Atk},
		{"def", &spec.Def},
	} {
		v, err := strconv.Atoi(cell(f.name))
		if err != nil {
			return spec, fmt.Errorf("%w: %s: %v", ErrInvalidCard, f.name, err)
		}
		*f.dst = v
	}
	return spec, nil
}

// Fetch downloads a cards page and imports it.
func Fetch(ctx context.Context, pageURL string) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "arena-service/1.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch cards: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch cards: unexpected status %s", resp.Status)
	}
	return ImportHTML(resp.Body)
}
