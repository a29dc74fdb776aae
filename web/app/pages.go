package app

import (
	"context"
	"strings"

	"github.com/docker/go-units"

	"github.com/JaimeStill/market-board/internal/contents"
	"github.com/JaimeStill/market-board/pkg/web"
)

// Loader fetches the data a page renders. props carries the query values of
// routes that accept props and is nil otherwise.
type Loader func(ctx context.Context, props map[string]string) (any, error)

// Page is a renderable component bound to a route table page name. A Page
// with an empty View.Template is a layout only.
type Page struct {
	View web.ViewDef
	Load Loader
}

var notFoundView = web.ViewDef{Name: "not-found", Template: "404.html", Title: "Not Found"}

func pages(sys contents.System) map[string]Page {
	return map[string]Page{
		PageHome: {
			View: web.ViewDef{Name: PageHome, Template: "home.html", Title: "Home"},
		},
		// Renders only as the tab shell around its children, defined in
		// server/layouts/contents.html.
		PageContents: {
			View: web.ViewDef{Name: PageContents, Title: "Contents"},
		},
		PageAnnouncements: {
			View: web.ViewDef{Name: PageAnnouncements, Template: "announcements.html", Title: "Announcements"},
			Load: announcements(sys),
		},
		PageNews: {
			View: web.ViewDef{Name: PageNews, Template: "news.html", Title: "News"},
			Load: news(sys),
		},
		PageForecast: {
			View: web.ViewDef{Name: PageForecast, Template: "forecast.html", Title: "Forecast"},
		},
	}
}

// AnnouncementRow is an announcement formatted for the table view.
type AnnouncementRow struct {
	Ticker         string
	Name           string
	Price          string
	MarketCap      string
	Announcement   string
	PriceSensitive bool
	Time           string
}

// AnnouncementsData is the announcements tab view model.
type AnnouncementsData struct {
	Query string
	Total int
	Rows  []AnnouncementRow
}

// NewsData is the news tab view model.
type NewsData struct {
	Query    string
	Sections []contents.Section
}

func announcements(sys contents.System) Loader {
	return func(ctx context.Context, props map[string]string) (any, error) {
		items, err := sys.Announcements(ctx)
		if err != nil {
			return nil, err
		}

		q := props["q"]
		data := AnnouncementsData{Query: q, Total: len(items)}
		for _, a := range items {
			if !matches(q, a.Ticker, a.Name, a.Announcement) {
				continue
			}
			data.Rows = append(data.Rows, AnnouncementRow{
				Ticker:         a.Ticker,
				Name:           a.Name,
				Price:          a.Price,
				MarketCap:      marketCap(a.MarketCap),
				Announcement:   a.Announcement,
				PriceSensitive: bool(a.PriceSensitive),
				Time:           a.AnnouncementTime.Display(),
			})
		}
		return data, nil
	}
}

func news(sys contents.System) Loader {
	return func(ctx context.Context, props map[string]string) (any, error) {
		n, err := sys.News(ctx)
		if err != nil {
			return nil, err
		}

		q := props["q"]
		data := NewsData{Query: q}
		for _, s := range n.Sections() {
			var kept []contents.Article
			for _, a := range s.Articles {
				if matches(q, a.Headline, a.Summary, a.Category) {
					kept = append(kept, a)
				}
			}
			s.Articles = kept
			data.Sections = append(data.Sections, s)
		}
		return data, nil
	}
}

var capUnits = []string{"", "K", "M", "B", "T"}

func marketCap(v float64) string {
	if v <= 0 {
		return ""
	}
	return units.CustomSize("$%.2f%s", v, 1000.0, capUnits)
}

func matches(q string, fields ...string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
