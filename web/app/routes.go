package app

import "github.com/JaimeStill/market-board/pkg/routes"

// Page component names.
const (
	PageHome          = "home"
	PageContents      = "contents"
	PageAnnouncements = "announcements"
	PageNews          = "news"
	PageForecast      = "forecast"
)

// Routes returns the application route table. Each call builds a fresh copy
// of the literal so callers cannot alter the registered table.
func Routes() routes.Table {
	return routes.Table{
		{Path: "/", Page: PageHome},
		{
			Path:  "/contents",
			Page:  PageContents,
			Props: true,
			Children: []routes.Route{
				{Path: "", Page: PageAnnouncements},
				{Path: "news", Page: PageNews},
				{Path: "forecast", Page: PageForecast},
			},
		},
	}
}
