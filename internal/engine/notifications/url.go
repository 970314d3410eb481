package notifications

import (
	"net/url"
	"strings"
)

// BuildNavigationURL appends tab and then highlight to the path as query
// parameters. Absent refinements are skipped; a bare path has no "?".
func BuildNavigationURL(res NavigationResult) string {
	path := res.Path
	if path == "" {
		path = dashboardPath
	}

	var params []string
	if res.Tab != "" {
		params = append(params, "tab="+url.QueryEscape(res.Tab))
	}
	if res.Highlight != "" {
		params = append(params, "highlight="+url.QueryEscape(res.Highlight))
	}
	if len(params) == 0 {
		return path
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}
