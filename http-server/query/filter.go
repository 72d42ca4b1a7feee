package query

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gas-monitor/internal/storage"
)

const dateLayout = "2006-01-02"

// ReadingFilter разбирает ?customer=&from=&to=&search=. Даты включительные,
// to переводится в начало следующего дня.
func ReadingFilter(r *http.Request, loc *time.Location) (storage.ReadingFilter, error) {
	q := r.URL.Query()

	var filter storage.ReadingFilter
	for _, c := range q["customer"] {
		for _, code := range strings.Split(c, ",") {
			if code = strings.TrimSpace(code); code != "" {
				filter.CustomerCodes = append(filter.CustomerCodes, code)
			}
		}
	}
	filter.Search = strings.TrimSpace(q.Get("search"))

	if s := q.Get("from"); s != "" {
		from, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			return storage.ReadingFilter{}, errors.New("invalid from date")
		}
		filter.From = from
	}
	if s := q.Get("to"); s != "" {
		to, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			return storage.ReadingFilter{}, errors.New("invalid to date")
		}
		filter.To = to.AddDate(0, 0, 1)
	}

	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return storage.ReadingFilter{}, errors.New("from must not be after to")
	}

	return filter, nil
}
