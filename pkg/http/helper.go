package http

import (
	"net/http"
	"strconv"
	"time"

	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractDate reads a required ?date=YYYY-MM-DD query parameter.
func ExtractDate(r *http.Request) (string, error) {
	s := r.URL.Query().Get("date")
	if s == "" {
		return "", apperrors.InvalidInput("missing date parameter")
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", apperrors.InvalidInput("invalid date parameter: " + s)
	}
	return s, nil
}
