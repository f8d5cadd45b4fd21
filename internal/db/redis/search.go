package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/lookdex/internal/db"
)

// Search runs a prepared query via FT.SEARCH. Only the first sort field is applied:
// SORTBY takes a single field, and ties keep the engine's internal document order.
// Multi-page walks therefore sort by the unique node id.
func (s *Store) Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
	p, ok := req.Query.(*prepared)
	if !ok {
		return nil, fmt.Errorf("query was not prepared by the redis driver: %T", req.Query)
	}

	args := []string{s.index, p.query}

	withFields := len(req.Fields) > 0 && req.Limit > 0
	if withFields {
		args = append(args, "RETURN", strconv.Itoa(len(req.Fields)))
		args = append(args, req.Fields...)
	} else {
		args = append(args, "NOCONTENT")
	}
	if req.Limit > 0 {
		args = append(args, "WITHSCORES")
	}
	if len(req.Sort) > 0 {
		dir := "ASC"
		if req.Sort[0].Desc {
			dir = "DESC"
		}
		args = append(args, "SORTBY", req.Sort[0].Field, dir)
	}
	args = append(args,
		"LIMIT", strconv.Itoa(req.Offset), strconv.Itoa(req.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return s.parseSearchResult(raw, req.Limit > 0, withFields)
}

// parseSearchResult reads [total, key, score?, fields?, key, ...].
func (s *Store) parseSearchResult(raw []rueidis.RedisMessage, withScores, withFields bool) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	stride := 1
	if withScores {
		stride++
	}
	if withFields {
		stride++
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/stride)
	for i := 1; i+stride-1 < len(raw); i += stride {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		entry := db.SearchEntry{ID: s.id(key)}

		next := i + 1
		if withScores {
			scoreStr, err := raw[next].ToString()
			if err != nil {
				continue
			}
			if entry.Score, err = strconv.ParseFloat(scoreStr, 64); err != nil {
				continue
			}
			next++
		}
		if withFields {
			fields, err := raw[next].ToArray()
			if err != nil {
				continue
			}
			entry.Fields = parseFieldPairs(fields)
		}

		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}
