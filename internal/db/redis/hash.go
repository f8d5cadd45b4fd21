package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/lookdex/internal/db"
)

// Put stores records as hashes in a single DoMulti round-trip. The FT index picks them up by prefix.
func (s *Store) Put(ctx context.Context, records []db.Record) error {
	if len(records) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(records))
	for i, r := range records {
		cmd := s.b().Hset().Key(s.key(r.ID)).FieldValue()
		for k, v := range r.Fields {
			cmd = cmd.FieldValue(k, v)
		}
		cmds[i] = cmd.Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", s.key(records[i].ID), err)}
		}
	}
	return nil
}

// Delete removes documents by id.
func (s *Store) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	cmd := s.b().Del().Key(keys...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Fetch loads the requested hash fields for each id with pipelined HMGET, in input order.
// Missing documents and fields are absent from the returned maps.
func (s *Store) Fetch(ctx context.Context, ids, fields []string) ([]map[string]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(ids))
	for i, id := range ids {
		if len(fields) == 0 {
			cmds[i] = s.b().Hgetall().Key(s.key(id)).Build()
		} else {
			cmds[i] = s.b().Hmget().Key(s.key(id)).Field(fields...).Build()
		}
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]map[string]string, len(results))
	for i, res := range results {
		if len(fields) == 0 {
			m, err := res.AsStrMap()
			if err != nil {
				return nil, &db.Error{Op: db.OpHMGet, Err: fmt.Errorf("key %s: %w", s.key(ids[i]), err)}
			}
			out[i] = m
			continue
		}
		values, err := res.ToArray()
		if err != nil {
			return nil, &db.Error{Op: db.OpHMGet, Err: fmt.Errorf("key %s: %w", s.key(ids[i]), err)}
		}
		m := make(map[string]string, len(fields))
		for j, v := range values {
			if j >= len(fields) || v.IsNil() {
				continue
			}
			if str, err := v.ToString(); err == nil {
				m[fields[j]] = str
			}
		}
		out[i] = m
	}
	return out, nil
}
