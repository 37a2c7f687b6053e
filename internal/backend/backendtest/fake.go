// Package backendtest provides an in-memory recording backend.Client for
// repository tests.
package backendtest

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"

	"gym-panel/internal/backend"
)

// Call is one recorded client invocation.
type Call struct {
	Method string
	Table  string
	Row    backend.Row
	Query  string
}

// Client records calls and replays canned results. Results are JSON encoded
// and decoded into dest, so any model with json tags can be served.
type Client struct {
	mu sync.Mutex

	Calls []Call

	// Rows keyed by table, returned by Select and (first element) by Get.
	Rows map[string]any
	// Inserted is scanned into Insert's dest; defaults to the inserted row.
	Inserted map[string]any
	// Affected is returned by Update/Delete; defaults to 1.
	Affected map[string]int64
	Err      error
}

func New() *Client {
	return &Client{
		Rows:     map[string]any{},
		Inserted: map[string]any{},
		Affected: map[string]int64{},
	}
}

func (c *Client) record(call Call) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, call)
}

// Last returns the most recent call.
func (c *Client) Last() Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Calls) == 0 {
		return Call{}
	}
	return c.Calls[len(c.Calls)-1]
}

func (c *Client) Select(_ context.Context, table string, dest any, opts ...backend.Option) error {
	c.record(Call{Method: "select", Table: table, Query: backend.Explain(table, opts...)})
	if c.Err != nil {
		return c.Err
	}
	rows, ok := c.Rows[table]
	if !ok {
		return nil
	}
	return copyInto(rows, dest)
}

func (c *Client) Get(_ context.Context, table string, dest any, opts ...backend.Option) error {
	c.record(Call{Method: "get", Table: table, Query: backend.Explain(table, opts...)})
	if c.Err != nil {
		return c.Err
	}
	rows, ok := c.Rows[table]
	if !ok {
		return backend.ErrNotFound
	}
	v := reflect.ValueOf(rows)
	if v.Kind() == reflect.Slice {
		if v.Len() == 0 {
			return backend.ErrNotFound
		}
		return copyInto(v.Index(0).Interface(), dest)
	}
	return copyInto(rows, dest)
}

func (c *Client) Insert(_ context.Context, table string, row backend.Row, dest any) error {
	c.record(Call{Method: "insert", Table: table, Row: row})
	if c.Err != nil {
		return c.Err
	}
	if dest == nil {
		return nil
	}
	if v, ok := c.Inserted[table]; ok {
		return copyInto(v, dest)
	}
	return copyInto(row, dest)
}

func (c *Client) Update(_ context.Context, table string, row backend.Row, opts ...backend.Option) (int64, error) {
	c.record(Call{Method: "update", Table: table, Row: row, Query: backend.Explain(table, opts...)})
	if c.Err != nil {
		return 0, c.Err
	}
	if n, ok := c.Affected[table]; ok {
		return n, nil
	}
	return 1, nil
}

func (c *Client) Delete(_ context.Context, table string, opts ...backend.Option) (int64, error) {
	c.record(Call{Method: "delete", Table: table, Query: backend.Explain(table, opts...)})
	if c.Err != nil {
		return 0, c.Err
	}
	if n, ok := c.Affected[table]; ok {
		return n, nil
	}
	return 1, nil
}

func copyInto(src, dest any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
