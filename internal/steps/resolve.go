package steps

import (
	"context"
	"net/http"

	"github.com/alexisbeaulieu97/shopflow/internal/assert"
	"github.com/alexisbeaulieu97/shopflow/internal/client"
)

// resolution reports how findOrCreate obtained an id.
type resolution int

const (
	resolvedExisting resolution = iota
	resolvedCreated
	resolvedAfterConflict
)

func (r resolution) String() string {
	switch r {
	case resolvedCreated:
		return "created"
	case resolvedAfterConflict:
		return "existing after conflict"
	default:
		return "existing"
	}
}

// resource describes a labelled entity that is reused across runs.
type resource struct {
	// lookup returns the id of the entity or "" when none exists.
	lookup func(ctx context.Context) (string, error)
	// create issues the creation request.
	create  func(ctx context.Context) (*client.Response, error)
	idField string
}

// findOrCreate resolves r. A 409 on create means another writer won the
// race, so the lookup is repeated before giving up.
func findOrCreate(ctx context.Context, r resource) (string, resolution, error) {
	id, err := r.lookup(ctx)
	if err != nil {
		return "", resolvedExisting, err
	}
	if id != "" {
		return id, resolvedExisting, nil
	}

	resp, err := r.create(ctx)
	if err != nil {
		return "", resolvedCreated, err
	}

	if resp.Status == http.StatusConflict {
		id, err = r.lookup(ctx)
		if err != nil {
			return "", resolvedAfterConflict, err
		}
		if id == "" {
			return "", resolvedAfterConflict, assert.ExpectStatus(resp.Status, []int{http.StatusOK, http.StatusCreated}, resp.Body)
		}
		return id, resolvedAfterConflict, nil
	}

	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK, http.StatusCreated}, resp.Body); err != nil {
		return "", resolvedCreated, err
	}
	id, err = assert.StringField(resp.Body, r.idField)
	if err != nil {
		return "", resolvedCreated, err
	}
	return id, resolvedCreated, nil
}

// findIn returns the idField of the first item whose key equals want.
func findIn(items []any, key, want, idField string) string {
	for _, item := range items {
		if assert.Lookup(item, key) == want {
			return assert.Lookup(item, idField)
		}
	}
	return ""
}
