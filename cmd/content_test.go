package cmd

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/continuous-intelligence/cIV/internal/cms"
	"github.com/continuous-intelligence/cIV/internal/seed"
)

const storedPost = `{
	"_id": "p1",
	"_type": "blogPost",
	"title": "Hello",
	"slug": {"current": "hello"},
	"author": {"_ref": "a1"},
	"publishedAt": "2024-01-02T03:04:05Z"
}`

type fakeStore struct {
	doc       string
	mutations []cms.Mutation
}

func (f *fakeStore) Fetch(_ context.Context, _ string, _ cms.Params, out any) error {
	body := f.doc
	if body == "" {
		body = "null"
	}
	return json.Unmarshal([]byte(body), out)
}

func (f *fakeStore) Mutate(_ context.Context, mutations ...cms.Mutation) (*cms.MutateResult, error) {
	f.mutations = append(f.mutations, mutations...)
	return &cms.MutateResult{TransactionID: "tx1"}, nil
}

func TestSetFieldsCoercesBySchema(t *testing.T) {
	store := &fakeStore{doc: storedPost}

	res, err := setFields(context.Background(), store, "p1", []string{"readTime=5", "featured=true", "categories=ops, data", "title=Hi"})
	require.NoError(t, err)
	assert.Equal(t, "tx1", res.TransactionID)
	require.Len(t, store.mutations, 1)
	assert.Equal(t, cms.PatchSet("p1", map[string]any{
		"readTime":   5.0,
		"featured":   true,
		"categories": []any{"ops", "data"},
		"title":      "Hi",
	}), store.mutations[0])
}

func TestSetFieldsRejectsInvalidValues(t *testing.T) {
	for _, args := range [][]string{
		{"readTime=five"},
		{"featured=maybe"},
		{"mainImage=logo.png"},
		{"colour=red"},
		{"_id=p2"},
		{"title"},
	} {
		store := &fakeStore{doc: storedPost}
		_, err := setFields(context.Background(), store, "p1", args)
		assert.Error(t, err, args)
		assert.Empty(t, store.mutations, args)
	}
}

func TestSetFieldsValidatesDocument(t *testing.T) {
	store := &fakeStore{doc: storedPost}

	_, err := setFields(context.Background(), store, "p1", []string{"readTime=500", "title="})
	var invalid *seed.InvalidDocumentError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "p1", invalid.ID)
	assert.Contains(t, err.Error(), "readTime")
	assert.Contains(t, err.Error(), "title: is required")
	assert.Empty(t, store.mutations)
}

func TestSetFieldsMissingDocument(t *testing.T) {
	store := &fakeStore{}

	_, err := setFields(context.Background(), store, "nope", []string{"title=Hi"})
	assert.ErrorIs(t, err, errDocumentNotFound)
	assert.Empty(t, store.mutations)
}
