// Package stratatest provides round-trip checks of the basic
// operations for entity types, to be run against a real database.
//
//	func TestUser(t *testing.T) {
//		drv := openTestDB(t)
//		stratatest.Create(t, drv, &User{ID: 1, Name: "a8m"})
//		stratatest.Update(t, drv, &User{ID: 2, Name: "a8m"}, &User{ID: 2, Name: "nati"})
//		stratatest.Delete(t, drv, &User{ID: 3, Name: "a8m"})
//	}
//
// Entities are compared with testify's ObjectsAreEqual, so time values
// should be stored in a form the database returns unchanged.
package stratatest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata"
)

// Create checks that e does not exist, creates it, and reads it back
// equal to e.
func Create[T any, PT strata.EntityPtr[T]](t testing.TB, ex strata.Executor, e PT) {
	t.Helper()
	ctx := context.Background()
	absent(t, ex, e, "instance was found before it was created")
	_, err := strata.Create(ctx, ex, e)
	require.NoError(t, err, "insertion did not work")
	got := find[T, PT](t, ex, e)
	require.NotNil(t, got, "instance not found after insertion")
	assert.Equal(t, e, got)
}

// Read checks that e can be read back by key and is listed among all
// rows of its table after it was created.
func Read[T any, PT strata.EntityPtr[T]](t testing.TB, ex strata.Executor, e PT) {
	t.Helper()
	Create[T, PT](t, ex, e)
	key := mustKey(t, e)
	got, err := strata.Read[T, PT](context.Background(), ex, key...)
	require.NoError(t, err)
	assert.Equal(t, e, got)
	all, err := strata.ReadAll[T, PT](context.Background(), ex)
	require.NoError(t, err)
	assert.Contains(t, all, e)
}

// Update saves e and then applies each update in turn. After each one
// e is reloaded and must equal the update. The updates must carry the
// primary key of e.
func Update[T any, PT strata.EntityPtr[T]](t testing.TB, ex strata.Executor, e PT, updates ...PT) {
	t.Helper()
	ctx := context.Background()
	_, err := strata.Upsert(ctx, ex, e)
	require.NoError(t, err, "insertion did not work")
	for _, u := range updates {
		n, err := strata.Update(ctx, ex, u)
		require.NoError(t, err, "updating the instance did not work")
		assert.EqualValues(t, 1, n, "update affected %d rows", n)
		require.NoError(t, strata.Reload(ctx, ex, e), "reloading the instance did not work")
		assert.Equal(t, u, e)
		assert.Equal(t, e, find[T, PT](t, ex, e))
	}
}

// Delete creates e and deletes it twice, once through the entity and
// once through its key. After each deletion e must no longer load.
func Delete[T any, PT strata.EntityPtr[T]](t testing.TB, ex strata.Executor, e PT) {
	t.Helper()
	ctx := context.Background()
	_, err := strata.Create(ctx, ex, e)
	require.NoError(t, err, "insertion did not work")
	_, err = strata.Delete(ctx, ex, e)
	require.NoError(t, err, "deletion did not work")
	gone(t, ex, e)

	_, err = strata.Create(ctx, ex, e)
	require.NoError(t, err, "insertion did not work")
	_, err = strata.DeleteByKey[T, PT](ctx, ex, mustKey(t, e)...)
	require.NoError(t, err, "deletion did not work")
	gone(t, ex, e)
}

func gone[T any, PT strata.EntityPtr[T]](t testing.TB, ex strata.Executor, e PT) {
	t.Helper()
	err := strata.Reload(context.Background(), ex, e)
	assert.True(t, strata.IsNotFound(err), "instance could be reloaded after deletion: %v", err)
	absent(t, ex, e, "instance was found after deletion")
}

func absent[T any, PT strata.EntityPtr[T]](t testing.TB, ex strata.Executor, e PT, msg string) {
	t.Helper()
	key, err := strata.Key(e)
	require.NoError(t, err)
	if hasZero(key) {
		// Keys assigned by the database are not known yet.
		return
	}
	got, err := strata.Find[T, PT](context.Background(), ex, key...)
	require.NoError(t, err)
	assert.Nil(t, got, msg)
}

func find[T any, PT strata.EntityPtr[T]](t testing.TB, ex strata.Executor, e PT) PT {
	t.Helper()
	got, err := strata.Find[T, PT](context.Background(), ex, mustKey(t, e)...)
	require.NoError(t, err)
	return got
}

func mustKey(t testing.TB, e strata.Entity) []any {
	t.Helper()
	key, err := strata.Key(e)
	require.NoError(t, err)
	return key
}

func hasZero(key []any) bool {
	for _, v := range key {
		if assert.ObjectsAreEqual(v, 0) || assert.ObjectsAreEqual(v, int64(0)) || assert.ObjectsAreEqual(v, "") {
			return true
		}
	}
	return false
}
