// Package dbtest holds a conformance suite shared by tosdb backends.
package dbtest

import (
	"bytes"
	"sort"
	"testing"

	"github.com/tos-network/feecycle/tosdb"
)

// TestDatabaseSuite runs a suite of tests against a KeyValueStore database
// implementation.
func TestDatabaseSuite(t *testing.T, New func() tosdb.KeyValueStore) {
	t.Run("Iterator", func(t *testing.T) {
		db := New()
		defer db.Close()

		keys := []string{"1", "2", "3", "4", "6", "10", "11", "12", "20", "21", "22"}
		for _, k := range keys {
			if err := db.Put([]byte(k), []byte("val-"+k)); err != nil {
				t.Fatalf("put %q: %v", k, err)
			}
		}
		check := func(prefix, start string, want []string) {
			t.Helper()
			it := db.NewIterator([]byte(prefix), []byte(start))
			defer it.Release()
			var got []string
			for it.Next() {
				got = append(got, string(it.Key()))
				if !bytes.Equal(it.Value(), []byte("val-"+string(it.Key()))) {
					t.Fatalf("value mismatch for %q: %q", it.Key(), it.Value())
				}
			}
			if err := it.Error(); err != nil {
				t.Fatalf("iterator error: %v", err)
			}
			sort.Strings(want)
			if len(got) != len(want) {
				t.Fatalf("prefix %q start %q: have %v want %v", prefix, start, got, want)
			}
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("prefix %q start %q: have %v want %v", prefix, start, got, want)
				}
			}
		}
		check("", "", keys)
		check("1", "", []string{"1", "10", "11", "12"})
		check("2", "1", []string{"21", "22"})
		check("5", "", nil)
	})

	t.Run("KeyValueOperations", func(t *testing.T) {
		db := New()
		defer db.Close()

		key := []byte("foo")
		if got, err := db.Has(key); err != nil || got {
			t.Fatalf("Has before put: %v %v", got, err)
		}
		value := []byte("hello world")
		if err := db.Put(key, value); err != nil {
			t.Fatalf("put: %v", err)
		}
		if got, err := db.Has(key); err != nil || !got {
			t.Fatalf("Has after put: %v %v", got, err)
		}
		if got, err := db.Get(key); err != nil || !bytes.Equal(got, value) {
			t.Fatalf("Get: %q %v", got, err)
		}
		if err := db.Delete(key); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if got, err := db.Has(key); err != nil || got {
			t.Fatalf("Has after delete: %v %v", got, err)
		}
	})

	t.Run("Batch", func(t *testing.T) {
		db := New()
		defer db.Close()

		b := db.NewBatch()
		for _, k := range []string{"1", "2", "3", "4"} {
			if err := b.Put([]byte(k), nil); err != nil {
				t.Fatal(err)
			}
		}
		if has, err := db.Has([]byte("1")); err != nil || has {
			t.Fatalf("batch leaked before write: %v %v", has, err)
		}
		if err := b.Write(); err != nil {
			t.Fatal(err)
		}
		b.Reset()
		if err := b.Delete([]byte("2")); err != nil {
			t.Fatal(err)
		}
		if err := b.Write(); err != nil {
			t.Fatal(err)
		}
		for k, want := range map[string]bool{"1": true, "2": false, "3": true, "4": true} {
			if has, err := db.Has([]byte(k)); err != nil || has != want {
				t.Fatalf("key %q: have %v want %v (err %v)", k, has, want, err)
			}
		}
	})
}
