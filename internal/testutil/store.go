package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FakeStore is an in-memory stand-in for the Mongo-backed store. Documents
// round-trip through BSON marshalling on insert, so reads return driver
// types (primitive.ObjectID, primitive.DateTime) exactly as a real server
// would.
type FakeStore struct {
	mu   sync.Mutex
	cols map[string][]bson.M

	// FailWith, when set, is returned by every call. Lets tests exercise
	// the storage-failure paths.
	FailWith error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{cols: make(map[string][]bson.M)}
}

func (f *FakeStore) CreateDocument(ctx context.Context, collection string, doc any) (string, error) {
	if f.FailWith != nil {
		return "", f.FailWith
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("testutil: marshal document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return "", fmt.Errorf("testutil: unmarshal document: %w", err)
	}

	id, ok := m["_id"].(primitive.ObjectID)
	if !ok {
		id = primitive.NewObjectID()
		m["_id"] = id
	}

	f.mu.Lock()
	f.cols[collection] = append(f.cols[collection], m)
	f.mu.Unlock()

	return id.Hex(), nil
}

func (f *FakeStore) GetDocuments(ctx context.Context, collection string, filter bson.M, limit int64, sortSpec bson.D) ([]bson.M, error) {
	if f.FailWith != nil {
		return nil, f.FailWith
	}

	f.mu.Lock()
	src := f.cols[collection]
	docs := make([]bson.M, len(src))
	copy(docs, src)
	f.mu.Unlock()

	if len(filter) > 0 {
		kept := make([]bson.M, 0, len(docs))
		for _, d := range docs {
			match := true
			for k, want := range filter {
				if d[k] != want {
					match = false
					break
				}
			}
			if match {
				kept = append(kept, d)
			}
		}
		docs = kept
	}

	if len(sortSpec) > 0 {
		key := sortSpec[0].Key
		desc := false
		if dir, ok := sortSpec[0].Value.(int); ok && dir < 0 {
			desc = true
		}
		sort.SliceStable(docs, func(i, j int) bool {
			c := compareBSONValues(docs[i][key], docs[j][key])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	if limit > 0 && int64(len(docs)) > limit {
		docs = docs[:limit]
	}

	return docs, nil
}

func (f *FakeStore) Ping(ctx context.Context) error {
	return f.FailWith
}

func (f *FakeStore) Collections(ctx context.Context) ([]string, error) {
	if f.FailWith != nil {
		return nil, f.FailWith
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.cols))
	for name := range f.cols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// compareBSONValues orders the shapes a sort key can take in stored
// documents. Missing values sort first.
func compareBSONValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs)
		}
	}

	am, aok := unixMilli(a)
	bm, bok := unixMilli(b)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	case am < bm:
		return -1
	case am > bm:
		return 1
	}
	return 0
}

func unixMilli(v any) (int64, bool) {
	switch t := v.(type) {
	case primitive.DateTime:
		return int64(t), true
	case time.Time:
		return t.UnixMilli(), true
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	}
	return 0, false
}
