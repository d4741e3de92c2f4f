package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// DefaultKeyPrefix namespaces every key and index this service creates in the store.
const DefaultKeyPrefix = "giftsearch:"

// Keyspace derives store key and index names under a common prefix.
//
//	{prefix}{collection}:idx         FT index
//	{prefix}{collection}:doc:{hash}  document hash
//	{prefix}emb_cache:{hash}         cached embedding
type Keyspace struct {
	prefix string
}

// NewKeyspace creates a Keyspace. An empty prefix falls back to DefaultKeyPrefix.
func NewKeyspace(prefix string) Keyspace {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return Keyspace{prefix: prefix}
}

// Prefix returns the root prefix.
func (k Keyspace) Prefix() string { return k.prefix }

// IndexName returns the FT index name of a collection.
func (k Keyspace) IndexName(collection string) string {
	return k.prefix + collection + ":idx"
}

// DocPrefix returns the key prefix the collection index covers.
func (k Keyspace) DocPrefix(collection string) string {
	return k.prefix + collection + ":doc:"
}

// DocKey returns the hash key of a document. The id is hashed so that paths
// of any shape map to one fixed-length key and re-indexing overwrites.
func (k Keyspace) DocKey(collection, documentID string) string {
	return k.DocPrefix(collection) + hashHex(documentID)
}

// EmbeddingCacheKey returns the cache key of an embedding for text.
func (k Keyspace) EmbeddingCacheKey(text string) string {
	return k.prefix + "emb_cache:" + hashHex(text)
}

func hashHex(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
