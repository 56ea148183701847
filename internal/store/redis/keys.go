package redis

import "fmt"

const (
	// KeyPrefix is the root of every key written by the store
	KeyPrefix = "savelater:"
)

// Keys builds the Redis keys of one namespace (device or profile).
type Keys struct {
	namespace string
}

// NewKeys returns the key builder for namespace.
func NewKeys(namespace string) Keys {
	if namespace == "" {
		namespace = "default"
	}
	return Keys{namespace: namespace}
}

// Hyperlink returns the key holding the JSON document of one hyperlink
func (k Keys) Hyperlink(id string) string {
	return fmt.Sprintf("%s%s:hyperlink:%s", KeyPrefix, k.namespace, id)
}

// All returns the key of the set of all hyperlink IDs
func (k Keys) All() string {
	return fmt.Sprintf("%s%s:hyperlinks:all", KeyPrefix, k.namespace)
}

// Pattern matches every key of the namespace (used by Wipe)
func (k Keys) Pattern() string {
	return fmt.Sprintf("%s%s:*", KeyPrefix, k.namespace)
}

// ExtractID extracts the hyperlink ID from a document key
func (k Keys) ExtractID(key string) (string, error) {
	prefix := k.Hyperlink("")
	if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
		return "", fmt.Errorf("invalid hyperlink key: %s", key)
	}
	return key[len(prefix):], nil
}
