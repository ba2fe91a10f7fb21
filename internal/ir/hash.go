package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainFragment = "pgsearch/fragment/v" + FragmentVersion
	DomainAlias    = "pgsearch/alias/v" + FragmentVersion
)

// aliasNamespace seeds the name-based UUIDs used for SQL aliases.
var aliasNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte(DomainAlias))

// aliasPrefix starts every generated alias.
const aliasPrefix = "pg_search_"

// aliasHexLen keeps aliases at 32 characters, well under PostgreSQL's
// 63-byte identifier limit.
const aliasHexLen = 22

// Alias derives a deterministic SQL alias from its parts. The same parts
// always yield the same alias, so compiling a scope twice produces identical
// SQL.
//
// Example: Alias("posts", "posts|posts.author_id=users.id")
func Alias(parts ...string) string {
	name := strings.Join(parts, "\x00")
	id := uuid.NewSHA1(aliasNamespace, []byte(name))
	hexID := strings.ReplaceAll(id.String(), "-", "")
	return aliasPrefix + hexID[:aliasHexLen]
}

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns a content hash of the fragment. Two fragments with the
// same fingerprint render byte-identical SQL.
func (f *Fragment) Fingerprint() string {
	var b strings.Builder
	for _, part := range []string{f.Table, f.Condition, f.Rank, f.OrderBy} {
		b.WriteString(part)
		b.WriteByte(0x00)
	}
	for _, j := range f.Joins {
		b.WriteString(j.Alias)
		b.WriteByte(0x00)
		b.WriteString(j.Clause)
		b.WriteByte(0x00)
	}
	return hashWithDomain(DomainFragment, []byte(b.String()))
}
