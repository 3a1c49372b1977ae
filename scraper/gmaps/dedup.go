package gmaps

import (
	"crypto/sha1"
	"encoding/hex"

	"github.com/AhmedRagabRG/scraper/models"
	"github.com/AhmedRagabRG/scraper/services"
)

// snippetLen is how much body text participates in the fingerprint. Short on
// purpose: re-renderings of the same entity routinely reorder trailing
// content, and the opening characters are the stable part.
const snippetLen = 50

// Fingerprint derives the run-scoped dedup key: normalized identity text plus
// the first snippetLen characters of the body text.
func Fingerprint(rec models.Record) string {
	identity := services.NormalizeIdentity(rec.Identity())
	body := []rune(services.NormalizeText(rec.Snippet()))
	if len(body) > snippetLen {
		body = body[:snippetLen]
	}

	sum := sha1.Sum([]byte(identity + "\x00" + string(body)))
	return hex.EncodeToString(sum[:])
}

// Deduplicator rejects repeats within one run. The convergence loop and the
// panel-reconciliation re-reads can surface the same underlying entity more
// than once as the rendered tree shifts; the first occurrence wins and later
// ones are dropped, never merged.
type Deduplicator struct {
	seen map[string]struct{}
}

// NewDeduplicator creates an empty run-scoped deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// Accept returns true exactly once per fingerprint.
func (d *Deduplicator) Accept(rec models.Record) bool {
	key := Fingerprint(rec)
	if _, dup := d.seen[key]; dup {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// Size returns the number of distinct fingerprints seen so far.
func (d *Deduplicator) Size() int {
	return len(d.seen)
}
