package lead

// Dedupe collapses records that describe the same entity, keeping the first
// occurrence and dropping later ones entirely (including fields only present
// on the duplicate). Identity comparison is exact and case-sensitive: "Bun
// Co" and "bun co" are distinct on purpose, because normalization trades
// missed duplicates for silent false merges and the right trade-off depends
// on the caller's tolerance for merging distinct listings.
//
// Records with no identity field are dropped: they cannot be matched against
// later sightings of the same entity, so keeping them guarantees duplicates.
//
// The result preserves first-occurrence order and Dedupe is idempotent.
func Dedupe(records []*Record) []*Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]*Record, 0, len(records))
	for _, r := range records {
		id := r.Identity()
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, r)
	}
	return out
}
