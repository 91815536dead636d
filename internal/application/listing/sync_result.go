package listing

// SyncResult summarizes one reconciliation run. Merge is associative, so
// partial results from many provider/area calls fold safely into a total.
type SyncResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"` // provider/area fetches that errored out
}

// Merge returns the field-wise sum of two results
func (r SyncResult) Merge(other SyncResult) SyncResult {
	return SyncResult{
		Inserted: r.Inserted + other.Inserted,
		Updated:  r.Updated + other.Updated,
		Skipped:  r.Skipped + other.Skipped,
		Failed:   r.Failed + other.Failed,
	}
}

// Total returns the number of listings reconciled into the store
func (r SyncResult) Total() int {
	return r.Inserted + r.Updated
}
