package sync

import (
	"strings"
	"time"

	"course-mirror/internal/domain"
)

// Reconcile merges the freshly fetched catalog into the prior snapshot.
// Returns the new snapshot and:
// - New: fetched ids absent from prior
// - Expired: ids active in prior but missing from the fetch
// - Revived: ids inactive in prior that were fetched again
//
// It performs no I/O and never mutates prior or fresh; the same inputs always give
// the same outputs. Fresh records only need their non-state fields filled in.
func Reconcile(prior *domain.Snapshot, fresh []domain.CourseRecord, now time.Time) (*domain.Snapshot, domain.SyncDelta) {
	oldActive := map[string]bool{}
	oldInactive := map[string]bool{}
	for _, r := range prior.Records() {
		if r.IsActive {
			oldActive[r.ID] = true
		} else {
			oldInactive[r.ID] = true
		}
	}

	// api records, deduplicated by id: first position, last fetched values
	apiIDs := map[string]int{}
	apiRecords := make([]domain.CourseRecord, 0, len(fresh))
	for _, fr := range fresh {
		cid := strings.TrimSpace(fr.ID)
		if cid == "" {
			continue
		}

		rec := fr.Clone()
		rec.ID = cid
		prev, ok := prior.Get(cid)
		isTransition := !ok || !prev.IsActive
		if isTransition {
			rec.ChangedAt = now
		} else {
			rec.ChangedAt = prev.ChangedAt
		}
		rec.IsActive = true
		rec.UpdatedAt = now

		if i, seen := apiIDs[cid]; seen {
			apiRecords[i] = rec
			continue
		}
		apiIDs[cid] = len(apiRecords)
		apiRecords = append(apiRecords, rec)
	}

	var delta domain.SyncDelta
	for _, r := range apiRecords {
		if !prior.Has(r.ID) {
			delta.New = append(delta.New, r)
		}
		if oldInactive[r.ID] {
			delta.Revived = append(delta.Revived, r)
		}
	}

	// prior order keeps the expired list deterministic
	for _, id := range prior.IDs() {
		if !oldActive[id] {
			continue
		}
		if _, ok := apiIDs[id]; ok {
			continue
		}
		prev, _ := prior.Get(id)
		rec := prev.Clone()
		rec.IsActive = false
		rec.ChangedAt = now
		rec.UpdatedAt = now
		delta.Expired = append(delta.Expired, rec)
	}

	return merge(prior, apiRecords, delta.Expired), delta
}

// merge layers api and then expired over a copy of prior. Expired goes last so
// an id present in both ends up inactive.
func merge(prior *domain.Snapshot, api, expired []domain.CourseRecord) *domain.Snapshot {
	next := prior.Clone()
	for _, r := range api {
		next.Put(r.Clone())
	}
	for _, r := range expired {
		next.Put(r.Clone())
	}
	return next
}
