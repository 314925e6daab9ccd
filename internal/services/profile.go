package services

import "context"

// ProfileService exposes the only explicit profile persistence trigger the
// core offers. UI-level debouncing of edits is the caller's concern, not
// ours: the core persists on Flush and on finalize, nowhere else.
type ProfileService struct {
	store ProfileStore
}

func NewProfileService(store ProfileStore) *ProfileService {
	return &ProfileService{store: store}
}

// Flush persists the current profile snapshot.
func (s *ProfileService) Flush(ctx context.Context, snap ProfileSnapshot) error {
	return s.store.SaveProfile(ctx, snap)
}
