package app

import (
	"github.com/dkeye/photowall/internal/adapters/drive"
	"github.com/dkeye/photowall/internal/domain"
)

// reconcile performs one full-listing sync pass against the external
// store: paginated, newest first, capped. Files the ledger does not
// know yet are synthesized into Photos and fanned out to displays.
// Photos uploaded by any route — including entirely outside the app —
// show up here within one cadence.
//
// A failing pass logs and aborts; the ledger is untouched and the next
// tick retries. Runs only on the room goroutine.
func (r *Room) reconcile() {
	if !r.event.Active() {
		return
	}

	var (
		pageToken string
		fetched   int
		added     int
	)
	for {
		files, next, err := r.store.ListImages(r.ctx, r.event.FolderRef, pageToken, r.set.SyncPageSize)
		if err != nil {
			r.logger.Warn().Err(err).Msg("reconciliation pass failed")
			return
		}
		for _, f := range files {
			if fetched >= r.set.SyncMaxFiles {
				break
			}
			fetched++
			if r.ledger.Has(f.ID) {
				continue
			}
			r.addPhoto(r.photoFromFile(f))
			added++
		}
		if next == "" || fetched >= r.set.SyncMaxFiles {
			break
		}
		pageToken = next
	}

	if added > 0 {
		r.logger.Info().Int("added", added).Int("fetched", fetched).Msg("reconciliation merged new photos")
	}
}

func (r *Room) photoFromFile(f drive.File) domain.Photo {
	p := domain.Photo{
		ID:            newID(),
		EventID:       r.event.ID,
		SourceSession: domain.SourceSystem,
		FileRef:       f.ID,
		ThumbnailURL:  drive.ThumbnailURL(f.ThumbnailLink, f.ID),
		FullURL:       drive.FullResURL(f.ThumbnailLink, f.ID),
		UploadedAt:    f.CreatedTime,
	}
	if f.ImageMeta != nil {
		p.Width = f.ImageMeta.Width
		p.Height = f.ImageMeta.Height
	}
	if p.UploadedAt.IsZero() {
		p.UploadedAt = r.now()
	}
	return p
}
