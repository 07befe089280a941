package drive

import (
	"fmt"
	"regexp"
)

var sizeSuffix = regexp.MustCompile(`=s\d+(-c)?$`)

// FullResURL derives a full-resolution URL from the store's thumbnail
// link by swapping its size suffix for the full-size marker. When the
// store gave no thumbnail link, a URL is constructed from the file id.
func FullResURL(thumbnailLink, fileID string) string {
	if thumbnailLink != "" && sizeSuffix.MatchString(thumbnailLink) {
		return sizeSuffix.ReplaceAllString(thumbnailLink, "=s0")
	}
	return fmt.Sprintf("https://drive.google.com/uc?export=view&id=%s", fileID)
}

// ThumbnailURL returns the link to render in grid views, falling back
// to a constructed URL when the listing carried none.
func ThumbnailURL(thumbnailLink, fileID string) string {
	if thumbnailLink != "" {
		return thumbnailLink
	}
	return fmt.Sprintf("https://drive.google.com/thumbnail?id=%s&sz=w400", fileID)
}
