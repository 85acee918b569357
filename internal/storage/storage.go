package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (publicURL string, err error)
}

const MaxCVBytes = 10 << 20

var cvContentTypes = map[string]string{
	"application/pdf": ".pdf",
}

// CVExtension returns the file extension for an accepted CV content type.
func CVExtension(contentType string) (string, bool) {
	ct := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	ext, ok := cvContentTypes[strings.ToLower(ct)]
	return ext, ok
}

// CVObjectName places every upload under the owner's folder with a fresh name,
// so a new CV never overwrites a URL that was already shared.
func CVObjectName(userID, ext string) string {
	return path.Join("cvs", userID, uuid.NewString()+ext)
}
