// Package media turns uploaded images into inline data URLs for function
// submissions. Nothing is stored outside the submission itself.
package media

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/zulandar/qadesk/internal/models"
	"github.com/zulandar/qadesk/internal/state"
)

// File is one uploaded file.
type File struct {
	Name string
	Data []byte
}

// Result is the accepted images and, when some were dropped, a warning.
type Result struct {
	DataURLs []string `json:"images"`
	Warning  string   `json:"warning,omitempty"`
}

// Ingest converts files to data URLs given that existing images are
// already attached. Only the first MaxSubmissionImages-existing files are
// kept. Every file must sniff as an image, otherwise nothing is accepted.
func Ingest(existing int, files []File) (Result, error) {
	limit := models.MaxSubmissionImages
	if len(files) == 0 {
		return Result{}, nil
	}
	if existing >= limit {
		return Result{}, &state.ValidationError{Field: "images", Message: fmt.Sprintf("已达到 %d 张上限", limit)}
	}

	take := min(limit-existing, len(files))
	urls := make([]string, 0, take)
	for _, f := range files[:take] {
		mt := mimetype.Detect(f.Data)
		if !strings.HasPrefix(mt.String(), "image/") {
			return Result{}, &state.ValidationError{
				Field:   "images",
				Message: fmt.Sprintf("%s 不是图片文件 (%s)", f.Name, mt.String()),
			}
		}
		urls = append(urls, DataURL(mt.String(), f.Data))
	}

	res := Result{DataURLs: urls}
	if take < len(files) {
		res.Warning = fmt.Sprintf("已选择 %d 张，超过上限，仅添加了 %d 张", len(files), take)
	}
	return res, nil
}

// DataURL encodes data as a base64 data URL.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
