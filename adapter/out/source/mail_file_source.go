// Package source provides MessageSource implementations. The file source
// feeds the pipeline from a local JSON file in development, standing in for
// the upstream mailbox fetcher.
package source

import (
	"context"
	"os"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayla-solutions/mail-classification-api/core/domain"
	"github.com/ayla-solutions/mail-classification-api/pkg/apperr"
)

// FileSource implements out.MessageSource over a JSON file containing an
// array of mails. The bearer token is ignored.
type FileSource struct {
	path string
	log  zerolog.Logger
}

// NewFileSource builds a FileSource for the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{
		path: path,
		log:  log.With().Str("component", "file_source").Logger(),
	}
}

// FetchMessages reads and decodes the feed file. Mails without an id are
// dropped with a warning; everything downstream keys on it.
func (s *FileSource) FetchMessages(_ context.Context, _ string) ([]*domain.Message, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, apperr.ExternalError("file_source", err)
	}

	var mails []*domain.Message
	if err := json.Unmarshal(data, &mails); err != nil {
		return nil, apperr.ExternalError("file_source", err)
	}

	out := mails[:0]
	for _, m := range mails {
		if m == nil || m.ID == "" {
			s.log.Warn().Str("path", s.path).Msg("mail without id skipped")
			continue
		}
		out = append(out, m)
	}
	s.log.Info().Str("path", s.path).Int("count", len(out)).Msg("mails loaded from file")
	return out, nil
}
