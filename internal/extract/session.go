package extract

import (
	"regexp"

	"github.com/rs/zerolog"
)

// DefaultStickerBaseURL is prepended to sticker filenames carried in message tokens
const DefaultStickerBaseURL = "/stickers/"

// Session holds everything one logical extraction run needs: a logger, the
// set of invalid ids already reported, and options. Sessions are not safe
// for concurrent use; create one per goroutine.
type Session struct {
	log            zerolog.Logger
	stickerBaseURL string
	warned         map[string]struct{}
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the diagnostics logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithStickerBaseURL sets the prefix for sticker image URLs
func WithStickerBaseURL(base string) Option {
	return func(s *Session) {
		if base != "" {
			s.stickerBaseURL = base
		}
	}
}

// NewSession creates a session. Without options it logs nothing.
func NewSession(opts ...Option) *Session {
	s := &Session{
		log:            zerolog.Nop(),
		stickerBaseURL: DefaultStickerBaseURL,
		warned:         make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var groupIDPattern = regexp.MustCompile(`^[1-9][0-9]{3,9}$`)

// ValidGroupID reports whether id is a numeric string of 4-10 digits
// without a leading zero
func ValidGroupID(id string) bool {
	return groupIDPattern.MatchString(id)
}

// admitGroupID validates id and reports a rejection once per (id, context)
func (s *Session) admitGroupID(id, context string) bool {
	if ValidGroupID(id) {
		return true
	}
	key := id + "|" + context
	if _, seen := s.warned[key]; !seen {
		s.warned[key] = struct{}{}
		s.log.Warn().Str("id", id).Str("context", context).Msg("dropping record with invalid group id")
	}
	return false
}

// WarnedCount returns how many distinct (id, context) rejections were reported
func (s *Session) WarnedCount() int {
	return len(s.warned)
}
