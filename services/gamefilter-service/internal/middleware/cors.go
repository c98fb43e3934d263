package middleware

import (
	"bufio"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/render"
)

const ReasonBadOrigin = "bad_origin"

// OriginWhitelist matches request origins by hostname.
type OriginWhitelist struct {
	patterns []*regexp.Regexp
}

// LoadOriginWhitelist reads one regular expression per line from path. The
// sequence @@@ stands for * so wildcards survive tools that mangle globs.
func LoadOriginWhitelist(path string) (*OriginWhitelist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open origin whitelist: %w", err)
	}
	defer f.Close()

	return ParseOriginWhitelist(bufio.NewScanner(f))
}

// ParseOriginWhitelist builds a whitelist from the lines of s.
func ParseOriginWhitelist(s *bufio.Scanner) (*OriginWhitelist, error) {
	w := &OriginWhitelist{}
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}

		re, err := regexp.Compile(strings.ReplaceAll(line, "@@@", "*"))
		if err != nil {
			return nil, fmt.Errorf("invalid origin pattern %q: %w", line, err)
		}
		w.patterns = append(w.patterns, re)
	}

	if err := s.Err(); err != nil {
		return nil, err
	}

	return w, nil
}

// Allowed reports whether origin may call the API. An empty origin, as sent
// by non-browser clients, is allowed.
func (w *OriginWhitelist) Allowed(origin string) bool {
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "" {
		return true
	}

	for _, re := range w.patterns {
		if re.MatchString(host) {
			return true
		}
	}
	return false
}

// Len returns the number of patterns.
func (w *OriginWhitelist) Len() int {
	return len(w.patterns)
}

// CORS answers preflights for whitelisted origins and rejects requests from
// any other origin.
func CORS(whitelist *OriginWhitelist, logger *zerolog.Logger) func(http.Handler) http.Handler {
	corsHandler := cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return whitelist.Allowed(origin)
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           600,
	})

	return func(next http.Handler) http.Handler {
		guarded := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if !whitelist.Allowed(origin) {
				logger.Warn().Str("origin", origin).Msg("rejected cross-origin request")
				render.Error(w, http.StatusForbidden, ReasonBadOrigin)
				return
			}
			next.ServeHTTP(w, r)
		})
		return corsHandler(guarded)
	}
}
