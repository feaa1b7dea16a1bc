// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads private settings that should not live in the
// config file. The directory holds one file per value: the filename is the
// key and the trimmed contents are the value.
//
// Recognized keys: arxiv-contact-email.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ContactEmailKey names the file holding the operator's contact address.
// arXiv asks heavy API users to identify themselves in the User-Agent.
const ContactEmailKey = "arxiv-contact-email"

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads every regular, non-hidden file in dir. A missing directory
// yields an empty set. Unreadable files are logged and skipped.
func Load(dir string, log zerolog.Logger) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return Secrets{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets)
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			log.Warn().Err(err).Str("secret", e.Name()).Msg("could not read secret")
			continue
		}
		if v := strings.TrimSpace(string(data)); v != "" {
			s[e.Name()] = v
		}
	}
	return s, nil
}

// UserAgent appends the contact address, when present, to base in the
// form arXiv recommends: "name/version (mailto:addr)".
func (s Secrets) UserAgent(base string) string {
	email := s[ContactEmailKey]
	if email == "" {
		return base
	}
	return fmt.Sprintf("%s (mailto:%s)", base, email)
}
