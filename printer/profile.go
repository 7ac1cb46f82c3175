// seehuhn.de/go/raster - convert rendered pages to CUPS raster data
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package printer

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDataDir is used when CUPS_DATADIR is not set.
const DefaultDataDir = "/usr/share/cups"

// DataDir returns the CUPS data directory.
func DataDir() string {
	if dir := os.Getenv("CUPS_DATADIR"); dir != "" {
		return dir
	}
	return DefaultDataDir
}

// SelectProfile returns the path of the first profile whose qualifier
// matches q, or the empty string if no profile matches.
//
// Qualifier parts are compared case-insensitively.  An empty part in the
// profile's qualifier matches any value, and missing trailing parts
// match everything.  Relative paths are resolved against the profiles
// directory inside dataDir.
func SelectProfile(profiles []ProfileEntry, q [3]string, dataDir string) string {
	for _, p := range profiles {
		if !qualifierMatches(p.Qualifier, q) {
			continue
		}
		if p.Path == "" || filepath.IsAbs(p.Path) {
			return p.Path
		}
		return filepath.Join(dataDir, "profiles", p.Path)
	}
	return ""
}

func qualifierMatches(qualifier string, q [3]string) bool {
	parts := strings.SplitN(qualifier, ".", 3)
	for i, part := range parts {
		if part != "" && !strings.EqualFold(part, q[i]) {
			return false
		}
	}
	return true
}
