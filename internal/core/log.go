// This file is part of BOSSWAVE.
//
// BOSSWAVE is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// BOSSWAVE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with BOSSWAVE.  If not, see <http://www.gnu.org/licenses/>.

package core

import (
	log "github.com/cihub/seelog"
)

// log is the package-level sink every component here logs through,
// matching the "log \"github.com/cihub/seelog\"" convention used in
// terminus.go's callers (message.go, peerclient.go, view.go). It starts
// as seelog's Disabled logger; SetLogger replaces it, mirroring
// clistub.go's silencelog().
var pkgLog log.LoggerInterface = log.Disabled

// SetLogger installs the logger every Tree/Courier in this package logs
// through. Call once at process startup; the core itself never mutates
// pkgLog after that.
func SetLogger(l log.LoggerInterface) {
	if l == nil {
		l = log.Disabled
	}
	pkgLog = l
}
