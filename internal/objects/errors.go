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

package objects

import "fmt"

// ValueError is raised by value construction/coercion helpers. Code
// identifies the kind of value involved, for callers that want to branch
// on it without string matching.
type ValueError struct {
	Code    int
	Message string
}

func NewValueError(code int, msg string) error {
	return ValueError{Code: code, Message: msg}
}

func (ve ValueError) Error() string {
	return fmt.Sprintf("value error %d: %s", ve.Code, ve.Message)
}
