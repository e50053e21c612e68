// SPDX-License-Identifier: EPL-2.0

package syncgroup

import "errors"

var ErrUnknownMode = errors.New("unknown sync mode")
