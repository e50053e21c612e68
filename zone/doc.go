// SPDX-License-Identifier: EPL-2.0

// Package zone describes spatial regions that make Sequences audible as the
// listener approaches them.
package zone
