// SPDX-License-Identifier: EPL-2.0

package main

import "errors"

var (
	errUsage          = errors.New("bad usage")
	errUnknownCommand = errors.New("unknown command")
	errChannels       = errors.New("only mono and stereo output are supported")
)
