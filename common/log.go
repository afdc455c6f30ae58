// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package common

import (
	logging "github.com/ipfs/go-log"
)

// Logger is shared by every package in this module. Call SetLogLevel to
// adjust verbosity; the zero value logs at the go-log default level.
var Logger = logging.Logger("tss-lib")

// SetLogLevel sets the log level for all loggers registered under the
// "tss-lib" subsystem. Valid levels: "debug", "info", "warn", "error".
func SetLogLevel(level string) error {
	return logging.SetLogLevel("tss-lib", level)
}
