// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package gstack

import "golang.org/x/sys/unix"

// mapNoReserve adds MAP_NORESERVE on Linux, so a gpool's reservation does
// not count against overcommit accounting until pages are actually touched.
func mapNoReserve() int { return unix.MAP_NORESERVE }
