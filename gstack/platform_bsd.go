// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build unix && !linux

package gstack

// mapNoReserve is a no-op outside Linux: MAP_NORESERVE is a Linux-specific
// extension and other unix-family kernels reserve swap for the whole
// mapping regardless.
func mapNoReserve() int { return 0 }
