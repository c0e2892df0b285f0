// Copyright 2024 The go-memusage Authors
// This file is part of the go-memusage library.
//
// The go-memusage library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-memusage library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-memusage library. If not, see <http://www.gnu.org/licenses/>.

package memusage

import (
	"os"
	"path/filepath"
	"unsafe"
)

// PathBuf is a growable file system path. Its usage is the allocated capacity,
// not the length of the path.
type PathBuf struct {
	buf []byte
}

// NewPathBuf returns a PathBuf holding p.
func NewPathBuf(p string) *PathBuf {
	return &PathBuf{buf: []byte(p)}
}

// Push extends the path with elem. An absolute elem replaces the whole path.
func (p *PathBuf) Push(elem string) {
	switch {
	case filepath.IsAbs(elem):
		p.buf = append(p.buf[:0], elem...)
	case len(p.buf) == 0 || os.IsPathSeparator(p.buf[len(p.buf)-1]):
		p.buf = append(p.buf, elem...)
	default:
		p.buf = append(p.buf, filepath.Separator)
		p.buf = append(p.buf, elem...)
	}
}

// String returns the path.
func (p *PathBuf) String() string {
	return string(p.buf)
}

// Cap returns the number of bytes allocated for the path.
func (p *PathBuf) Cap() int {
	return cap(p.buf)
}

// SizeOfVal implements MemoryUsage.
func (p *PathBuf) SizeOfVal(Tracker) uintptr {
	return unsafe.Sizeof(*p) + uintptr(cap(p.buf))
}
