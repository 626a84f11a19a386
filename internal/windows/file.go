//go:build windows

package windows

import (
	"iter"
	"runtime"
	"time"
	"unsafe"

	w32 "golang.org/x/sys/windows"

	"github.com/Norgate-AV/wintool/internal/handle"
	"github.com/Norgate-AV/wintool/internal/winerr"
)

const (
	findExInfoBasic          = 1
	findExSearchNameMatch    = 0
	findExSearchLimitToDirs  = 1
	findFirstExCaseSensitive = 1
	findFirstExLargeFetch    = 2

	errorNoMoreFiles = w32.ERROR_NO_MORE_FILES
)

// findData is WIN32_FIND_DATAW. The x/sys Win32finddata has a short FileName and cannot be
// handed to the native call directly.
type findData struct {
	FileAttributes    uint32
	CreationTime      w32.Filetime
	LastAccessTime    w32.Filetime
	LastWriteTime     w32.Filetime
	FileSizeHigh      uint32
	FileSizeLow       uint32
	Reserved0         uint32
	Reserved1         uint32
	FileName          [w32.MAX_PATH]uint16
	AlternateFileName [14]uint16
}

// SearchOptions tune a file search.
type SearchOptions struct {
	// DirectoriesOnly asks the file system to return directories only. File systems may
	// ignore it, so results are filtered again.
	DirectoriesOnly bool
	CaseSensitive   bool
	LargeFetch      bool
}

// Searcher iterates the results of one FindFirstFileExW search.
type Searcher struct {
	res     *handle.Resource
	pending *FileEntry
	opts    SearchOptions
}

func findClose(h handle.Handle) error {
	if err := w32.FindClose(w32.Handle(h)); err != nil {
		return winerr.FromCall("FindClose", err)
	}

	return nil
}

// Search starts a search for pattern, e.g. `C:\logs\*.log`. FindFirstFileExW signals failure
// with INVALID_HANDLE_VALUE; a pattern that matches nothing yields an empty Searcher.
func Search(pattern string, opts SearchOptions) (*Searcher, error) {
	p, err := w32.UTF16PtrFromString(pattern)
	if err != nil {
		return nil, err
	}

	searchOp := uintptr(findExSearchNameMatch)
	if opts.DirectoriesOnly {
		searchOp = findExSearchLimitToDirs
	}

	var flags uintptr
	if opts.CaseSensitive {
		flags |= findFirstExCaseSensitive
	}

	if opts.LargeFetch {
		flags |= findFirstExLargeFetch
	}

	var data findData

	r, _, callErr := procFindFirstFileExW.Call(
		uintptr(unsafe.Pointer(p)),
		findExInfoBasic,
		uintptr(unsafe.Pointer(&data)),
		searchOp,
		0,
		flags,
	)

	if handle.Handle(r) == handle.Invalid {
		if code := errnoOf(callErr); code == errorFileNotFound || code == errorNoMoreFiles {
			return &Searcher{res: handle.New("search", handle.Invalid, handle.Invalid, findClose), opts: opts}, nil
		}

		return nil, winerr.FromCall("FindFirstFileExW", callErr)
	}

	first := entryFrom(&data)

	return &Searcher{
		res:     handle.New("search", handle.Handle(r), handle.Invalid, findClose),
		pending: &first,
		opts:    opts,
	}, nil
}

// Next returns the next entry, or nil once the search is exhausted.
// FindNextFileW signals the end with ERROR_NO_MORE_FILES.
func (s *Searcher) Next() (*FileEntry, error) {
	for {
		entry, err := s.next()
		if entry == nil || err != nil {
			return entry, err
		}

		if s.opts.DirectoriesOnly && !entry.IsDir() {
			continue
		}

		return entry, nil
	}
}

func (s *Searcher) next() (*FileEntry, error) {
	if s.pending != nil {
		entry := s.pending
		s.pending = nil
		return entry, nil
	}

	if !s.res.Valid() {
		return nil, nil
	}

	var data findData

	r, _, err := procFindNextFileW.Call(uintptr(s.res.Handle()), uintptr(unsafe.Pointer(&data)))
	runtime.KeepAlive(s)

	if r == 0 {
		if errnoOf(err) == errorNoMoreFiles {
			return nil, nil
		}

		return nil, winerr.FromCall("FindNextFileW", err)
	}

	entry := entryFrom(&data)
	return &entry, nil
}

// All yields every remaining entry, skipping "." and "..".
func (s *Searcher) All() iter.Seq2[FileEntry, error] {
	return func(yield func(FileEntry, error) bool) {
		for {
			entry, err := s.Next()
			if err != nil {
				yield(FileEntry{}, err)
				return
			}

			if entry == nil {
				return
			}

			if entry.IsDotEntry() {
				continue
			}

			if !yield(*entry, nil) {
				return
			}
		}
	}
}

// Close ends the search. An empty search has nothing to close.
func (s *Searcher) Close() error {
	if !s.res.Valid() {
		return nil
	}

	return s.res.Close()
}

func entryFrom(data *findData) FileEntry {
	return FileEntry{
		Name:       w32.UTF16ToString(data.FileName[:]),
		Attributes: data.FileAttributes,
		Size:       int64(data.FileSizeHigh)<<32 | int64(data.FileSizeLow),
		ModTime:    time.Unix(0, data.LastWriteTime.Nanoseconds()),
	}
}
