package ogg

/*
#include <ogg/ogg.h>
#include <stdlib.h>
#include <string.h>

static ogg_sync_state* alloc_sync_state() {
    ogg_sync_state* state = (ogg_sync_state*)calloc(1, sizeof(ogg_sync_state));
    if (state) {
        ogg_sync_init(state);
    }
    return state;
}

static void free_sync_state(ogg_sync_state* state) {
    if (state) {
        ogg_sync_clear(state);
        free(state);
    }
}
*/
import "C"
import (
	"errors"
	"io"
	"runtime"
	"sync/atomic"
	"unsafe"
)

// SyncState tracks synchronization and page extraction from a raw Ogg
// bitstream. Call Clear when done to release the libogg state.
type SyncState struct {
	state   *C.ogg_sync_state
	cleared atomic.Bool
	cleanup runtime.Cleanup
}

// NewSyncState creates and initializes a SyncState.
func NewSyncState() (*SyncState, error) {
	state := C.alloc_sync_state()
	if state == nil {
		return nil, errors.New("ogg: failed to allocate sync state")
	}
	s := &SyncState{state: state}
	s.cleanup = runtime.AddCleanup(s, freeSyncState, uintptr(unsafe.Pointer(state)))
	return s, nil
}

func freeSyncState(ptr uintptr) {
	C.free_sync_state((*C.ogg_sync_state)(unsafe.Pointer(ptr)))
}

// Clear releases resources. Safe to call multiple times.
func (s *SyncState) Clear() {
	if s.cleared.CompareAndSwap(false, true) {
		s.cleanup.Stop()
		C.free_sync_state(s.state)
		s.state = nil
	}
}

// Reset resets the sync state to its initial position.
func (s *SyncState) Reset() {
	C.ogg_sync_reset(s.state)
}

// Write feeds raw bitstream data into the sync state.
func (s *SyncState) Write(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	buf := C.ogg_sync_buffer(s.state, C.long(len(data)))
	if buf == nil {
		return 0, ErrSync
	}
	C.memcpy(unsafe.Pointer(buf), unsafe.Pointer(&data[0]), C.size_t(len(data)))
	if C.ogg_sync_wrote(s.state, C.long(len(data))) != 0 {
		return 0, ErrSync
	}
	return len(data), nil
}

// PageOut attempts to extract one complete page.
// Returns ErrNeedMore if more data is needed, ErrSync if bytes were
// skipped while searching for a page boundary.
func (s *SyncState) PageOut(page *Page) error {
	switch C.ogg_sync_pageout(s.state, &page.page) {
	case 1:
		return nil
	case 0:
		return ErrNeedMore
	default:
		return ErrSync
	}
}

// Decoder reads Ogg pages from an io.Reader.
type Decoder struct {
	r    io.Reader
	sync *SyncState
	buf  []byte
	page Page
}

// NewDecoder creates an Ogg page reader over r.
func NewDecoder(r io.Reader) (*Decoder, error) {
	sync, err := NewSyncState()
	if err != nil {
		return nil, err
	}
	return &Decoder{
		r:    r,
		sync: sync,
		buf:  make([]byte, 4096),
	}, nil
}

// Close releases resources.
func (d *Decoder) Close() error {
	d.sync.Clear()
	return nil
}

// ReadPage returns the next page from the stream. The returned page is
// only valid until the next ReadPage call. Returns io.EOF when the
// underlying reader is exhausted.
func (d *Decoder) ReadPage() (*Page, error) {
	for {
		err := d.sync.PageOut(&d.page)
		if err == nil {
			return &d.page, nil
		}
		if err != ErrNeedMore {
			// Garbage before the next capture pattern; libogg already
			// skipped it, try again.
			continue
		}

		n, err := d.r.Read(d.buf)
		if n > 0 {
			if _, werr := d.sync.Write(d.buf[:n]); werr != nil {
				return nil, werr
			}
		}
		if err != nil {
			return nil, err
		}
	}
}
