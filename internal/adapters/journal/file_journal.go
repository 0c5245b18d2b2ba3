package journal

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/domain"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
)

const (
	fileName        = "ledger.journal"
	recordHeaderLen = 12
)

// FileJournal appends tick records to a single framed log file.
// entry format: [8 bytes id][4 bytes len][len bytes json]
type FileJournal struct {
	mu        sync.Mutex
	path      string
	file      *os.File
	writer    *bufio.Writer
	lastID    ports.JournalEntryID
	sizeBytes int64
}

func Open(dir string) (*FileJournal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, fileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	j := &FileJournal{
		path:   path,
		file:   f,
		writer: bufio.NewWriterSize(f, 64<<10),
	}
	if err := j.scanExisting(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return j, nil
}

// scanExisting finds the last complete record and cuts off a torn tail.
func (j *FileJournal) scanExisting() error {
	rf, err := os.Open(j.path)
	if err != nil {
		return err
	}
	defer rf.Close()

	reader := bufio.NewReader(rf)
	var (
		offset int64
		lastID ports.JournalEntryID
	)

	for {
		var hdr [recordHeaderLen]byte
		if _, err := io.ReadFull(reader, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return fmt.Errorf("journal scan header: %w", err)
		}
		id := ports.JournalEntryID(binary.BigEndian.Uint64(hdr[0:8]))
		length := int64(binary.BigEndian.Uint32(hdr[8:12]))

		if _, err := io.CopyN(io.Discard, reader, length); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return fmt.Errorf("journal scan body: %w", err)
		}
		offset += recordHeaderLen + length
		lastID = id
	}

	if err := j.file.Truncate(offset); err != nil {
		return err
	}
	j.sizeBytes = offset
	j.lastID = lastID
	return nil
}

func (j *FileJournal) Append(r *domain.TickRecord) (ports.JournalEntryID, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	id := j.lastID + 1

	b, err := json.Marshal(r)
	if err != nil {
		return 0, err
	}

	var hdr [recordHeaderLen]byte
	binary.BigEndian.PutUint64(hdr[0:8], uint64(id))
	binary.BigEndian.PutUint32(hdr[8:12], uint32(len(b)))

	if _, err := j.writer.Write(hdr[:]); err != nil {
		return 0, err
	}
	if _, err := j.writer.Write(b); err != nil {
		return 0, err
	}

	j.lastID = id
	j.sizeBytes += int64(len(b) + len(hdr))
	return id, nil
}

// Iterate calls fn for every record with id >= from, oldest first.
func (j *FileJournal) Iterate(from ports.JournalEntryID, fn func(id ports.JournalEntryID, r *domain.TickRecord) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.writer.Flush(); err != nil {
		return err
	}

	f, err := os.Open(j.path)
	if err != nil {
		return err
	}
	defer f.Close()

	return readRecords(f, from, fn)
}

// Scan reads the journal in dir without opening it for writing, so it is
// safe against a journal another process is appending to. A torn final
// record ends the scan without error and is left on disk.
func Scan(dir string, from ports.JournalEntryID, fn func(id ports.JournalEntryID, r *domain.TickRecord) error) error {
	f, err := os.Open(filepath.Join(dir, fileName))
	if err != nil {
		return err
	}
	defer f.Close()

	return readRecords(f, from, fn)
}

// readRecords stops quietly at a partial header or body.
func readRecords(src io.Reader, from ports.JournalEntryID, fn func(id ports.JournalEntryID, r *domain.TickRecord) error) error {
	r := bufio.NewReader(src)
	for {
		var hdr [recordHeaderLen]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("journal read header: %w", err)
		}
		id := ports.JournalEntryID(binary.BigEndian.Uint64(hdr[0:8]))
		l := binary.BigEndian.Uint32(hdr[8:12])

		b := make([]byte, l)
		if _, err := io.ReadFull(r, b); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("journal read entry %d: %w", id, err)
		}
		if id < from {
			continue
		}

		var rec domain.TickRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			return fmt.Errorf("corrupt journal entry %d: %w", id, err)
		}
		if err := fn(id, &rec); err != nil {
			return err
		}
	}
}

func (j *FileJournal) Stats() ports.JournalStats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return ports.JournalStats{
		LatestAppended: j.lastID,
		SizeBytes:      j.sizeBytes,
	}
}

func (j *FileJournal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.writer.Flush()
}

func (j *FileJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return errors.Join(j.writer.Flush(), j.file.Close())
}

var _ ports.Journal = (*FileJournal)(nil)
