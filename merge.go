// ═══════════════════════════════════════════════════════════════════════════════
// EXTERNAL MERGER: k-way merge of partial indexes
// ═══════════════════════════════════════════════════════════════════════════════
// The partial indexes produced by the batch indexer are each sorted by
// term but only cover a slice of the corpus. The merger combines all of
// them into one posting file covering the whole corpus, in ascending term
// order, without ever holding more than one record per partial file in
// memory at a time.
//
// Algorithm: a min-heap keyed by (term, file index) holds exactly one
// pending record per still-open partial file. Each pop yields the
// smallest term currently available; if it matches the "run" being
// accumulated, its postings extend the run (partials already guarantee no
// duplicate doc_id per term, and batches partition the document space, so
// no duplicate doc_id can arise across partials either); otherwise the
// previous run is flushed and a new one starts. After a pop, the source
// file's next record (if any) is read and pushed back onto the heap.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"bufio"
	"container/heap"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// mergeItem is one pending record from one partial-index file.
type mergeItem struct {
	term      string
	postings  []Posting
	fileIndex int
	reader    *bufio.Reader
	file      *os.File
}

// mergeHeap orders items by (term, fileIndex) ascending, matching spec's
// stable tie-breaker for the k-way merge.
type mergeHeap []*mergeItem

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	if h[i].term != h[j].term {
		return h[i].term < h[j].term
	}
	return h[i].fileIndex < h[j].fileIndex
}
func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x any)   { *h = append(*h, x.(*mergeItem)) }
func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// MergePartialIndexes k-way merges the given partial index/offset file
// pairs into a single final posting file plus a global offset map at
// finalIndexPath/finalOffsetPath. On success, every partial file and its
// sidecar offset map is deleted; the merge is not checkpointed, so a
// failure leaves them in place for the caller to discard and restart.
func MergePartialIndexes(partialIndexPaths, partialOffsetPaths []string, finalIndexPath, finalOffsetPath string) error {
	if len(partialIndexPaths) != len(partialOffsetPaths) {
		return fmt.Errorf("mismatched partial index/offset path counts")
	}

	h := &mergeHeap{}
	heap.Init(h)

	var openFiles []*os.File
	closeAll := func() {
		for _, f := range openFiles {
			f.Close()
		}
	}

	for i, path := range partialIndexPaths {
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return fmt.Errorf("opening partial index %s: %w", path, err)
		}
		openFiles = append(openFiles, f)

		r := bufio.NewReader(f)
		if err := readPostingFileHeader(r); err != nil {
			closeAll()
			return fmt.Errorf("reading partial index header %s: %w", path, err)
		}

		rec, err := readPostingRecord(r)
		if err == io.EOF {
			continue
		}
		if err != nil {
			closeAll()
			return fmt.Errorf("reading first record of %s: %w", path, err)
		}
		heap.Push(h, &mergeItem{
			term:      rec.Term,
			postings:  rec.Postings,
			fileIndex: i,
			reader:    r,
			file:      f,
		})
	}
	defer closeAll()

	out, err := os.Create(finalIndexPath)
	if err != nil {
		return err
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	offset, err := writePostingFileHeader(w)
	if err != nil {
		return err
	}

	offsets := make(OffsetMap)
	var currentTerm string
	var currentPostings []Posting
	haveRun := false

	flush := func() error {
		if !haveRun {
			return nil
		}
		offsets[currentTerm] = offset
		n, err := writePostingRecord(w, currentTerm, currentPostings)
		if err != nil {
			return err
		}
		offset += n
		return nil
	}

	for h.Len() > 0 {
		item := heap.Pop(h).(*mergeItem)

		if haveRun && item.term == currentTerm {
			currentPostings = append(currentPostings, item.postings...)
		} else {
			if err := flush(); err != nil {
				return err
			}
			currentTerm = item.term
			currentPostings = item.postings
			haveRun = true
		}

		next, err := readPostingRecord(item.reader)
		if err == io.EOF {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading next record from partial file %d: %w", item.fileIndex, err)
		}
		heap.Push(h, &mergeItem{
			term:      next.Term,
			postings:  next.Postings,
			fileIndex: item.fileIndex,
			reader:    item.reader,
			file:      item.file,
		})
	}

	if err := flush(); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := SaveOffsetMap(finalOffsetPath, offsets); err != nil {
		return err
	}

	closeAll()
	openFiles = nil

	for i := range partialIndexPaths {
		if err := os.Remove(partialIndexPaths[i]); err != nil {
			slog.Warn("failed to remove partial index after merge", slog.String("path", partialIndexPaths[i]), slog.Any("error", err))
		}
		if err := os.Remove(partialOffsetPaths[i]); err != nil {
			slog.Warn("failed to remove partial offset map after merge", slog.String("path", partialOffsetPaths[i]), slog.Any("error", err))
		}
	}

	slog.Info("merge complete", slog.Int("partials", len(partialIndexPaths)), slog.Int("terms", len(offsets)))
	return nil
}
