// ═══════════════════════════════════════════════════════════════════════════════
// BUILDER: orchestrates ingestion end to end
// ═══════════════════════════════════════════════════════════════════════════════
// Build runs the two scheduling phases described by the concurrency model:
// a data-parallel tokenization phase per batch (worker pool, no shared
// mutable state) followed by a serial phase that assigns ids, writes the
// batch's partial index, and — once every batch has been processed —
// persists the id tables and runs the external merge.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// BuilderOptions configures one build run.
type BuilderOptions struct {
	// IndexDir is the directory the persisted artifacts are written into:
	// posting.bin, offsets.bin, urls.json, files.json, doc_files.json.
	IndexDir string
	// BatchSize caps the number of documents tokenized and flushed to one
	// partial index before starting the next batch. Zero selects the
	// default policy: ceil(number of ".json" archive members / 3) once the
	// archive has been enumerated, falling back to DefaultBatchSize if that
	// would be zero. Records inside the members are not counted for this.
	BatchSize int
	// SimHashThreshold is the maximum Hamming distance for near-duplicate
	// suppression. Zero selects DefaultSimHashThreshold.
	SimHashThreshold int
	// Workers caps the tokenization worker pool size. Zero selects
	// runtime.GOMAXPROCS(0)-1, floored at 1.
	Workers int
}

// DefaultBatchSize is used when BatchSize is left at 0 and the corpus size
// cannot be amortized into thirds (e.g. an empty archive).
const DefaultBatchSize = 500

// DefaultBuilderOptions returns sensible defaults for indexDir.
func DefaultBuilderOptions(indexDir string) BuilderOptions {
	return BuilderOptions{
		IndexDir:         indexDir,
		SimHashThreshold: DefaultSimHashThreshold,
	}
}

// Builder ingests an archive into a complete on-disk index.
type Builder struct {
	opts BuilderOptions
}

// NewBuilder constructs a Builder with the given options, filling in
// defaults for zero-valued fields.
func NewBuilder(opts BuilderOptions) *Builder {
	if opts.SimHashThreshold == 0 {
		opts.SimHashThreshold = DefaultSimHashThreshold
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.GOMAXPROCS(0) - 1
		if opts.Workers < 1 {
			opts.Workers = 1
		}
	}
	return &Builder{opts: opts}
}

// tokenized is one document's tokenization result, ready for the serial
// phase to assign ids and accumulate into a partial index.
type tokenized struct {
	url      string
	fileName string
	tf       map[string]float64
}

// Build ingests archivePath end to end: enumerate members, tokenize in
// parallel batches, write partial indexes, then merge.
func (b *Builder) Build(archivePath string) error {
	if err := os.MkdirAll(b.opts.IndexDir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	ar, err := OpenArchive(archivePath)
	if err != nil {
		return err
	}
	defer ar.Close()

	members := ar.MemberNames()

	batchSize := b.opts.BatchSize
	if batchSize == 0 {
		if len(members) > 0 {
			batchSize = int(math.Ceil(float64(len(members)) / 3.0))
		}
		if batchSize == 0 {
			batchSize = DefaultBatchSize
		}
	}

	urls := NewIDTable()
	files := NewIDTable()
	dedup := NewDuplicateFilter(b.opts.SimHashThreshold)

	var docFileIDs []int32
	var partialIndexPaths, partialOffsetPaths []string
	batchNum := 0

	flushBatch := func(docs []Document) error {
		if len(docs) == 0 {
			return nil
		}
		batchNum++

		results := b.tokenizeBatch(docs)

		partial := NewPartialIndex()
		for _, t := range results {
			docID := urls.Intern(CanonicalizeURL(t.url))
			fileID := files.Intern(t.fileName)
			if int(docID) == len(docFileIDs) {
				docFileIDs = append(docFileIDs, fileID)
			}
			partial.Add(docID, t.tf)
		}

		indexPath := filepath.Join(b.opts.IndexDir, fmt.Sprintf("partial-%04d.bin", batchNum))
		offsetPath := filepath.Join(b.opts.IndexDir, fmt.Sprintf("partial-%04d.offsets.bin", batchNum))
		if err := partial.Write(indexPath, offsetPath); err != nil {
			return fmt.Errorf("writing partial index for batch %d: %w", batchNum, err)
		}
		partialIndexPaths = append(partialIndexPaths, indexPath)
		partialOffsetPaths = append(partialOffsetPaths, offsetPath)

		slog.Info("batch flushed", slog.Int("batch", batchNum), slog.Int("documents", len(docs)), slog.Int("terms", partial.Len()))
		return nil
	}

	var pending []Document
	for _, member := range members {
		docs, err := ar.Documents(member)
		if err != nil {
			return fmt.Errorf("reading member %q: %w", member, err)
		}
		for _, doc := range docs {
			if !dedup.Accept(doc.URL, doc.Content) {
				continue
			}
			pending = append(pending, doc)
			if len(pending) >= batchSize {
				if err := flushBatch(pending); err != nil {
					return err
				}
				pending = nil
			}
		}
	}
	if err := flushBatch(pending); err != nil {
		return err
	}

	if err := urls.Save(filepath.Join(b.opts.IndexDir, "urls.json")); err != nil {
		return fmt.Errorf("saving url table: %w", err)
	}
	if err := files.Save(filepath.Join(b.opts.IndexDir, "files.json")); err != nil {
		return fmt.Errorf("saving file table: %w", err)
	}
	if err := SaveDocFileIDs(filepath.Join(b.opts.IndexDir, "doc_files.json"), docFileIDs); err != nil {
		return fmt.Errorf("saving doc_id to file_id table: %w", err)
	}

	if len(partialIndexPaths) == 0 {
		// Nothing accepted: write an empty posting file and offset map so
		// the reader still has well-formed artifacts to open.
		empty := NewPartialIndex()
		indexPath := filepath.Join(b.opts.IndexDir, "partial-0000.bin")
		offsetPath := filepath.Join(b.opts.IndexDir, "partial-0000.offsets.bin")
		if err := empty.Write(indexPath, offsetPath); err != nil {
			return err
		}
		partialIndexPaths = []string{indexPath}
		partialOffsetPaths = []string{offsetPath}
	}

	slog.Info("merge started", slog.Int("partials", len(partialIndexPaths)))
	finalIndexPath := filepath.Join(b.opts.IndexDir, "posting.bin")
	finalOffsetPath := filepath.Join(b.opts.IndexDir, "offsets.bin")
	if err := MergePartialIndexes(partialIndexPaths, partialOffsetPaths, finalIndexPath, finalOffsetPath); err != nil {
		return fmt.Errorf("merging partial indexes: %w", err)
	}

	slog.Info("build complete", slog.Int("documents", urls.Len()))
	return nil
}

// tokenizeBatch runs the tokenizer over docs using a fixed-size worker
// pool. Each worker owns a disjoint slice of the batch and returns its own
// results; there is no shared mutable state between workers, only the
// join barrier below.
func (b *Builder) tokenizeBatch(docs []Document) []tokenized {
	results := make([]tokenized, len(docs))

	workers := b.opts.Workers
	if workers > len(docs) {
		workers = len(docs)
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (len(docs) + workers - 1) / workers
	if chunk == 0 {
		chunk = 1
	}

	var wg sync.WaitGroup
	for start := 0; start < len(docs); start += chunk {
		end := start + chunk
		if end > len(docs) {
			end = len(docs)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				doc := docs[i]
				tf := TermFrequencies(TokenizeDocument(doc.Content))
				results[i] = tokenized{url: doc.URL, fileName: doc.FileName, tf: tf}
			}
		}(start, end)
	}
	wg.Wait()

	return results
}
