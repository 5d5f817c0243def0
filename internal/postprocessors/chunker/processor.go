// Package chunker provides a recursive, overlap-exact text chunking processor.
//
// Text is first cut into segments at natural boundaries (paragraphs, lines,
// sentences, words), each no longer than size-overlap characters. Segments
// are then packed greedily into chunks of at most size characters, and each
// chunk after the first begins exactly overlap characters before the end of
// the previous one. Lengths and offsets are counted in runes.
package chunker

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 600

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 100

// DefaultSeparators are tried in order, coarsest first.
var DefaultSeparators = []string{"\n\n", "\n", ".", "!", "?", " "}

// chunkNamespace seeds name-based chunk IDs so rebuilding the same
// document yields the same IDs.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("shopdesk:chunk"))

// Processor splits document content into overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators [][]rune
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator hierarchy. Empty strings are ignored.
func WithSeparators(seps ...string) Option {
	return func(p *Processor) {
		p.separators = toRunes(seps)
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: toRunes(DefaultSeparators),
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't reach chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the effective chunk size.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the effective overlap.
func (p *Processor) Overlap() int { return p.overlap }

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
// A blank document produces no chunks.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc.IsBlank() {
		return nil, nil
	}

	text := []rune(doc.Content())
	bounds := p.boundaries(text)
	pages := pageOffsets(doc)

	chunks := make([]domain.Chunk, 0, len(text)/(p.chunkSize-p.overlap)+1)
	start := 0
	next := 0 // index into bounds of the first boundary after start
	for {
		for next < len(bounds) && bounds[next] <= start {
			next++
		}
		end := bounds[next]
		for next+1 < len(bounds) && bounds[next+1]-start <= p.chunkSize {
			next++
			end = bounds[next]
		}

		content := string(text[start:end])
		position := len(chunks)
		chunks = append(chunks, domain.Chunk{
			ID:        chunkID(position, content),
			Position:  position,
			Content:   content,
			Start:     start,
			End:       end,
			PageStart: doc.Pages[pageAt(pages, start)].Number,
			PageEnd:   doc.Pages[pageAt(pages, end-1)].Number,
		})

		if end == len(text) {
			break
		}
		start = end - p.overlap
	}

	return chunks, nil
}

// boundaries returns the sorted segment end offsets, ending with len(text).
func (p *Processor) boundaries(text []rune) []int {
	maxSeg := p.chunkSize - p.overlap
	var out []int
	var split func(start, end, level int)
	split = func(start, end, level int) {
		if end-start <= maxSeg {
			out = append(out, end)
			return
		}
		if level >= len(p.separators) {
			for s := start + maxSeg; s < end; s += maxSeg {
				out = append(out, s)
			}
			out = append(out, end)
			return
		}

		sep := p.separators[level]
		segStart := start
		for i := start; i+len(sep) <= end; {
			if !hasPrefix(text[i:end], sep) {
				i++
				continue
			}
			i += len(sep)
			// separator stays with the segment it ends
			split(segStart, i, level+1)
			segStart = i
		}
		if segStart < end {
			split(segStart, end, level+1)
		}
	}
	split(0, len(text), 0)
	return out
}

func hasPrefix(s, prefix []rune) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := range prefix {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}

// pageOffsets returns the rune offset where each page starts in doc.Content().
func pageOffsets(doc *domain.Document) []int {
	sepLen := len([]rune(domain.PageSeparator))
	offsets := make([]int, len(doc.Pages))
	off := 0
	for i, pg := range doc.Pages {
		offsets[i] = off
		off += len([]rune(pg.Content)) + sepLen
	}
	return offsets
}

// pageAt maps a rune offset to the index of the page containing it.
// Offsets inside a page separator belong to the preceding page.
func pageAt(offsets []int, offset int) int {
	page := 0
	for i, start := range offsets {
		if start > offset {
			break
		}
		page = i
	}
	return page
}

func chunkID(position int, content string) string {
	return uuid.NewSHA1(chunkNamespace, []byte(strconv.Itoa(position)+":"+content)).String()
}

func toRunes(seps []string) [][]rune {
	out := make([][]rune, 0, len(seps))
	for _, s := range seps {
		if s != "" {
			out = append(out, []rune(s))
		}
	}
	return out
}
