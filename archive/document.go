package archive

import (
	"fmt"
	"math"
	"strconv"

	"github.com/arloliu/pesbin/errs"
	"github.com/arloliu/pesbin/field"
	"github.com/arloliu/pesbin/format"
	"github.com/arloliu/pesbin/internal/hash"
	"github.com/arloliu/pesbin/internal/logger"
	"github.com/arloliu/pesbin/internal/options"
	"github.com/arloliu/pesbin/internal/pool"
	"github.com/arloliu/pesbin/mapper"
	"github.com/arloliu/pesbin/section"
)

// State is the editing state of a Document.
type State uint8

const (
	StateLoaded      State = iota // StateLoaded means no section is open.
	StateSectionOpen              // StateSectionOpen means one section's fields are held in memory.
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateSectionOpen:
		return "section-open"
	default:
		return "unknown"
	}
}

// Document is an archive loaded into memory for editing.
//
// The document owns a private copy of the archive bytes. Section boundaries are
// fixed at load time; flushing a section rewrites bytes inside it and never
// resizes the buffer.
//
// A Document is not safe for concurrent use.
type Document struct {
	desc     format.Descriptor
	codec    *field.Codec
	buf      []byte
	index    *section.Index
	registry *mapper.Registry
	log      logger.Logger

	state   State
	current section.Section
	records []field.Record
	dirty   bool

	loadedSum uint64
}

// Load parses data with the layout described by desc.
//
// Parameters:
//   - data: archive bytes; the document keeps its own copy
//   - desc: format descriptor of the archive variant
//   - opts: logger, mapper registry and layout options
//
// Returns:
//   - *Document: document in the Loaded state
//   - error: ErrUnrecognizedFormat for a zero descriptor, ErrCorruptIndex or
//     ErrNameCountMismatch for a malformed index
func Load(data []byte, desc format.Descriptor, opts ...Option) (*Document, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	cfg := newDocumentConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	desc = desc.WithOneByteBooleans(cfg.oneByteBools...)
	if cfg.sentinel != nil {
		desc.NullSentinel = cfg.sentinel
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	index, err := section.Parse(buf, desc.HeaderLength, desc.IndexTableLength)
	if err != nil {
		return nil, err
	}

	d := &Document{
		desc:      desc,
		codec:     field.NewCodec(desc),
		buf:       buf,
		index:     index,
		registry:  cfg.registry,
		log:       cfg.log.With("variant", desc.Variant.String()),
		state:     StateLoaded,
		loadedSum: hash.Fingerprint(buf),
	}

	d.log.Info("archive loaded", "sections", index.Len(), "bytes", len(buf), "mappers", cfg.registry.Len())

	return d, nil
}

// Descriptor returns the descriptor the document was loaded with.
func (d *Document) Descriptor() format.Descriptor {
	return d.desc.Clone()
}

// Codec returns the value codec of the document's variant.
func (d *Document) Codec() *field.Codec {
	return d.codec
}

// Index returns the parsed section index.
func (d *Document) Index() *section.Index {
	return d.index
}

// Sections returns the sections in index order.
func (d *Document) Sections() []section.Section {
	return d.index.Sections()
}

// Section returns the named section.
func (d *Document) Section(name string) (section.Section, error) {
	sec, ok := d.index.Get(name)
	if !ok {
		return section.Section{}, fmt.Errorf("%w: %q", errs.ErrUnknownSection, name)
	}

	return sec, nil
}

// IsMapped reports whether a mapper is registered for the named section.
func (d *Document) IsMapped(name string) bool {
	_, ok := d.registry.Lookup(name)
	return ok
}

// Size returns the archive size in bytes.
func (d *Document) Size() int {
	return len(d.buf)
}

// State returns the editing state.
func (d *Document) State() State {
	return d.state
}

// Current returns the open section.
func (d *Document) Current() (section.Section, bool) {
	return d.current, d.state == StateSectionOpen
}

// Records returns a copy of the open section's fields, or nil when no section
// is open.
func (d *Document) Records() []field.Record {
	if d.state != StateSectionOpen {
		return nil
	}

	return field.CloneRecords(d.records)
}

// OpenSection flushes the open section, if any, then decodes the named section.
//
// Sections without a mapper yield a single read-only placeholder record holding
// the section length. On error the previously open section stays open.
//
// Returns:
//   - []field.Record: copy of the decoded fields in storage order
//   - error: ErrUnknownSection, a flush error of the previous section, or a decode error
func (d *Document) OpenSection(name string) ([]field.Record, error) {
	sec, err := d.Section(name)
	if err != nil {
		return nil, err
	}

	if d.state == StateSectionOpen {
		if err := d.flushOpen(); err != nil {
			return nil, err
		}
	}

	records, err := d.decode(sec)
	if err != nil {
		d.log.Error("section decode failed", "section", name, "error", err)
		return nil, err
	}

	d.current = sec
	d.records = records
	d.dirty = false
	d.state = StateSectionOpen
	d.log.Debug("section opened", "section", name, "fields", len(records))

	return field.CloneRecords(records), nil
}

// CloseSection flushes the open section and returns to the Loaded state.
func (d *Document) CloseSection() error {
	if d.state != StateSectionOpen {
		return nil
	}
	if err := d.flushOpen(); err != nil {
		return err
	}

	d.current = section.Section{}
	d.records = nil
	d.state = StateLoaded

	return nil
}

// startedMapper is implemented by mappers that skip a fixed prefix before the
// first field.
type startedMapper interface {
	Start() int
}

func (d *Document) decode(sec section.Section) ([]field.Record, error) {
	m, ok := d.registry.Lookup(sec.Name)
	if !ok {
		return []field.Record{placeholder(sec)}, nil
	}

	// Fields are written back at the write offset, so a layout reading them
	// anywhere else would rewrite bytes it never decoded.
	if sm, ok := m.(startedMapper); ok {
		if shift := sec.WriteOffset() - sec.Offset; sm.Start() != shift {
			return nil, fmt.Errorf("%w: section %q stores fields %d bytes after its offset, layout starts at %d",
				errs.ErrInvalidLayout, sec.Name, shift, sm.Start())
		}
	}

	fields, err := m.Decode(d.codec, d.buf, sec.Offset, sec.Length)
	if err != nil {
		return nil, fmt.Errorf("section %q: %w", sec.Name, err)
	}

	return field.RecordsFromMap(fields), nil
}

// placeholder is the record of a section without a mapper. It carries the
// section length, as an integer when it fits 16 bits.
func placeholder(sec section.Section) field.Record {
	v := field.Null()
	if sec.Length >= 0 && sec.Length <= math.MaxUint16 {
		v = field.Int(uint16(sec.Length))
	}

	return field.Record{
		Name:        strconv.Itoa(sec.Length),
		Value:       v,
		Placeholder: true,
	}
}

func (d *Document) flushOpen() error {
	if err := d.FlushSection(d.current.Name, d.records); err != nil {
		return err
	}
	d.dirty = false

	return nil
}

// FlushSection encodes records consecutively at the section's write offset.
//
// The flush is skipped when there are fewer than two records or the section
// starts at offset 0. All records are encoded before the buffer is touched, so a
// failed flush leaves the archive unchanged. Flushing the open section also
// replaces its in-memory records.
//
// Returns:
//   - error: ErrUnknownSection, ErrUnsupportedFieldType, or ErrSectionOverflow when
//     the encoded records do not fit inside the section
func (d *Document) FlushSection(name string, records []field.Record) error {
	sec, err := d.Section(name)
	if err != nil {
		return err
	}

	if len(records) <= 1 || sec.Offset == 0 {
		d.log.Debug("section flush skipped", "section", name, "fields", len(records), "offset", sec.Offset)
		return nil
	}

	need := 0
	for _, rec := range records {
		n, err := d.codec.EncodedSize(rec.Name, rec.Value)
		if err != nil {
			d.log.Error("section encode failed", "section", name, "error", err)
			return fmt.Errorf("section %q: %w", name, err)
		}
		need += n
	}

	start := sec.WriteOffset()
	if start+need > sec.End() {
		return fmt.Errorf("%w: section %q holds %d bytes from offset %d, fields need %d",
			errs.ErrSectionOverflow, name, sec.End()-start, start, need)
	}

	scratch := pool.GetSectionBuffer()
	defer pool.PutSectionBuffer(scratch)
	scratch.Grow(need)

	scratch.B, err = d.codec.EncodeRecords(scratch.B, records)
	if err != nil {
		d.log.Error("section encode failed", "section", name, "error", err)
		return fmt.Errorf("section %q: %w", name, err)
	}

	copy(d.buf[start:], scratch.Bytes())
	if d.state == StateSectionOpen && d.current.Name == name {
		d.records = field.CloneRecords(records)
	}
	d.log.Debug("section flushed", "section", name, "bytes", scratch.Len())

	return nil
}

// Serialize flushes the open section and returns a copy of the archive bytes.
// The document returns to the Loaded state.
func (d *Document) Serialize() ([]byte, error) {
	if err := d.CloseSection(); err != nil {
		return nil, err
	}

	out := make([]byte, len(d.buf))
	copy(out, d.buf)

	return out, nil
}

// Fingerprint returns the xxHash64 of the archive bytes, excluding edits that
// have not been flushed yet.
func (d *Document) Fingerprint() uint64 {
	return hash.Fingerprint(d.buf)
}

// Modified reports whether the archive differs from the loaded bytes, counting
// unflushed edits of the open section.
func (d *Document) Modified() bool {
	return d.dirty || d.Fingerprint() != d.loadedSum
}

func (d *Document) requireOpen() error {
	if d.state != StateSectionOpen {
		return errs.ErrNoOpenSection
	}

	return nil
}
