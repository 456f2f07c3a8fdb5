package artifact

import (
	"bytes"
	"io"

	"github.com/YuminosukeSato/iziml/dataset"
	"github.com/YuminosukeSato/iziml/pkg/errors"
	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zip"
)

// maxMemberSize bounds the decompressed size of a single member.
const maxMemberSize = 1 << 30

// Member is one decompressed archive entry.
type Member struct {
	Name     string
	Data     []byte
	Checksum uint64 // xxhash64 of Data
}

// Bundle is the parsed content of an archive written by Package.
type Bundle struct {
	Members []Member
	tables  map[string]*dataset.Table
}

// Unpack reads an archive and parses every member as CSV. All five members
// must be present.
func Unpack(data []byte) (*Bundle, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, "artifact: open archive")
	}

	b := &Bundle{tables: make(map[string]*dataset.Table, len(zr.File))}
	for _, f := range zr.File {
		raw, err := readMember(f)
		if err != nil {
			return nil, err
		}
		t, err := dataset.ReadCSV(bytes.NewReader(raw))
		if err != nil {
			return nil, errors.Wrapf(err, "artifact: parse %s", f.Name)
		}
		b.Members = append(b.Members, Member{Name: f.Name, Data: raw, Checksum: xxhash.Sum64(raw)})
		b.tables[f.Name] = t
	}
	for _, name := range Members {
		if _, ok := b.tables[name]; !ok {
			return nil, errors.NewValueError("artifact.Unpack", "missing member "+name)
		}
	}
	return b, nil
}

func readMember(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > maxMemberSize {
		return nil, errors.NewValueError("artifact.Unpack", f.Name+" is too large")
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "artifact: open %s", f.Name)
	}
	defer rc.Close()
	raw, err := io.ReadAll(io.LimitReader(rc, maxMemberSize+1))
	if err != nil {
		return nil, errors.Wrapf(err, "artifact: read %s", f.Name)
	}
	if len(raw) > maxMemberSize {
		return nil, errors.NewValueError("artifact.Unpack", f.Name+" is too large")
	}
	return raw, nil
}

// Table returns the parsed member, or nil if the archive has no such member.
func (b *Bundle) Table(name string) *dataset.Table {
	return b.tables[name]
}

// Names returns the member names in archive order.
func (b *Bundle) Names() []string {
	names := make([]string, len(b.Members))
	for i, m := range b.Members {
		names[i] = m.Name
	}
	return names
}

// Training joins X_train and y_train column-wise into one table.
func (b *Bundle) Training() (*dataset.Table, error) {
	return join(b.tables[XTrainMember], b.tables[YTrainMember])
}

// Test joins X_test and y_test column-wise into one table.
func (b *Bundle) Test() (*dataset.Table, error) {
	return join(b.tables[XTestMember], b.tables[YTestMember])
}

func join(x, y *dataset.Table) (*dataset.Table, error) {
	if x.NumRows() != y.NumRows() {
		return nil, errors.NewDimensionError("artifact.join", x.NumRows(), y.NumRows(), 0)
	}
	cols := append(append([]string(nil), x.Columns...), y.Columns...)
	rows := make([][]string, x.NumRows())
	for i := range rows {
		rows[i] = append(append([]string(nil), x.Rows[i]...), y.Rows[i]...)
	}
	return dataset.NewTable(cols, rows)
}
