package persistence

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"ca-modeler/internal/core"
)

// ErrShape is returned when a grid file's cells disagree with its size.
var ErrShape = errors.New("cells do not match grid dimensions")

// gridFile is the on-disk shape of a grid. Cells are written as numbers so
// the file stays readable.
type gridFile struct {
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	Cells        [][]int           `json:"cells"`
	Neighborhood core.Neighborhood `json:"neighborhood"`
}

// Encode writes g as JSON.
func Encode(w io.Writer, g *core.Grid) error {
	gf := gridFile{Width: g.W, Height: g.H, Neighborhood: g.Neighborhood, Cells: make([][]int, g.H)}
	for r, row := range g.Rows() {
		gf.Cells[r] = make([]int, len(row))
		for c, v := range row {
			gf.Cells[r][c] = int(v)
		}
	}
	enc := json.NewEncoder(w)
	return enc.Encode(gf)
}

// Decode reads and validates a JSON grid.
func Decode(r io.Reader) (*core.Grid, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := validateGridJSON(raw); err != nil {
		return nil, err
	}
	var gf gridFile
	if err := json.Unmarshal(raw, &gf); err != nil {
		return nil, fmt.Errorf("decode grid: %w", err)
	}
	if len(gf.Cells) != gf.Height {
		return nil, fmt.Errorf("%w: %d rows, height %d", ErrShape, len(gf.Cells), gf.Height)
	}
	g := core.NewGrid(gf.Width, gf.Height, gf.Neighborhood)
	for r, row := range gf.Cells {
		if len(row) != gf.Width {
			return nil, fmt.Errorf("%w: row %d has %d cells, width %d", ErrShape, r, len(row), gf.Width)
		}
		for c, v := range row {
			g.Set(r, c, uint8(v))
		}
	}
	return g, nil
}

// Compressed reports whether path selects the zstd container.
func Compressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zst")
}

// SaveGrid writes g to path, zstd-compressed when path ends in .zst.
func SaveGrid(path string, g *core.Grid) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	if Compressed(path) {
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		defer func() {
			if cerr := enc.Close(); err == nil {
				err = cerr
			}
		}()
		w = enc
	}
	bw := bufio.NewWriterSize(w, 64*1024)
	if err := Encode(bw, g); err != nil {
		return err
	}
	return bw.Flush()
}

// LoadGrid reads a grid written by SaveGrid.
func LoadGrid(path string) (*core.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if Compressed(path) {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		r = dec
	}
	g, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return g, nil
}
