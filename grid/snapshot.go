package grid

import (
	"os"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/TKDKid1000/tablecalc/formula"
)

// SaveSnapshot writes g's occupied cells to a JSON session file, keyed by
// canonical reference text, so a terminal session can be resumed without
// round-tripping through CSV's comma/quote limitations. Built incrementally
// with sjson.SetBytes rather than a struct marshal, matching the pack's
// schema-light JSON manipulation style.
func SaveSnapshot(path string, g *Grid) error {
	var raw []byte
	var err error
	raw, err = sjson.SetBytes(raw, "version", 1)
	if err != nil {
		return err
	}

	addrs := g.Occupied()
	for _, addr := range addrs {
		key := "cells." + jsonKey(addr)
		raw, err = sjson.SetBytes(raw, key, g.GetCellText(addr))
		if err != nil {
			return err
		}
	}

	return os.WriteFile(path, raw, 0o644)
}

// LoadSnapshot reads a JSON session file written by SaveSnapshot into a
// fresh Grid.
func LoadSnapshot(path string, registry *formula.Registry) (*Grid, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	g := New(registry)
	cells := gjson.GetBytes(raw, "cells")
	var rangeErr error
	cells.ForEach(func(key, value gjson.Result) bool {
		addr, ok := formula.ParseReference(key.String())
		if !ok || !addr.IsCell() {
			rangeErr = &formula.EngineError{Formula: key.String(), Cause: errInvalidSnapshotKey}
			return false
		}
		g.Set(addr, value.String())
		return true
	})
	if rangeErr != nil {
		return nil, rangeErr
	}
	return g, nil
}

var errInvalidSnapshotKey = snapshotKeyError("snapshot key is not a single-cell reference")

type snapshotKeyError string

func (e snapshotKeyError) Error() string { return string(e) }

// jsonKey renders addr as a JSON-object-safe key: gjson/sjson treat '.' as
// a path separator, which a raw ToText() never contains for a fully
// qualified cell reference (letters then digits), but this guards the
// invariant explicitly rather than relying on it implicitly.
func jsonKey(addr formula.Reference) string {
	if addr.IsCell() {
		return addr.ToText()
	}
	return formula.IndexToAlpha(addr.Col) + "_" + strconv.Itoa(addr.Row)
}
