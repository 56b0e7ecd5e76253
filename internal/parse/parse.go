// Package parse reads and writes the SBPO-2025 challenge text format.
//
// Instance layout:
//
//	nOrders nItems nAisles
//	nOrders lines: k item qty item qty ...
//	nAisles lines: k item qty item qty ...
//	LB UB
//
// Answers list the selected order indices, then the visited aisle indices,
// each block prefixed by its count, one index per line.
package parse

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"wavepick/internal/wave"
)

// Instance is a decoded problem file.
type Instance struct {
	Orders     []map[int]int
	Aisles     []map[int]int
	NItems     int
	WaveSizeLB int
	WaveSizeUB int
}

// ReadInstance decodes one instance from r.
func ReadInstance(r io.Reader) (Instance, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	fields, err := nextFields(sc)
	if err != nil {
		return Instance{}, fmt.Errorf("header: %w", err)
	}
	if len(fields) != 3 {
		return Instance{}, fmt.Errorf("header: want 3 fields, got %d", len(fields))
	}
	nOrders, nItems, nAisles := fields[0], fields[1], fields[2]
	if nOrders < 0 || nItems < 1 || nAisles < 0 {
		return Instance{}, fmt.Errorf("header: bad dimensions %d %d %d", nOrders, nItems, nAisles)
	}

	inst := Instance{NItems: nItems}
	inst.Orders, err = readItemMaps(sc, nOrders, nItems, "order")
	if err != nil {
		return Instance{}, err
	}
	inst.Aisles, err = readItemMaps(sc, nAisles, nItems, "aisle")
	if err != nil {
		return Instance{}, err
	}

	fields, err = nextFields(sc)
	if err != nil {
		return Instance{}, fmt.Errorf("bounds: %w", err)
	}
	if len(fields) != 2 {
		return Instance{}, fmt.Errorf("bounds: want 2 fields, got %d", len(fields))
	}
	inst.WaveSizeLB, inst.WaveSizeUB = fields[0], fields[1]
	if inst.WaveSizeLB < 0 || inst.WaveSizeLB > inst.WaveSizeUB {
		return Instance{}, fmt.Errorf("bounds: bad range [%d, %d]", inst.WaveSizeLB, inst.WaveSizeUB)
	}
	return inst, nil
}

func readItemMaps(sc *bufio.Scanner, n, nItems int, kind string) ([]map[int]int, error) {
	maps := make([]map[int]int, 0, n)
	for i := 0; i < n; i++ {
		fields, err := nextFields(sc)
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", kind, i, err)
		}
		if len(fields) < 1 || len(fields) != 1+2*fields[0] {
			return nil, fmt.Errorf("%s %d: malformed entry line", kind, i)
		}
		m := make(map[int]int, fields[0])
		for j := 0; j < fields[0]; j++ {
			item, qty := fields[1+2*j], fields[2+2*j]
			if item < 0 || item >= nItems {
				return nil, fmt.Errorf("%s %d: item %d out of range", kind, i, item)
			}
			if qty < 1 {
				return nil, fmt.Errorf("%s %d: quantity %d for item %d", kind, i, qty, item)
			}
			m[item] += qty
		}
		maps = append(maps, m)
	}
	return maps, nil
}

func nextFields(sc *bufio.Scanner) ([]int, error) {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		fields := make([]int, len(parts))
		for i, p := range parts {
			v, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("bad integer %q", p)
			}
			fields[i] = v
		}
		return fields, nil
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.ErrUnexpectedEOF
}

// WriteWave encodes a wave in the challenge answer format.
func WriteWave(w io.Writer, wv wave.Wave) error {
	bw := bufio.NewWriter(w)
	for _, block := range []map[int]bool{wv.Orders, wv.Aisles} {
		indices := make([]int, 0, len(block))
		for i := range block {
			indices = append(indices, i)
		}
		sort.Ints(indices)
		if _, err := fmt.Fprintln(bw, len(indices)); err != nil {
			return err
		}
		for _, i := range indices {
			if _, err := fmt.Fprintln(bw, i); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
