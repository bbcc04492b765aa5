package chem

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/turtacn/SymRxn/internal/domain/molecule"
)

// molfileCharge maps the V2000 atom-block charge code to a formal charge.
var molfileCharge = map[int]int{1: 3, 2: 2, 3: 1, 5: -1, 6: -2, 7: -3}

// parseMolfile reads the first record of an MDL V2000 molfile or SD file.
// Coordinates and stereo flags are read past. Explicit hydrogens are kept;
// callers fold them as needed.
func parseMolfile(r io.Reader) (*molecule.Graph, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	var lines []string
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(line, "$$$$") {
			break
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(lines) < 4 {
		return nil, fmt.Errorf("molfile header is truncated")
	}
	counts := lines[3]
	if strings.Contains(counts, "V3000") {
		return nil, fmt.Errorf("V3000 molfiles are not supported")
	}
	nAtoms, nBonds, err := molfileCounts(counts)
	if err != nil {
		return nil, err
	}
	if len(lines) < 4+nAtoms+nBonds {
		return nil, fmt.Errorf("molfile declares %d atoms and %d bonds but has %d lines", nAtoms, nBonds, len(lines))
	}

	g := molecule.NewGraph(strings.TrimSpace(lines[0]))
	for i := 0; i < nAtoms; i++ {
		a, err := molfileAtom(lines[4+i])
		if err != nil {
			return nil, fmt.Errorf("atom %d: %w", i+1, err)
		}
		g.AddAtom(a)
	}
	for i := 0; i < nBonds; i++ {
		begin, end, order, err := molfileBond(lines[4+nAtoms+i])
		if err != nil {
			return nil, fmt.Errorf("bond %d: %w", i+1, err)
		}
		if _, err := g.AddBond(begin-1, end-1, order); err != nil {
			return nil, fmt.Errorf("bond %d: %w", i+1, err)
		}
	}
	if err := molfileProperties(g, lines[4+nAtoms+nBonds:]); err != nil {
		return nil, err
	}
	if g.IsEmpty() {
		return nil, fmt.Errorf("molfile has no atoms")
	}
	fillImplicitHydrogens(g, nil)
	if err := checkValences(g); err != nil {
		return nil, err
	}
	perceiveAromaticity(g)
	return g, nil
}

// maxMolfileCount is the widest value the three-column V2000 count fields hold.
const maxMolfileCount = 999

func molfileCounts(line string) (int, int, error) {
	a, b, err := molfileCountFields(line)
	if err != nil {
		return 0, 0, err
	}
	if a < 0 || b < 0 || a > maxMolfileCount || b > maxMolfileCount {
		return 0, 0, fmt.Errorf("malformed counts line %q: counts must be within 0..%d", line, maxMolfileCount)
	}
	return a, b, nil
}

func molfileCountFields(line string) (int, int, error) {
	if len(line) >= 6 {
		a, errA := strconv.Atoi(strings.TrimSpace(line[0:3]))
		b, errB := strconv.Atoi(strings.TrimSpace(line[3:6]))
		if errA == nil && errB == nil {
			return a, b, nil
		}
	}
	f := strings.Fields(line)
	if len(f) < 2 {
		return 0, 0, fmt.Errorf("malformed counts line %q", line)
	}
	a, errA := strconv.Atoi(f[0])
	b, errB := strconv.Atoi(f[1])
	if errA != nil || errB != nil {
		return 0, 0, fmt.Errorf("malformed counts line %q", line)
	}
	return a, b, nil
}

func molfileAtom(line string) (molecule.Atom, error) {
	f := strings.Fields(line)
	if len(f) < 4 {
		return molecule.Atom{}, fmt.Errorf("malformed atom line %q", line)
	}
	sym := f[3]
	var a molecule.Atom
	switch sym {
	case "D":
		a = molecule.Atom{Symbol: "H", AtomicNum: 1, Isotope: 2}
	case "T":
		a = molecule.Atom{Symbol: "H", AtomicNum: 1, Isotope: 3}
	case "R#", "A", "Q", "*", "L", "LP":
		a = molecule.Atom{Symbol: "*"}
	default:
		if !isElement(sym) {
			return molecule.Atom{}, fmt.Errorf("unknown element %q", sym)
		}
		a = newAtom(sym, false)
	}
	if len(f) >= 6 {
		code, err := strconv.Atoi(f[5])
		if err != nil {
			return molecule.Atom{}, fmt.Errorf("malformed charge field %q", f[5])
		}
		a.Charge = molfileCharge[code]
	}
	return a, nil
}

func molfileBond(line string) (int, int, molecule.BondOrder, error) {
	var f []string
	if len(line) >= 9 {
		f = []string{strings.TrimSpace(line[0:3]), strings.TrimSpace(line[3:6]), strings.TrimSpace(line[6:9])}
	} else {
		f = strings.Fields(line)
	}
	if len(f) < 3 {
		return 0, 0, 0, fmt.Errorf("malformed bond line %q", line)
	}
	var n [3]int
	for i := range n {
		v, err := strconv.Atoi(f[i])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("malformed bond line %q", line)
		}
		n[i] = v
	}
	var order molecule.BondOrder
	switch n[2] {
	case 1:
		order = molecule.BondSingle
	case 2:
		order = molecule.BondDouble
	case 3:
		order = molecule.BondTriple
	case 4:
		order = molecule.BondAromatic
	default:
		return 0, 0, 0, fmt.Errorf("unsupported bond type %d", n[2])
	}
	return n[0], n[1], order, nil
}

// molfileProperties applies M  CHG and M  ISO lines up to M  END. The first
// CHG line voids the atom-block charges.
func molfileProperties(g *molecule.Graph, lines []string) error {
	chgSeen := false
	for _, line := range lines {
		if strings.HasPrefix(line, "M  END") {
			break
		}
		isChg := strings.HasPrefix(line, "M  CHG")
		if !isChg && !strings.HasPrefix(line, "M  ISO") {
			continue
		}
		f := strings.Fields(line)
		if len(f) < 3 {
			return fmt.Errorf("malformed property line %q", line)
		}
		n, err := strconv.Atoi(f[2])
		if err != nil || len(f) < 3+2*n {
			return fmt.Errorf("malformed property line %q", line)
		}
		if isChg && !chgSeen {
			for i := range g.Atoms {
				g.Atoms[i].Charge = 0
			}
			chgSeen = true
		}
		for k := 0; k < n; k++ {
			idx, errA := strconv.Atoi(f[3+2*k])
			val, errV := strconv.Atoi(f[4+2*k])
			if errA != nil || errV != nil || idx < 1 || idx > len(g.Atoms) {
				return fmt.Errorf("malformed property line %q", line)
			}
			if isChg {
				g.Atoms[idx-1].Charge = val
			} else {
				g.Atoms[idx-1].Isotope = val
			}
		}
	}
	return nil
}

//Personal.AI order the ending
