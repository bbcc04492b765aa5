// Package chem implements the molecular oracle used by the enumeration
// pipeline: SMILES, SMARTS and MDL molfile parsing, aromaticity perception,
// canonical ranking and SMILES, fragmentation, substructure matching and
// reaction application.
package chem

// element holds the atomic number and the default valences tried in order
// when filling implicit hydrogens.
type element struct {
	num      int
	valences []int
}

// elementTable covers the full periodic table. Only the organic-subset
// elements and their heavier group neighbours carry default valences.
var elementTable = map[string]element{
	"*":  {0, nil},
	"H":  {1, []int{1}},
	"He": {2, nil},
	"Li": {3, nil},
	"Be": {4, nil},
	"B":  {5, []int{3}},
	"C":  {6, []int{4}},
	"N":  {7, []int{3, 5}},
	"O":  {8, []int{2}},
	"F":  {9, []int{1}},
	"Ne": {10, nil},
	"Na": {11, nil},
	"Mg": {12, nil},
	"Al": {13, nil},
	"Si": {14, []int{4}},
	"P":  {15, []int{3, 5}},
	"S":  {16, []int{2, 4, 6}},
	"Cl": {17, []int{1}},
	"Ar": {18, nil},
	"K":  {19, nil},
	"Ca": {20, nil},
	"Sc": {21, nil},
	"Ti": {22, nil},
	"V":  {23, nil},
	"Cr": {24, nil},
	"Mn": {25, nil},
	"Fe": {26, nil},
	"Co": {27, nil},
	"Ni": {28, nil},
	"Cu": {29, nil},
	"Zn": {30, nil},
	"Ga": {31, nil},
	"Ge": {32, []int{4}},
	"As": {33, []int{3, 5}},
	"Se": {34, []int{2, 4, 6}},
	"Br": {35, []int{1}},
	"Kr": {36, nil},
	"Rb": {37, nil},
	"Sr": {38, nil},
	"Y":  {39, nil},
	"Zr": {40, nil},
	"Nb": {41, nil},
	"Mo": {42, nil},
	"Tc": {43, nil},
	"Ru": {44, nil},
	"Rh": {45, nil},
	"Pd": {46, nil},
	"Ag": {47, nil},
	"Cd": {48, nil},
	"In": {49, nil},
	"Sn": {50, nil},
	"Sb": {51, nil},
	"Te": {52, []int{2, 4, 6}},
	"I":  {53, []int{1, 3, 5}},
	"Xe": {54, nil},
	"Cs": {55, nil},
	"Ba": {56, nil},
	"La": {57, nil},
	"Ce": {58, nil},
	"Pr": {59, nil},
	"Nd": {60, nil},
	"Pm": {61, nil},
	"Sm": {62, nil},
	"Eu": {63, nil},
	"Gd": {64, nil},
	"Tb": {65, nil},
	"Dy": {66, nil},
	"Ho": {67, nil},
	"Er": {68, nil},
	"Tm": {69, nil},
	"Yb": {70, nil},
	"Lu": {71, nil},
	"Hf": {72, nil},
	"Ta": {73, nil},
	"W":  {74, nil},
	"Re": {75, nil},
	"Os": {76, nil},
	"Ir": {77, nil},
	"Pt": {78, nil},
	"Au": {79, nil},
	"Hg": {80, nil},
	"Tl": {81, nil},
	"Pb": {82, nil},
	"Bi": {83, nil},
	"Po": {84, nil},
	"At": {85, nil},
	"Rn": {86, nil},
	"Fr": {87, nil},
	"Ra": {88, nil},
	"Ac": {89, nil},
	"Th": {90, nil},
	"Pa": {91, nil},
	"U":  {92, nil},
	"Np": {93, nil},
	"Pu": {94, nil},
	"Am": {95, nil},
	"Cm": {96, nil},
	"Bk": {97, nil},
	"Cf": {98, nil},
	"Es": {99, nil},
	"Fm": {100, nil},
	"Md": {101, nil},
	"No": {102, nil},
	"Lr": {103, nil},
	"Rf": {104, nil},
	"Db": {105, nil},
	"Sg": {106, nil},
	"Bh": {107, nil},
	"Hs": {108, nil},
	"Mt": {109, nil},
	"Ds": {110, nil},
	"Rg": {111, nil},
	"Cn": {112, nil},
	"Nh": {113, nil},
	"Fl": {114, nil},
	"Mc": {115, nil},
	"Lv": {116, nil},
	"Ts": {117, nil},
	"Og": {118, nil},
}

var symbolByNum = func() map[int]string {
	m := make(map[int]string, len(elementTable))
	for sym, el := range elementTable {
		m[el.num] = sym
	}
	return m
}()

// organicSubset lists elements that may appear outside brackets.
var organicSubset = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"F": true, "Cl": true, "Br": true, "I": true,
}

// aromaticSymbols maps lowercase aromatic symbols to elements. The two-letter
// forms are only legal inside brackets.
var aromaticSymbols = map[string]string{
	"b": "B", "c": "C", "n": "N", "o": "O", "p": "P", "s": "S",
	"se": "Se", "as": "As", "te": "Te",
}

func isElement(sym string) bool {
	_, ok := elementTable[sym]
	return ok && sym != "*"
}

//Personal.AI order the ending
