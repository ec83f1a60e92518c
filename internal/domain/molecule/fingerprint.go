package molecule

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/bits"
	"sort"
	"strings"

	"github.com/turtacn/ChemSAR/pkg/errors"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
)

// Default fingerprint parameters.  Morgan radius 2 over 2048 bits mirrors the
// ECFP4 convention used throughout similarity-based screening.
const (
	DefaultMorganRadius    = 2
	DefaultFingerprintBits = 2048
	DefaultMaxPathLength   = 7

	maccsBits = 166
)

// Fingerprint represents a molecular fingerprint as a packed bit vector.
// Bit i is stored in byte i/8 at bit position i%8.
type Fingerprint struct {
	Type      chem.FingerprintType `json:"type"`
	Bits      []byte               `json:"bits"`
	Length    int                  `json:"length"`
	NumOnBits int                  `json:"num_on_bits"`
}

// NewFingerprint constructs a Fingerprint from packed bit data, computing the
// popcount.
func NewFingerprint(fpType chem.FingerprintType, data []byte, length int) *Fingerprint {
	on := 0
	for _, b := range data {
		on += bits.OnesCount8(b)
	}
	return &Fingerprint{Type: fpType, Bits: data, Length: length, NumOnBits: on}
}

// FingerprintFromBytes reconstructs a fingerprint from stored bit data.
func FingerprintFromBytes(fpType chem.FingerprintType, data []byte, length int) *Fingerprint {
	return NewFingerprint(fpType, data, length)
}

// GetBit returns true if the bit at the given index is set.
func (fp *Fingerprint) GetBit(index int) bool {
	if index < 0 || index >= fp.Length {
		return false
	}
	return fp.Bits[index/8]&(1<<uint(index%8)) != 0
}

func setBit(data []byte, index int) {
	data[index/8] |= 1 << uint(index%8)
}

// hash64 folds an environment descriptor string into a 64-bit value.  SHA-256
// keeps bit assignment stable across platforms and Go versions, which the
// label-stability guarantee of clustering depends on.
func hash64(s string) uint64 {
	sum := sha256.Sum256([]byte(s))
	return binary.BigEndian.Uint64(sum[:8])
}

// MorganFingerprint computes a circular fingerprint by iterative neighborhood
// hashing over the structure graph.  Each atom starts from an invariant built
// from its element, degree, charge, aromaticity, and hydrogen count; every
// round folds in the sorted (bond order, neighbor invariant) pairs, and each
// invariant at each radius sets one bit.  The result is independent of atom
// input order for isomorphic graphs written with the same atom environments.
func MorganFingerprint(g *Graph, radius, nBits int) (*Fingerprint, error) {
	if g == nil || len(g.Atoms) == 0 {
		return nil, errors.New(errors.ErrCodeFingerprintFailed, "empty structure graph")
	}
	if radius < 0 {
		radius = DefaultMorganRadius
	}
	if nBits <= 0 {
		nBits = DefaultFingerprintBits
	}

	data := make([]byte, (nBits+7)/8)

	inv := make([]uint64, len(g.Atoms))
	for i, a := range g.Atoms {
		inv[i] = hash64(fmt.Sprintf("%s|%d|%d|%t|%d",
			a.Symbol, g.Degree(i), a.Charge, a.Aromatic, a.ImplicitH))
		setBit(data, int(inv[i]%uint64(nBits)))
	}

	for r := 1; r <= radius; r++ {
		next := make([]uint64, len(inv))
		for i := range g.Atoms {
			env := make([]string, 0, g.Degree(i))
			for _, bi := range g.adjacency[i] {
				b := g.Bonds[bi]
				nbr := b.To
				if nbr == i {
					nbr = b.From
				}
				order := b.Order
				if b.Aromatic {
					order = 4
				}
				env = append(env, fmt.Sprintf("%d:%016x", order, inv[nbr]))
			}
			sort.Strings(env)
			next[i] = hash64(fmt.Sprintf("%d|%016x|%s", r, inv[i], strings.Join(env, ",")))
			setBit(data, int(next[i]%uint64(nBits)))
		}
		inv = next
	}

	return NewFingerprint(chem.FPMorgan, data, nBits), nil
}

// maccsKey is one structural key: a bit index paired with a predicate over
// the structure graph.
type maccsKey struct {
	bit  int
	test func(g *Graph) bool
}

// maccsKeys is the supported subset of the 166 MACCS structural keys.  The
// predicates operate on the parsed graph rather than on substring matching,
// so equivalent SMILES spellings set the same keys.
var maccsKeys = []maccsKey{
	{10, func(g *Graph) bool { return countAromaticRings(g) >= 1 }},
	{11, func(g *Graph) bool { return countAromaticRings(g) >= 2 }},
	{12, func(g *Graph) bool { return hasRing(g) }},

	{20, func(g *Graph) bool { return hasElement(g, "N") }},
	{21, func(g *Graph) bool { return hasElement(g, "O") }},
	{22, func(g *Graph) bool { return hasElement(g, "S") }},
	{23, func(g *Graph) bool { return hasElement(g, "F") }},
	{24, func(g *Graph) bool { return hasElement(g, "Cl") }},
	{25, func(g *Graph) bool { return hasElement(g, "Br") }},
	{26, func(g *Graph) bool { return hasElement(g, "I") }},
	{27, func(g *Graph) bool { return hasElement(g, "P") }},

	{30, func(g *Graph) bool { return hasCarbonyl(g) }},
	{31, func(g *Graph) bool { return hasCarboxyl(g) }},
	{32, func(g *Graph) bool { return hasAmide(g) }},
	{33, func(g *Graph) bool { return hasNitrile(g) }},
	{34, func(g *Graph) bool { return hasHydroxyl(g) }},
	{35, func(g *Graph) bool { return hasPrimaryAmine(g) }},
	{36, func(g *Graph) bool { return hasBondOrder(g, 2) }},
	{37, func(g *Graph) bool { return hasBondOrder(g, 3) }},
	{38, func(g *Graph) bool { return hasCharge(g) }},
}

// MACCSFingerprint computes a 166-bit structural-key fingerprint from the
// supported key subset plus size buckets.
func MACCSFingerprint(g *Graph) (*Fingerprint, error) {
	if g == nil || len(g.Atoms) == 0 {
		return nil, errors.New(errors.ErrCodeFingerprintFailed, "empty structure graph")
	}

	data := make([]byte, (maccsBits+7)/8)
	for _, k := range maccsKeys {
		if k.test(g) {
			setBit(data, k.bit)
		}
	}

	// Size buckets at the tail of the key range.
	n := len(g.Atoms)
	if n > 5 {
		setBit(data, 160)
	}
	if n > 10 {
		setBit(data, 161)
	}
	if n > 20 {
		setBit(data, 162)
	}

	return NewFingerprint(chem.FPMACCS, data, maccsBits), nil
}

// TopologicalFingerprint computes a Daylight-style path fingerprint.  All
// simple paths of minPath..maxPath bonds are enumerated by depth-first walks
// from every atom; each path's (element, bond order) sequence is hashed into
// the bit vector.  Paths are hashed in both directions so the result does not
// depend on traversal direction.
func TopologicalFingerprint(g *Graph, minPath, maxPath, nBits int) (*Fingerprint, error) {
	if g == nil || len(g.Atoms) == 0 {
		return nil, errors.New(errors.ErrCodeFingerprintFailed, "empty structure graph")
	}
	if minPath < 1 {
		minPath = 1
	}
	if maxPath < minPath {
		maxPath = DefaultMaxPathLength
	}
	if nBits <= 0 {
		nBits = DefaultFingerprintBits
	}

	data := make([]byte, (nBits+7)/8)
	visited := make([]bool, len(g.Atoms))

	var walk func(at int, path []string, depth int)
	walk = func(at int, path []string, depth int) {
		if depth >= minPath {
			emitPath(data, nBits, path)
		}
		if depth == maxPath {
			return
		}
		visited[at] = true
		for _, bi := range g.adjacency[at] {
			b := g.Bonds[bi]
			nbr := b.To
			if nbr == at {
				nbr = b.From
			}
			if visited[nbr] {
				continue
			}
			order := b.Order
			if b.Aromatic {
				order = 4
			}
			step := fmt.Sprintf("%d%s", order, atomCode(g.Atoms[nbr]))
			walk(nbr, append(path, step), depth+1)
		}
		visited[at] = false
	}

	for i := range g.Atoms {
		walk(i, []string{atomCode(g.Atoms[i])}, 0)
	}

	return NewFingerprint(chem.FPTopological, data, nBits), nil
}

// emitPath hashes the canonical (lexicographically smaller) direction of the
// path into the bit vector.
func emitPath(data []byte, nBits int, path []string) {
	forward := strings.Join(path, "-")
	rev := make([]string, len(path))
	for i, s := range path {
		rev[len(path)-1-i] = s
	}
	backward := strings.Join(rev, "-")
	if backward < forward {
		forward = backward
	}
	setBit(data, int(hash64(forward)%uint64(nBits)))
}

func atomCode(a Atom) string {
	if a.Aromatic {
		return strings.ToLower(a.Symbol)
	}
	return a.Symbol
}

// ── Structural predicates shared by MACCS keys and descriptor logic ──────────

func hasElement(g *Graph, sym string) bool {
	for _, a := range g.Atoms {
		if a.Symbol == sym {
			return true
		}
	}
	return false
}

func hasRing(g *Graph) bool {
	for _, b := range g.Bonds {
		if b.InRing {
			return true
		}
	}
	return false
}

func hasBondOrder(g *Graph, order int) bool {
	for _, b := range g.Bonds {
		if !b.Aromatic && b.Order == order {
			return true
		}
	}
	return false
}

func hasCharge(g *Graph) bool {
	for _, a := range g.Atoms {
		if a.Charge != 0 {
			return true
		}
	}
	return false
}

// doubleBondedNeighbors returns the atom indices double-bonded to atom i.
func doubleBondedNeighbors(g *Graph, i int) []int {
	var out []int
	for _, bi := range g.adjacency[i] {
		b := g.Bonds[bi]
		if b.Aromatic || b.Order != 2 {
			continue
		}
		nbr := b.To
		if nbr == i {
			nbr = b.From
		}
		out = append(out, nbr)
	}
	return out
}

// hasCarbonyl reports a C=O group.
func hasCarbonyl(g *Graph) bool {
	for i, a := range g.Atoms {
		if a.Symbol != "C" || a.Aromatic {
			continue
		}
		for _, nbr := range doubleBondedNeighbors(g, i) {
			if g.Atoms[nbr].Symbol == "O" {
				return true
			}
		}
	}
	return false
}

// hasCarboxyl reports a C(=O)O group.
func hasCarboxyl(g *Graph) bool {
	return hasCarbonylWithSingleNeighbor(g, "O")
}

// hasAmide reports a C(=O)N group.
func hasAmide(g *Graph) bool {
	return hasCarbonylWithSingleNeighbor(g, "N")
}

func hasCarbonylWithSingleNeighbor(g *Graph, sym string) bool {
	for i, a := range g.Atoms {
		if a.Symbol != "C" || a.Aromatic {
			continue
		}
		carbonyl := false
		for _, nbr := range doubleBondedNeighbors(g, i) {
			if g.Atoms[nbr].Symbol == "O" {
				carbonyl = true
			}
		}
		if !carbonyl {
			continue
		}
		for _, bi := range g.adjacency[i] {
			b := g.Bonds[bi]
			if b.Aromatic || b.Order != 1 {
				continue
			}
			nbr := b.To
			if nbr == i {
				nbr = b.From
			}
			if g.Atoms[nbr].Symbol == sym {
				return true
			}
		}
	}
	return false
}

// hasNitrile reports a C#N group.
func hasNitrile(g *Graph) bool {
	for _, b := range g.Bonds {
		if b.Order != 3 {
			continue
		}
		s1, s2 := g.Atoms[b.From].Symbol, g.Atoms[b.To].Symbol
		if (s1 == "C" && s2 == "N") || (s1 == "N" && s2 == "C") {
			return true
		}
	}
	return false
}

// hasHydroxyl reports an O-H on a non-carbonyl oxygen.
func hasHydroxyl(g *Graph) bool {
	for _, a := range g.Atoms {
		if a.Symbol == "O" && !a.Aromatic && a.ImplicitH > 0 {
			return true
		}
	}
	return false
}

// hasPrimaryAmine reports an N with two hydrogens.
func hasPrimaryAmine(g *Graph) bool {
	for _, a := range g.Atoms {
		if a.Symbol == "N" && !a.Aromatic && a.ImplicitH >= 2 {
			return true
		}
	}
	return false
}

// countAromaticRings counts aromatic rings via the cyclomatic number of the
// aromatic subgraph: edges - atoms + components.  For fused systems this
// matches the smallest-set-of-smallest-rings count.
func countAromaticRings(g *Graph) int {
	arAtoms := map[int]int{}
	for i, a := range g.Atoms {
		if a.Aromatic {
			arAtoms[i] = len(arAtoms)
		}
	}
	if len(arAtoms) == 0 {
		return 0
	}
	edges := 0
	parent := make([]int, len(arAtoms))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, b := range g.Bonds {
		fi, ok1 := arAtoms[b.From]
		ti, ok2 := arAtoms[b.To]
		if !ok1 || !ok2 || !b.Aromatic {
			continue
		}
		edges++
		parent[find(fi)] = find(ti)
	}
	components := 0
	for i := range parent {
		if find(i) == i {
			components++
		}
	}
	return edges - len(arAtoms) + components
}
