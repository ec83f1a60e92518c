package molecule

import (
	"strings"

	"github.com/turtacn/ChemSAR/pkg/errors"
)

// Atom is a single heavy atom in a parsed structure graph.  Hydrogens are
// implicit: ImplicitH is derived from standard valences unless the SMILES
// bracket notation fixed an explicit count.
type Atom struct {
	// Symbol is the element symbol in canonical case ("C", "Cl", "N").
	Symbol string

	// Aromatic marks atoms written in lowercase aromatic form.
	Aromatic bool

	// Charge is the formal charge from bracket notation.
	Charge int

	// ImplicitH is the number of attached hydrogens.
	ImplicitH int

	// InRing marks atoms that lie on at least one cycle.
	InRing bool

	// explicitH records that the H count came from bracket notation and must
	// not be recomputed from valence.
	explicitH bool
}

// Bond connects two atoms by index.  Order is 1, 2, or 3; aromatic bonds are
// stored with Order 1 and Aromatic set.
type Bond struct {
	From     int
	To       int
	Order    int
	Aromatic bool
	InRing   bool
}

// Graph is the parsed molecular structure: an undirected multigraph of heavy
// atoms.  It is immutable after parsing.
type Graph struct {
	Atoms []Atom
	Bonds []Bond

	// adjacency[i] lists the indices into Bonds incident to atom i.
	adjacency [][]int
}

// Degree returns the number of heavy-atom neighbors of atom i.
func (g *Graph) Degree(i int) int {
	return len(g.adjacency[i])
}

// Neighbors returns the atom indices bonded to atom i, in bond insertion
// order.
func (g *Graph) Neighbors(i int) []int {
	out := make([]int, 0, len(g.adjacency[i]))
	for _, bi := range g.adjacency[i] {
		b := g.Bonds[bi]
		if b.From == i {
			out = append(out, b.To)
		} else {
			out = append(out, b.From)
		}
	}
	return out
}

// IncidentBonds returns the indices into Bonds incident to atom i.
func (g *Graph) IncidentBonds(i int) []int {
	return g.adjacency[i]
}

// defaultValence maps element symbols from the SMILES organic subset to their
// default valence, used to derive implicit hydrogen counts.
var defaultValence = map[string]int{
	"B": 3, "C": 4, "N": 3, "O": 2, "P": 3, "S": 2,
	"F": 1, "Cl": 1, "Br": 1, "I": 1,
}

// organicSubset lists element symbols that may appear outside brackets.
var organicSubset = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"F": true, "Cl": true, "Br": true, "I": true,
}

// ringRef tracks a pending ring-closure digit.
type ringRef struct {
	atom  int
	order int
	arom  bool
}

type parser struct {
	smiles string
	pos    int

	graph     Graph
	prev      int // index of the previous atom, -1 after '.' or at start
	stack     []int
	openRings map[int]ringRef

	// pending bond state set by the last bond symbol
	bondOrder int
	bondArom  bool
	bondSet   bool
}

// ParseSMILES parses a SMILES string into a structure graph.  The parser
// covers the organic subset, bracket atoms with charge and explicit hydrogen
// counts, branches, ring closures (including %nn), and the four bond symbols
// plus aromatic lowercase notation.  Stereo markers (/ \ @) are accepted and
// ignored; isotope labels inside brackets are skipped.
//
// Returns ErrCodeInvalidSMILES for structural notation errors.
func ParseSMILES(smiles string) (*Graph, error) {
	smiles = strings.TrimSpace(smiles)
	if smiles == "" {
		return nil, errors.New(errors.ErrCodeInvalidSMILES, "SMILES string cannot be empty")
	}

	p := &parser{
		smiles:    smiles,
		prev:      -1,
		openRings: make(map[int]ringRef),
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	if len(p.stack) != 0 {
		return nil, errors.New(errors.ErrCodeInvalidSMILES, "unclosed branch in SMILES").
			WithDetail("smiles=" + smiles)
	}
	if len(p.openRings) != 0 {
		return nil, errors.New(errors.ErrCodeInvalidSMILES, "unclosed ring bond in SMILES").
			WithDetail("smiles=" + smiles)
	}
	if len(p.graph.Atoms) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSMILES, "no atoms found in SMILES").
			WithDetail("smiles=" + smiles)
	}

	g := &p.graph
	g.assignImplicitHydrogens()
	g.markRingBonds()
	return g, nil
}

func (p *parser) run() error {
	for p.pos < len(p.smiles) {
		c := p.smiles[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.errAt("branch opened before any atom")
			}
			p.stack = append(p.stack, p.prev)
			p.pos++
		case c == ')':
			if len(p.stack) == 0 {
				return p.errAt("unmatched closing parenthesis")
			}
			p.prev = p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.pos++
		case c == '-':
			p.setBond(1, false)
			p.pos++
		case c == '=':
			p.setBond(2, false)
			p.pos++
		case c == '#':
			p.setBond(3, false)
			p.pos++
		case c == ':':
			p.setBond(1, true)
			p.pos++
		case c == '/' || c == '\\':
			// Stereo bond direction: treated as a plain single bond.
			p.setBond(1, false)
			p.pos++
		case c == '.':
			p.prev = -1
			p.bondSet = false
			p.pos++
		case c == '%':
			if p.pos+2 >= len(p.smiles) || !isDigit(p.smiles[p.pos+1]) || !isDigit(p.smiles[p.pos+2]) {
				return p.errAt("malformed two-digit ring closure")
			}
			n := int(p.smiles[p.pos+1]-'0')*10 + int(p.smiles[p.pos+2]-'0')
			if err := p.ringClosure(n); err != nil {
				return err
			}
			p.pos += 3
		case isDigit(c):
			if err := p.ringClosure(int(c - '0')); err != nil {
				return err
			}
			p.pos++
		case c == '[':
			if err := p.bracketAtom(); err != nil {
				return err
			}
		default:
			if err := p.organicAtom(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *parser) errAt(msg string) error {
	return errors.Newf(errors.ErrCodeInvalidSMILES, "%s at position %d", msg, p.pos).
		WithDetail("smiles=" + p.smiles)
}

func (p *parser) setBond(order int, arom bool) {
	p.bondOrder = order
	p.bondArom = arom
	p.bondSet = true
}

// takeBond consumes the pending bond symbol, defaulting to a single bond
// (aromatic when both endpoints are aromatic atoms, resolved by the caller).
func (p *parser) takeBond() (int, bool) {
	if p.bondSet {
		p.bondSet = false
		return p.bondOrder, p.bondArom
	}
	return 1, false
}

func (p *parser) addAtom(a Atom) error {
	if p.prev < 0 && p.bondSet {
		return p.errAt("bond symbol before any atom")
	}

	idx := len(p.graph.Atoms)
	p.graph.Atoms = append(p.graph.Atoms, a)
	p.graph.adjacency = append(p.graph.adjacency, nil)

	if p.prev >= 0 {
		order, arom := p.takeBond()
		if !arom && p.graph.Atoms[p.prev].Aromatic && a.Aromatic {
			arom = true
		}
		p.addBond(p.prev, idx, order, arom)
	}
	p.prev = idx
	return nil
}

func (p *parser) addBond(from, to, order int, arom bool) {
	bi := len(p.graph.Bonds)
	p.graph.Bonds = append(p.graph.Bonds, Bond{From: from, To: to, Order: order, Aromatic: arom})
	p.graph.adjacency[from] = append(p.graph.adjacency[from], bi)
	p.graph.adjacency[to] = append(p.graph.adjacency[to], bi)
}

func (p *parser) ringClosure(n int) error {
	if p.prev < 0 {
		return p.errAt("ring closure before any atom")
	}
	order, arom := p.takeBond()
	if ref, open := p.openRings[n]; open {
		if ref.atom == p.prev {
			return p.errAt("ring closure bonds an atom to itself")
		}
		// A bond symbol on either side of the closure wins over the default.
		if ref.order > order {
			order = ref.order
		}
		if ref.arom {
			arom = true
		}
		if !arom && p.graph.Atoms[ref.atom].Aromatic && p.graph.Atoms[p.prev].Aromatic {
			arom = true
		}
		p.addBond(ref.atom, p.prev, order, arom)
		delete(p.openRings, n)
		return nil
	}
	p.openRings[n] = ringRef{atom: p.prev, order: order, arom: arom}
	return nil
}

// organicAtom consumes an unbracketed atom from the organic subset, handling
// the two-letter symbols Cl and Br and lowercase aromatic forms.
func (p *parser) organicAtom() error {
	rest := p.smiles[p.pos:]

	// Two-letter symbols first.
	if strings.HasPrefix(rest, "Cl") {
		if err := p.addAtom(Atom{Symbol: "Cl"}); err != nil {
			return err
		}
		p.pos += 2
		return nil
	}
	if strings.HasPrefix(rest, "Br") {
		if err := p.addAtom(Atom{Symbol: "Br"}); err != nil {
			return err
		}
		p.pos += 2
		return nil
	}

	c := rest[0]
	upper := byte(c)
	aromatic := false
	if c >= 'a' && c <= 'z' {
		aromatic = true
		upper = c - 'a' + 'A'
	}
	sym := string(upper)
	if !organicSubset[sym] {
		return p.errAt("unexpected character " + string(c))
	}
	if aromatic && !(sym == "B" || sym == "C" || sym == "N" || sym == "O" || sym == "P" || sym == "S") {
		return p.errAt("element cannot be aromatic: " + string(c))
	}
	if err := p.addAtom(Atom{Symbol: sym, Aromatic: aromatic}); err != nil {
		return err
	}
	p.pos++
	return nil
}

// bracketAtom consumes a bracketed atom expression: [isotope? symbol chiral?
// Hcount? charge?].  Isotope digits and chirality markers are skipped.
func (p *parser) bracketAtom() error {
	end := strings.IndexByte(p.smiles[p.pos:], ']')
	if end < 0 {
		return p.errAt("unterminated bracket atom")
	}
	body := p.smiles[p.pos+1 : p.pos+end]
	if body == "" {
		return p.errAt("empty bracket atom")
	}
	consumed := end + 1

	i := 0
	// isotope label
	for i < len(body) && isDigit(body[i]) {
		i++
	}
	if i >= len(body) {
		return p.errAt("bracket atom has no element symbol")
	}

	// element symbol: uppercase + optional lowercase, or a lone aromatic
	// lowercase letter
	var sym string
	aromatic := false
	c := body[i]
	switch {
	case c >= 'A' && c <= 'Z':
		sym = string(c)
		i++
		if i < len(body) && body[i] >= 'a' && body[i] <= 'z' && body[i] != 'H' {
			// Two-letter element; reject combinations like "Ch" by accepting
			// any lowercase except a following H-count marker.
			sym += string(body[i])
			i++
		}
	case c >= 'a' && c <= 'z':
		sym = string(c-'a'+'A')
		aromatic = true
		i++
	default:
		return p.errAt("invalid bracket atom symbol")
	}

	// chirality markers
	for i < len(body) && body[i] == '@' {
		i++
	}

	hCount := 0
	if i < len(body) && body[i] == 'H' {
		hCount = 1
		i++
		if i < len(body) && isDigit(body[i]) {
			hCount = int(body[i] - '0')
			i++
		}
	}

	charge := 0
	for i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		i++
		if i < len(body) && isDigit(body[i]) {
			charge += sign * int(body[i]-'0')
			i++
		} else {
			charge += sign
		}
	}

	if i != len(body) {
		return p.errAt("unexpected content in bracket atom")
	}

	// Bracket notation states the hydrogen count exactly; absence means
	// zero, never a valence-derived back-fill.
	if err := p.addAtom(Atom{
		Symbol:    sym,
		Aromatic:  aromatic,
		Charge:    charge,
		ImplicitH: hCount,
		explicitH: true,
	}); err != nil {
		return err
	}
	p.pos += consumed
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// assignImplicitHydrogens derives hydrogen counts for unbracketed atoms from
// default valences.  Aromatic atoms give up one bonding slot to the ring
// system.
func (g *Graph) assignImplicitHydrogens() {
	for i := range g.Atoms {
		a := &g.Atoms[i]
		if a.explicitH {
			continue
		}
		val, ok := defaultValence[a.Symbol]
		if !ok {
			continue
		}
		sum := 0
		for _, bi := range g.adjacency[i] {
			sum += g.Bonds[bi].Order
		}
		if a.Aromatic {
			sum++
		}
		h := val - sum
		if h < 0 {
			h = 0
		}
		a.ImplicitH = h
	}
}

// markRingBonds flags every bond that lies on a cycle and every atom incident
// to such a bond.  A bond is a ring bond iff it is not a bridge; bridges are
// found with a single DFS computing discovery and low-link times.
func (g *Graph) markRingBonds() {
	n := len(g.Atoms)
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	timer := 0

	var dfs func(u, parentBond int)
	dfs = func(u, parentBond int) {
		disc[u] = timer
		low[u] = timer
		timer++
		for _, bi := range g.adjacency[u] {
			if bi == parentBond {
				continue
			}
			b := &g.Bonds[bi]
			v := b.To
			if v == u {
				v = b.From
			}
			if disc[v] == -1 {
				dfs(v, bi)
				if low[v] < low[u] {
					low[u] = low[v]
				}
				if low[v] <= disc[u] {
					b.InRing = true
				}
			} else {
				if disc[v] < low[u] {
					low[u] = disc[v]
				}
				if disc[v] < disc[u] {
					b.InRing = true
				}
			}
		}
	}

	for i := 0; i < n; i++ {
		if disc[i] == -1 {
			dfs(i, -1)
		}
	}

	for _, b := range g.Bonds {
		if b.InRing {
			g.Atoms[b.From].InRing = true
			g.Atoms[b.To].InRing = true
		}
	}
}
