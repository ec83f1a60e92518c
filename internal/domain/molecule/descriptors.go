package molecule

import (
	"github.com/turtacn/ChemSAR/pkg/types/chem"
)

// atomicWeight maps element symbols to standard atomic weights in g/mol.
var atomicWeight = map[string]float64{
	"H": 1.008, "B": 10.811, "C": 12.011, "N": 14.007, "O": 15.999,
	"F": 18.998, "P": 30.974, "S": 32.06, "Cl": 35.453, "Br": 79.904,
	"I": 126.904, "Si": 28.086, "Se": 78.971,
}

// logPContribution holds per-atom contributions for the octanol-water
// partition estimate, in the spirit of atom-contribution (Crippen-style)
// methods.  Aromatic carbons are more lipophilic than aliphatic ones;
// heteroatoms reduce LogP.
var logPContribution = map[string]float64{
	"C": 0.20, "N": -0.60, "O": -0.57, "S": 0.26, "P": -0.45,
	"F": 0.22, "Cl": 0.65, "Br": 0.86, "I": 1.12, "B": 0.18,
}

const (
	logPAromaticCarbon = 0.29
	logPAromaticHetero = -0.35
	logPHydrogen       = 0.11
)

// ComputeDescriptors calculates the physicochemical descriptor set for a
// parsed structure.  All values are estimates from simplified contribution
// models; they are deterministic and adequate as sort/selection keys, which
// is how the pipeline consumes them.
func ComputeDescriptors(g *Graph) chem.Descriptors {
	var d chem.Descriptors

	d.HeavyAtoms = len(g.Atoms)
	d.AromaticRings = countAromaticRings(g)

	totalH := 0
	for _, a := range g.Atoms {
		w, ok := atomicWeight[a.Symbol]
		if !ok {
			// Unknown element: approximate with carbon weight rather than
			// dropping the atom.
			w = atomicWeight["C"]
		}
		d.MolecularWeight += w
		totalH += a.ImplicitH

		d.LogP += logPAtomContribution(a)

		switch a.Symbol {
		case "N", "O":
			d.HBondAcceptors++
			if a.ImplicitH > 0 {
				d.HBondDonors++
			}
		}
	}
	d.MolecularWeight += float64(totalH) * atomicWeight["H"]
	d.LogP += float64(totalH) * logPHydrogen

	d.TPSA = estimateTPSA(g)
	d.RotatableBonds = countRotatableBonds(g)

	return d
}

func logPAtomContribution(a Atom) float64 {
	if a.Aromatic {
		if a.Symbol == "C" {
			return logPAromaticCarbon
		}
		return logPAromaticHetero
	}
	if c, ok := logPContribution[a.Symbol]; ok {
		return c
	}
	return 0
}

// tpsa contribution constants, keyed by the polar-atom environment.
// Values follow the published Ertl fragment contributions for the most
// common nitrogen and oxygen environments.
const (
	tpsaOxygenDouble   = 17.07 // =O
	tpsaOxygenHydroxyl = 20.23 // -OH
	tpsaOxygenEther    = 9.23  // -O-
	tpsaOxygenAromatic = 13.14 // aromatic o
	tpsaNitrogenNH2    = 26.02 // -NH2
	tpsaNitrogenNH     = 12.03 // -NH-
	tpsaNitrogenTert   = 3.24  // >N-
	tpsaNitrogenArom   = 12.89 // aromatic n
)

// estimateTPSA sums polar-surface contributions for every oxygen and
// nitrogen according to its bonding environment.
func estimateTPSA(g *Graph) float64 {
	var tpsa float64
	for i, a := range g.Atoms {
		switch a.Symbol {
		case "O":
			switch {
			case a.Aromatic:
				tpsa += tpsaOxygenAromatic
			case isDoubleBonded(g, i):
				tpsa += tpsaOxygenDouble
			case a.ImplicitH > 0:
				tpsa += tpsaOxygenHydroxyl
			default:
				tpsa += tpsaOxygenEther
			}
		case "N":
			switch {
			case a.Aromatic:
				tpsa += tpsaNitrogenArom
			case a.ImplicitH >= 2:
				tpsa += tpsaNitrogenNH2
			case a.ImplicitH == 1:
				tpsa += tpsaNitrogenNH
			default:
				tpsa += tpsaNitrogenTert
			}
		}
	}
	return tpsa
}

func isDoubleBonded(g *Graph, i int) bool {
	for _, bi := range g.adjacency[i] {
		b := g.Bonds[bi]
		if !b.Aromatic && b.Order == 2 {
			return true
		}
	}
	return false
}

// countRotatableBonds counts single non-ring bonds between two heavy atoms
// that each have at least one additional heavy-atom neighbor (i.e., neither
// end is terminal).
func countRotatableBonds(g *Graph) int {
	count := 0
	for _, b := range g.Bonds {
		if b.InRing || b.Aromatic || b.Order != 1 {
			continue
		}
		if g.Degree(b.From) > 1 && g.Degree(b.To) > 1 {
			count++
		}
	}
	return count
}
