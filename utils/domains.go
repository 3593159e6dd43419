package utils

// DomainMap partitions a contiguous range of coarse-mesh cell indices across
// NumDomains cooperating domains. Each domain owns one contiguous half-open
// range [lo, hi) of cell ids; the imbalance between any two domains is at
// most one cell.
type DomainMap struct {
	NumCells   int
	NumDomains int
	Ranges     [][2]int // Beginning and end cell index of each domain
}

func NewDomainMap(numDomains, numCells int) (dm *DomainMap) {
	dm = &DomainMap{
		NumCells:   numCells,
		NumDomains: numDomains,
		Ranges:     make([][2]int, numDomains),
	}
	for d := 0; d < numDomains; d++ {
		dm.Ranges[d] = dm.split1D(d)
	}
	return
}

// Owner returns the domain owning the given cell, or -1 when the cell id is
// outside the mesh.
func (dm *DomainMap) Owner(cell int) (domain int) {
	if cell < 0 || cell >= dm.NumCells {
		return -1
	}
	// Initial guess, then walk to the containing range
	domain = dm.NumDomains * cell / dm.NumCells
	for !(dm.Ranges[domain][0] <= cell && cell < dm.Ranges[domain][1]) {
		if dm.Ranges[domain][0] > cell {
			domain--
		} else {
			domain++
		}
		if domain < 0 || domain >= dm.NumDomains {
			return -1
		}
	}
	return
}

// Range returns the half-open cell range [lo, hi) owned by a domain.
func (dm *DomainMap) Range(domain int) (lo, hi int) {
	lo, hi = dm.Ranges[domain][0], dm.Ranges[domain][1]
	return
}

func (dm *DomainMap) Size(domain int) int {
	return dm.Ranges[domain][1] - dm.Ranges[domain][0]
}

func (dm *DomainMap) split1D(domain int) (bucket [2]int) {
	// Splits the cell range into NumDomains pieces with a maximum imbalance
	// of one cell, spreading the remainder over the first domains
	var (
		nPer             = dm.NumCells / dm.NumDomains
		startAdd, endAdd int
		remainder        = dm.NumCells % dm.NumDomains
	)
	if remainder != 0 {
		if domain+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = domain
			endAdd = 1
		}
	}
	bucket[0] = domain*nPer + startAdd
	bucket[1] = bucket[0] + nPer + endAdd
	return
}
