package spatial

import "math"

// noChild marks an absent subtree in the node arena.
const noChild int32 = -1

// treeNode is one k-d tree node. Children are arena indexes rather than
// pointers, which keeps the whole index in two flat slices and makes it
// trivially serializable and safe to share once built.
type treeNode struct {
	lat, lon float64
	portal   int32 // index into Index.portals
	dim      int8  // splitting dimension: 0=lat, 1=lon
	left     int32
	right    int32
}

// Index is a 2-D k-d tree over portal coordinates answering exact
// nearest-neighbor queries under geodesic distance. Build once, then treat
// as frozen; concurrent readers need no locking.
type Index struct {
	portals []Portal
	nodes   []treeNode
	root    int32
}

// BuildIndex constructs a balanced index over the given portals. An empty
// slice yields a valid index whose queries report not-found.
func BuildIndex(portals []Portal) *Index {
	ix := &Index{
		portals: portals,
		nodes:   make([]treeNode, 0, len(portals)),
		root:    noChild,
	}

	order := make([]int32, len(portals))
	for i := range order {
		order[i] = int32(i)
	}
	ix.root = ix.build(order, 0)
	return ix
}

// Size returns the number of indexed portals.
func (ix *Index) Size() int {
	return len(ix.portals)
}

// build partitions order around its median on the current dimension and
// recurses. Median selection is linear-time (quickselect), not a full sort.
func (ix *Index) build(order []int32, depth int) int32 {
	if len(order) == 0 {
		return noChild
	}

	dim := int8(depth % 2)
	median := len(order) / 2
	ix.selectNth(order, median, dim)

	p := ix.portals[order[median]]
	id := int32(len(ix.nodes))
	ix.nodes = append(ix.nodes, treeNode{
		lat:    p.Latitude,
		lon:    p.Longitude,
		portal: order[median],
		dim:    dim,
	})

	// Children must be linked after the recursive calls: the arena slice
	// may be reallocated while they append.
	left := ix.build(order[:median], depth+1)
	right := ix.build(order[median+1:], depth+1)
	ix.nodes[id].left = left
	ix.nodes[id].right = right
	return id
}

// coord returns the portal coordinate on the given dimension.
func (ix *Index) coord(portal int32, dim int8) float64 {
	if dim == 0 {
		return ix.portals[portal].Latitude
	}
	return ix.portals[portal].Longitude
}

// selectNth rearranges order so order[n] holds the element that would be at
// position n in coordinate-sorted order, with smaller elements before it and
// greater-or-equal after (quickselect with median-of-ends pivoting).
func (ix *Index) selectNth(order []int32, n int, dim int8) {
	lo, hi := 0, len(order)-1
	for lo < hi {
		pivot := ix.coord(order[(lo+hi)/2], dim)
		i, j := lo, hi
		for i <= j {
			for ix.coord(order[i], dim) < pivot {
				i++
			}
			for ix.coord(order[j], dim) > pivot {
				j--
			}
			if i <= j {
				order[i], order[j] = order[j], order[i]
				i++
				j--
			}
		}
		if n <= j {
			hi = j
		} else if n >= i {
			lo = i
		} else {
			return
		}
	}
}

// Nearest returns the portal closest to (lat, lon) under WGS84 geodesic
// distance, with the distance in meters. ok is false for an empty index.
func (ix *Index) Nearest(lat, lon float64) (portal Portal, meters float64, ok bool) {
	if ix == nil || ix.root == noChild {
		return Portal{}, 0, false
	}

	best := int32(-1)
	bestDist := math.Inf(1)
	ix.nearest(ix.root, lat, lon, &best, &bestDist)
	return ix.portals[ix.nodes[best].portal], bestDist, true
}

func (ix *Index) nearest(id int32, lat, lon float64, best *int32, bestDist *float64) {
	if id == noChild {
		return
	}
	n := &ix.nodes[id]

	if d := GeodesicDistance(lat, lon, n.lat, n.lon); d < *bestDist {
		*bestDist = d
		*best = id
	}

	targetVal, nodeVal := lat, n.lat
	if n.dim == 1 {
		targetVal, nodeVal = lon, n.lon
	}

	near, far := n.left, n.right
	if targetVal >= nodeVal {
		near, far = n.right, n.left
	}

	ix.nearest(near, lat, lon, best, bestDist)

	// Cross the splitting plane only when the far side could still hold a
	// closer portal under the meters-per-degree approximation.
	if planeDistanceWithin(targetVal-nodeVal, *bestDist) {
		ix.nearest(far, lat, lon, best, bestDist)
	}
}
