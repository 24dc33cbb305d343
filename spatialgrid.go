package prism

import (
	"math"
	"sort"

	"github.com/akmonengine/prism/actor"
)

// ============================================================================
// Types
// ============================================================================

// CellKey is the coordinate of a cell in pixel space
type CellKey struct {
	X, Y int
}

// Cell holds the indices of the volumes overlapping it
type Cell struct {
	volumeIndices []int
}

// SpatialGrid is a uniform hashed grid over pixel space, used as the broad
// phase of Scene.Pick. Several cells may share a bucket, so a query returns
// candidates that still need a hit test.
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
}

// ============================================================================
// Constructor
// ============================================================================

// NewSpatialGrid creates a grid of cellSize x cellSize pixel cells hashed into
// numCells buckets, rounded up to a power of two.
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].volumeIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Insert adds a volume index to every cell covered by the x/y extents of bounds.
func (sg *SpatialGrid) Insert(volumeIndex int, bounds actor.AABB) {
	minCell := sg.pixelToCell(bounds.Min.X(), bounds.Min.Y())
	maxCell := sg.pixelToCell(bounds.Max.X(), bounds.Max.Y())

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			cellIdx := sg.hashCell(CellKey{x, y})

			sg.cells[cellIdx].volumeIndices = append(
				sg.cells[cellIdx].volumeIndices,
				volumeIndex,
			)
		}
	}
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].volumeIndices = sg.cells[i].volumeIndices[:0]
	}
}

// SortCells orders every bucket by volume index, and drops the duplicates left
// by cells of one volume hashing to the same bucket.
func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		indices := sg.cells[i].volumeIndices
		if len(indices) < 2 {
			continue
		}
		sort.Ints(indices)

		n := 1
		for _, idx := range indices[1:] {
			if idx != indices[n-1] {
				indices[n] = idx
				n++
			}
		}
		sg.cells[i].volumeIndices = indices[:n]
	}
}

// Query returns the candidate volume indices for the pixel (x, y), in
// ascending order once SortCells was called. The slice belongs to the grid
// and is valid until the next Insert or Clear.
func (sg *SpatialGrid) Query(x, y float64) []int {
	return sg.cells[sg.hashCell(sg.pixelToCell(x, y))].volumeIndices
}

func (sg *SpatialGrid) pixelToCell(x, y float64) CellKey {
	return CellKey{
		X: int(math.Floor(x / sg.cellSize)),
		Y: int(math.Floor(y / sg.cellSize)),
	}
}

func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663)
	return h & sg.cellMask
}
