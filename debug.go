package prism

import (
	"fmt"
	"strings"

	"github.com/akmonengine/prism/actor"
	"github.com/akmonengine/prism/pick"
	"github.com/davecgh/go-spew/spew"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
	spewConfig.SortKeys = true
	spewConfig.MaxDepth = 4
}

// Dump describes the node tree, one node per line indented by depth, with the
// local transform of each node and the projected triangles of click volumes.
func (s *Scene) Dump() string {
	var out strings.Builder
	s.dumpNode(&out, s.Root, 0)

	return out.String()
}

func (s *Scene) dumpNode(out *strings.Builder, node actor.Node, depth int) {
	nb := node.Base()
	indent := strings.Repeat("  ", depth)

	fmt.Fprintf(out, "%s%s (%T) %v\n", indent, nb.Name(), node, nb.LocalTransform())
	if volume, ok := node.(*pick.ClickVolume); ok && volume.Projected() != nil {
		for _, line := range strings.Split(strings.TrimRight(spewConfig.Sdump(volume.Projected()), "\n"), "\n") {
			fmt.Fprintf(out, "%s  %s\n", indent, line)
		}
	}
	for _, child := range nb.Children() {
		s.dumpNode(out, child, depth+1)
	}
}

// SDump formats any value with the scene's spew settings, for logs.
func SDump(a ...interface{}) string {
	return spewConfig.Sdump(a...)
}
