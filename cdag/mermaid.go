package cdag

import (
	"fmt"
	"strings"

	"github.com/flowmatic/conveyor"
)

const externalMermaidID = "external"

// Mermaid renders the DAG as a Mermaid flowchart, one node per factory plus
// the External sentinel when any external flow exists. Edges are labeled
// with the payload type and, when set, the delivery ID. The output is a
// read-only projection; there is no round-trip import.
func (d *DAG) Mermaid() string {
	ids := make(map[conveyor.FactoryID]string, len(d.Nodes))

	var b strings.Builder
	b.WriteString("flowchart TD\n")
	for i, n := range d.Nodes {
		id := fmt.Sprintf("n%d", i)
		ids[n.FactoryID] = id
		b.WriteString(fmt.Sprintf("    %s[\"%s (stage %d)\"]\n", id, n.FactoryName, n.Stage))
	}

	for _, f := range d.Flows {
		if f.External() {
			continue
		}
		b.WriteString(fmt.Sprintf("    %s -->|\"%s\"| %s\n",
			ids[f.From.FactoryID], edgeLabel(f), ids[f.To.FactoryID]))
	}

	declaredExternal := false
	for _, f := range d.Flows {
		if !f.External() {
			continue
		}
		if !declaredExternal {
			b.WriteString(fmt.Sprintf("    %s((External))\n", externalMermaidID))
			declaredExternal = true
		}
		b.WriteString(fmt.Sprintf("    %s -->|\"%s\"| %s\n",
			externalMermaidID, edgeLabel(f), ids[f.To.FactoryID]))
	}

	return b.String()
}

func edgeLabel(f Flow) string {
	label := typeName(f.PayloadType)
	if f.DeliveryID != conveyor.DefaultDeliveryID {
		label = fmt.Sprintf("%s (%s)", label, f.DeliveryID)
	}
	return label
}
