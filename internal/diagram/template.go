package diagram

import "time"

// DefaultDiagram returns the nine-stage starter pipeline seeded into every
// new workspace. Each call builds a fresh value so workspaces never share
// node or edge slices.
func DefaultDiagram() *FlowDiagram {
	node := func(id, title, description, color, icon string, x, y float64) Node {
		return Node{
			ID:   id,
			Type: "customNode",
			Data: NodeData{
				Title:         title,
				Description:   description,
				Color:         color,
				Icon:          icon,
				AssignedItems: []string{},
			},
			Position: Position{X: x, Y: y},
			Style: map[string]any{
				"padding":      "16px",
				"borderRadius": "8px",
				"minWidth":     "160px",
				"boxShadow":    "0 2px 4px rgba(0,0,0,0.1)",
				"border":       "1px solid " + color,
			},
		}
	}
	edge := func(id, source, target string) Edge {
		return Edge{
			ID:     id,
			Source: source,
			Target: target,
			Type:   "smoothstep",
			Style: map[string]any{
				"stroke":      "#00796b",
				"strokeWidth": 3,
			},
		}
	}

	return &FlowDiagram{
		Nodes: []Node{
			node("1", "Get data", "Get data", "#0078D4", "m-get-data", 0, 0),
			node("2", "Mirror", "Mirror data", "#881798", "mirror", 0, 180),
			node("3", "Store", "Store data", "#0078D4", "store", 260, 90),
			node("4", "Prepare", "Prepare data", "#5C2E91", "m-prepare", 520, 90),
			node("5", "Analyze and train", "Analyze and train data", "#DA3B01", "m-analyze", 780, 0),
			node("6", "Develop", "Develop data", "#0099BC", "m-develop", 1040, 0),
			node("7", "Visualize", "Visualize data", "#EAA300", "m-visualize", 780, 180),
			node("8", "Track", "Track data", "#BF0077", "m-track", 1040, 180),
			node("9", "Distribute", "Distribute data", "#00CC6A", "m-distribute", 1300, 90),
		},
		Edges: []Edge{
			edge("e1-3", "1", "3"),
			edge("e2-3", "2", "3"),
			edge("e3-4", "3", "4"),
			edge("e4-5", "4", "5"),
			edge("e5-6", "5", "6"),
			edge("e4-7", "4", "7"),
			edge("e7-8", "7", "8"),
			edge("e6-8", "6", "8"),
			edge("e8-9", "8", "9"),
			edge("e7-9", "7", "9"),
		},
		LastUpdated: time.Now().UTC(),
	}
}
