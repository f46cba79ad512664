package types

type GraphNode struct {
	ID   NoteID `json:"id"`
	Name string `json:"name"`
}

type GraphLink struct {
	Source NoteID  `json:"source"`
	Target NoteID  `json:"target"`
	Value  float64 `json:"value"`
}

// Graph is the server-computed similarity graph. Link values are similarity
// scores in [0, 1].
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}
