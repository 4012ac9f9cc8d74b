package inventory

import (
	"context"
	"fmt"
)

// ChildrenOf devuelve los hijos directos de un conjunto de ubicaciones (una consulta por nivel).
type ChildrenOf func(ctx context.Context, parentIDs []string) ([]string, error)

// ParentOf devuelve el padre directo ("" si es raíz).
type ParentOf func(ctx context.Context, locationID string) (string, error)

// CollectDescendants recorre el subárbol de rootID en anchura (iterativo, sin recursión) y
// devuelve cada descendiente una sola vez. El conjunto de visitados garantiza terminación aunque
// el grafo tenga ciclos por datos corruptos: un nodo ya visitado se omite. O(V+E).
func CollectDescendants(ctx context.Context, rootID string, childrenOf ChildrenOf) ([]string, error) {
	visited := map[string]struct{}{rootID: {}}
	var out []string
	frontier := []string{rootID}
	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		children, err := childrenOf(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("hijos de %v: %w", frontier, err)
		}
		next := make([]string, 0, len(children))
		for _, id := range children {
			if _, seen := visited[id]; seen {
				continue
			}
			visited[id] = struct{}{}
			out = append(out, id)
			next = append(next, id)
		}
		frontier = next
	}
	return out, nil
}

// CollectAncestors sube desde el padre de locationID hasta la raíz; se detiene si reaparece un id.
func CollectAncestors(ctx context.Context, locationID string, parentOf ParentOf) ([]string, error) {
	visited := map[string]struct{}{locationID: {}}
	var out []string
	current := locationID
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parent, err := parentOf(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("padre de %s: %w", current, err)
		}
		if parent == "" {
			return out, nil
		}
		if _, seen := visited[parent]; seen {
			return out, nil
		}
		visited[parent] = struct{}{}
		out = append(out, parent)
		current = parent
	}
}
