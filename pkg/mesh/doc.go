// Package mesh implements a halfedge connectivity structure for triangle
// meshes: generational-handle arenas for vertices, halfedges, and faces,
// construction from triangle soups with vertex welding, edge split,
// collapse, and flip operators with length-driven remeshing drivers on
// top, and the traversal primitives external indices build on.
package mesh
