// Package scenario builds initial particle arrangements from creation
// templates.
//
// A template describes the material of one body (per-particle mass, radius,
// spring, drag and colour), how tightly it is packed, and the bulk and
// angular velocity it starts with. Generators lay particles out in
// concentric rings around a centre and combine bodies into a scene.
package scenario
