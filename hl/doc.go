// Package hl provides an in-memory, format-agnostic tree model for
// hierarchical scientific datasets, together with the protocol that
// materializes the tree into an HDF5 store or reconstructs it from one.
//
// Clients build a flat, ordered NodeList of typed Nodes whose names encode
// tree paths ("/where/xscale"), then call Write to persist the whole tree as
// a new file, or Update to append only newly created nodes to an existing
// one. Parents must be added before their children; the protocol follows
// insertion order and never reorders.
//
//	nl := hl.NewNodeList("out.h5")
//	nl.Add(hl.NewGroup("/where"))
//	d := hl.NewDataset("/where/data")
//	d.SetArrayValue(4, []uint64{2, 3}, payload, "int", nil)
//	nl.Add(d)
//	err := nl.Write(nil)
package hl
